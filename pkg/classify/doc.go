// Package classify derives the configuration of a pin from its feature
// vector.
//
// Classification is a fixed pipeline over one feature.Vector:
//
//  1. Pull-up: the bit at the pull-up offset.
//  2. Output: set if any output indicator bit is set.
//  3. Differential: one bit, chosen by the pin's dedicated channel role.
//  4. Input: the complement of the output-active bit; which bit is read
//     depends on the differential result.
//  5. I/O standard: a frozen decision procedure over a fixed sub-vector.
//  6. Termination: for SSTL standards only, three bits matched against the
//     two known patterns.
//
// Input and output are read out independently; a pin may report both.
//
// Batch classification runs pins in parallel. Every pin gets a Result
// carrying either its Classification or its own error; one failing pin never
// affects the others.
//
// Example usage:
//
//	tables, _ := knowledge.Load(fs, "knowledge.yaml")
//	ext := feature.NewExtractor(address.NewTranslator(tables))
//	tree, _ := dtree.Default()
//	c, _ := classify.New(ext, tree, classify.WithRoles(pins))
//
//	results, err := c.ClassifyBatch(ctx, img, tables.Pins(), classify.BatchOptions{Workers: 8})
//	if err != nil {
//	    // at least one pin failed, see results[i].Err
//	}
package classify
