// Package knowledge holds the static per-pin tables that the address
// translation depends on: each pin's anchor bit address and the constants
// describing the reserved blocks interleaved below it, plus the block
// geometry of the image.
//
// The tables are measured once from sample images (see Measure and Builder)
// and stored as YAML:
//
//	layout:
//	  block_boundary: 10752
//	  stride: 64
//	  unknown_block_stride: 1344
//	pins:
//	  PIN_A6:
//	    anchor: 813313
//	    unknown_block_lower_limit: 790000
//	    unknown_block_count: 3
//
// A loaded Tables value is never mutated and may be shared freely between
// goroutines.
package knowledge
