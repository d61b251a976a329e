// Package dtree loads and evaluates the frozen decision procedure that maps
// a pin's I/O-standard feature bits to an I/O standard label.
//
// The procedure is trained offline and exported as a small text artifact:
//
//	# comment
//	tree "io_standard" {
//	  features [-448, -352, 512, 864];
//	  when 864 {
//	    when 512 { label "SSTL-15 CLASS I" } else { label "SSTL-15" }
//	  } else {
//	    label "2.5 V"
//	  }
//	}
//
// The features list fixes the order of the input vector. Every "when"
// names one of those offsets and takes its first branch when the bit is
// set. The artifact bundled with the package is returned by Default.
package dtree
