// Package bitstream provides a read-only, bit-addressable view of an FPGA
// configuration image (".jic" file).
//
// The image is treated as an opaque sequence of configuration bits. Bit
// address a refers to bit 7-(a%8) of byte a/8, i.e. bits are numbered most
// significant first inside each byte. Nothing about the container format is
// interpreted here beyond what the analysis needs:
//
//   - single-bit and multi-bit reads by absolute address
//   - bit-level diffing of two images of identical size
//   - byte pattern search for structural landmarks
//
// # Diffing samples
//
// Samples are compiled so that exactly one configuration property differs
// between two images. Diffing them yields the candidate bits for that
// property:
//
//	ref, _ := bitstream.Open(afero.NewOsFs(), "pin_A6_12mA.jic")
//	smp, _ := bitstream.Open(afero.NewOsFs(), "pin_A6_4mA.jic")
//	changes, err := ref.Changes(smp, bitstream.DefaultRegion())
//
// DefaultRegion drops changes inside the header and the trailing checksum,
// which differ between every pair of compiles.
//
// # Containers
//
// Open understands raw images, gzip-compressed images (".gz") and the zip
// archives produced by the sample generator, which carry the image next to
// the compiler reports.
package bitstream
