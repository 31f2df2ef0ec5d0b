// Package batch runs the resampleImage module over many files.
//
// The compiled library is shared; each job gets its own module and library
// instance. Output files are written to a temporary name and renamed while
// holding a lock file in the output directory, so concurrent runs of the
// tool never leave partially written outputs.
package batch
