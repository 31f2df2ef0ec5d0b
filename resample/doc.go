// Package resample is the resampleImage module. It forwards an input image
// and its spacing, interpolation and background parameters to the library's
// resampleImageWASM export and stores the returned image as "output".
package resample
