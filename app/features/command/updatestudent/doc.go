// Package updatestudent implements the Update Student use case. It changes the descriptive
// attributes and the active flag, the barcode and the reward counters are not touched.
package updatestudent
