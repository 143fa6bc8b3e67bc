// Package registerstudent implements the Register Student use case: a new, active member
// without stars, books read or badges.
package registerstudent
