// Package studentprofile implements the Student Profile query use case:
// one student together with the loans they have not returned yet.
package studentprofile
