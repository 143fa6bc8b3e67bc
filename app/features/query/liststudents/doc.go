// Package liststudents implements the List Students query use case.
package liststudents
