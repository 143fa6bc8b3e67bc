// Package listbooks implements the List Books query use case.
package listbooks
