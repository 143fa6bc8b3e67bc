// Package shell holds what the feature slices of the library circulation service share
// around the pure core: the command and query contracts, the handler result,
// retry with exponential backoff, and the observability helpers the wrappers use.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
