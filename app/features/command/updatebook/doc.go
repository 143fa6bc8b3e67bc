// Package updatebook implements the Update Book use case.
//
// The update is optimistic: it writes the revised counters only if the available counter still
// has the value that was read. When a borrow or return moved it in between, the handler reads the
// book again and retries with exponential backoff, so copies on loan are never lost from the count.
package updatebook
