package updatebook

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	commandType = "UpdateBook"
)

// Command represents the intent to change the details or the number of copies of a book.
// A nil TotalCopies keeps the current number of copies.
type Command struct {
	Barcode     core.BarcodeString
	Details     core.BookDetails
	TotalCopies *int
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString, details core.BookDetails, totalCopies *int) Command {
	return Command{
		Barcode:     barcode,
		Details:     details,
		TotalCopies: totalCopies,
	}
}
