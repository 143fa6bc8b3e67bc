package addbook

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	commandType = "AddBook"
)

// Command represents the intent to add a book to the inventory.
type Command struct {
	Barcode     core.BarcodeString
	Details     core.BookDetails
	TotalCopies int
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString, details core.BookDetails, totalCopies int) Command {
	return Command{
		Barcode:     barcode,
		Details:     details,
		TotalCopies: totalCopies,
	}
}
