package removebook

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	commandType = "RemoveBook"
)

// Command represents the intent to remove a book from the inventory.
type Command struct {
	Barcode core.BarcodeString
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString) Command {
	return Command{Barcode: barcode}
}
