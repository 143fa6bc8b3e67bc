package returnbook

import (
	"time"

	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent of a student to bring a borrowed book back.
type Command struct {
	StudentBarcode core.BarcodeString
	BookBarcode    core.BarcodeString
	OccurredAt     core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(studentBarcode, bookBarcode core.BarcodeString, occurredAt time.Time) Command {
	return Command{
		StudentBarcode: studentBarcode,
		BookBarcode:    bookBarcode,
		OccurredAt:     core.ToOccurredAt(occurredAt),
	}
}
