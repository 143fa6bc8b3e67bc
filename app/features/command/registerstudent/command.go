package registerstudent

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	commandType = "RegisterStudent"
)

// Command represents the intent to register a student.
type Command struct {
	Barcode core.BarcodeString
	Details core.StudentDetails
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString, details core.StudentDetails) Command {
	return Command{
		Barcode: barcode,
		Details: details,
	}
}
