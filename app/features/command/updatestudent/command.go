package updatestudent

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	commandType = "UpdateStudent"
)

// Command represents the intent to change a student's details. A nil Active keeps the current flag.
type Command struct {
	Barcode core.BarcodeString
	Details core.StudentDetails
	Active  *bool
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(barcode core.BarcodeString, details core.StudentDetails, active *bool) Command {
	return Command{
		Barcode: barcode,
		Details: details,
		Active:  active,
	}
}
