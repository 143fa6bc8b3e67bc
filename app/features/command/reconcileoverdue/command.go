package reconcileoverdue

import (
	"time"

	"github.com/readingcorner/library-circulation/app/shared/core"
)

const (
	commandType = "ReconcileOverdue"
)

// Command represents the intent to bring the overdue days of all open loans up to date.
type Command struct {
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command for the given time.
func BuildCommand(occurredAt time.Time) Command {
	return Command{
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
