package core

const (
	// StarsPerOnTimeReturn is granted for every return with zero overdue days.
	StarsPerOnTimeReturn = 2

	// BadgeBookworm is unlocked at BookwormBooksRead books read.
	BadgeBookworm = "Bookworm"

	// BadgeSpeedReader is unlocked at SpeedReaderBooksRead books read.
	BadgeSpeedReader = "Speed Reader"

	// BadgeStarReader is unlocked at StarReaderStars stars.
	BadgeStarReader = "Star Reader"

	BookwormBooksRead    = 5
	SpeedReaderBooksRead = 10
	StarReaderStars      = 20
)

// ApplyReturnRewards computes the stats of a student after one more closed loan.
//
// Business Rules:
//
//	GIVEN: the stats before the return and the overdue days of the closed loan
//	THEN: books read increases by one
//	THEN: stars increase by 2 if the book came back on time, late returns grant nothing
//	THEN: badges are unlocked when their threshold is reached, checked after the counters moved
//	INVARIANT: badges are never removed and never duplicated
//
// The input is not modified.
func ApplyReturnRewards(stats ReaderStats, overdueDays int) ReaderStats {
	next := ReaderStats{
		Stars:     stats.Stars,
		BooksRead: stats.BooksRead + 1,
		Badges:    append([]string{}, stats.Badges...),
	}

	if overdueDays == 0 {
		next.Stars += StarsPerOnTimeReturn
	}

	if next.BooksRead >= BookwormBooksRead {
		next.Badges = unlock(next.Badges, BadgeBookworm)
	}

	if next.BooksRead >= SpeedReaderBooksRead {
		next.Badges = unlock(next.Badges, BadgeSpeedReader)
	}

	if next.Stars >= StarReaderStars {
		next.Badges = unlock(next.Badges, BadgeStarReader)
	}

	return next
}

func unlock(badges []string, badge string) []string {
	for _, b := range badges {
		if b == badge {
			return badges
		}
	}

	return append(badges, badge)
}
