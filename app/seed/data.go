package seed

import (
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const avatarURL = "https://ui-avatars.com/api/?name=%s&background=%s&color=fff"

type studentRow struct {
	barcode    core.BarcodeString
	name       string
	class      string
	avatarName string
	background string
	stars      int
	booksRead  int
	badges     []string
}

type bookRow struct {
	barcode     core.BarcodeString
	title       string
	author      string
	category    string
	cover       string
	totalCopies int
}

var students = []studentRow{
	{"STU001", "Emma Johnson", "Grade 5A", "Emma+Johnson", "FF6B9D", 15, 8, []string{core.BadgeBookworm, core.BadgeSpeedReader}},
	{"STU002", "Liam Smith", "Grade 6B", "Liam+Smith", "4ECDC4", 10, 5, []string{core.BadgeBookworm}},
	{"STU003", "Olivia Brown", "Grade 4C", "Olivia+Brown", "FFD93D", 20, 12, []string{core.BadgeBookworm, core.BadgeSpeedReader, core.BadgeStarReader}},
	{"STU004", "Noah Davis", "Grade 5B", "Noah+Davis", "95E1D3", 5, 3, []string{}},
	{"STU005", "Ava Wilson", "Grade 6A", "Ava+Wilson", "C7CEEA", 8, 4, []string{core.BadgeBookworm}},
}

var books = []bookRow{
	{"BK001", "Harry Potter and the Sorcerer's Stone", "J.K. Rowling", "Fantasy", "https://covers.openlibrary.org/b/id/10521270-M.jpg", 2},
	{"BK002", "The Lion, The Witch and The Wardrobe", "C.S. Lewis", "Fantasy", "https://covers.openlibrary.org/b/id/8231682-M.jpg", 2},
	{"BK003", "Charlotte's Web", "E.B. White", "Fiction", "https://covers.openlibrary.org/b/id/8235774-M.jpg", 1},
	{"BK004", "Wonder", "R.J. Palacio", "Fiction", "https://covers.openlibrary.org/b/id/7894366-M.jpg", 1},
	{"BK005", "Percy Jackson: The Lightning Thief", "Rick Riordan", "Adventure", "https://covers.openlibrary.org/b/id/8235664-M.jpg", 1},
	{"BK006", "Matilda", "Roald Dahl", "Fiction", "https://covers.openlibrary.org/b/id/8231837-M.jpg", 1},
	{"BK007", "The Secret Garden", "Frances Hodgson Burnett", "Classic", "https://covers.openlibrary.org/b/id/8235703-M.jpg", 1},
	{"BK008", "Diary of a Wimpy Kid", "Jeff Kinney", "Humor", "https://covers.openlibrary.org/b/id/8235832-M.jpg", 1},
	{"BK009", "The Hunger Games", "Suzanne Collins", "Adventure", "https://covers.openlibrary.org/b/id/8235798-M.jpg", 1},
	{"BK010", "Alice in Wonderland", "Lewis Carroll", "Fantasy", "https://covers.openlibrary.org/b/id/8235725-M.jpg", 1},
}

// The demo loan: Olivia borrowed the only Percy Jackson copy 20 days ago.
const (
	overdueStudent  core.BarcodeString = "STU003"
	overdueBook     core.BarcodeString = "BK005"
	overdueLoanDays                    = 20
)
