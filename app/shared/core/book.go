package core

import (
	"fmt"
	"strings"
)

// DefaultCoverImage is used for books created without a cover.
const DefaultCoverImage = "https://via.placeholder.com/150x200/4a90e2/ffffff?text=Book"

const (
	failureReasonBarcodeMissing     = "barcode must not be empty"
	failureReasonTitleMissing       = "title must not be empty"
	failureReasonTotalCopiesTooLow  = "total_copies must be at least 1"
	failureReasonCopiesStillLentOut = "total_copies must not be lower than the copies currently lent out"
)

// Book is one title in the inventory with its copy counters.
// Invariant: 0 <= Available <= TotalCopies.
type Book struct {
	ID          string        `json:"id"`
	Barcode     BarcodeString `json:"barcode"`
	Title       string        `json:"title"`
	Author      string        `json:"author"`
	Category    string        `json:"category"`
	CoverImage  string        `json:"cover_image"`
	Available   int           `json:"available"`
	TotalCopies int           `json:"total_copies"`
}

// BookDetails holds the descriptive attributes of a book that peripheral CRUD may change.
type BookDetails struct {
	Title      string
	Author     string
	Category   string
	CoverImage string
}

// BuildBook creates a new Book with all copies available.
func BuildBook(id string, barcode BarcodeString, details BookDetails, totalCopies int) (Book, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Book{}, Reject(ErrInvalidInput, failureReasonBarcodeMissing)
	}

	if strings.TrimSpace(details.Title) == "" {
		return Book{}, Reject(ErrInvalidInput, failureReasonTitleMissing)
	}

	if totalCopies < 1 {
		return Book{}, Reject(ErrInvalidInput, failureReasonTotalCopiesTooLow)
	}

	if details.CoverImage == "" {
		details.CoverImage = DefaultCoverImage
	}

	return Book{
		ID:          id,
		Barcode:     barcode,
		Title:       details.Title,
		Author:      details.Author,
		Category:    details.Category,
		CoverImage:  details.CoverImage,
		Available:   totalCopies,
		TotalCopies: totalCopies,
	}, nil
}

// IsAvailable reports whether at least one copy can be lent.
func (b Book) IsAvailable() bool {
	return b.Available > 0
}

// LentOut returns the number of copies currently on loan.
func (b Book) LentOut() int {
	return b.TotalCopies - b.Available
}

// Revise returns the book with changed details and, if totalCopies is not nil, a changed copy count.
// The available counter moves by the same delta as the total so that copies on loan stay accounted for.
func (b Book) Revise(details BookDetails, totalCopies *int) (Book, error) {
	if strings.TrimSpace(details.Title) == "" {
		return Book{}, Reject(ErrInvalidInput, failureReasonTitleMissing)
	}

	if details.CoverImage == "" {
		details.CoverImage = b.CoverImage
	}

	revised := b
	revised.Title = details.Title
	revised.Author = details.Author
	revised.Category = details.Category
	revised.CoverImage = details.CoverImage

	if totalCopies == nil {
		return revised, nil
	}

	if *totalCopies < 1 {
		return Book{}, Reject(ErrInvalidInput, failureReasonTotalCopiesTooLow)
	}

	if *totalCopies < b.LentOut() {
		return Book{}, Reject(
			ErrIneligibleState,
			fmt.Sprintf("%s (%d lent out)", failureReasonCopiesStillLentOut, b.LentOut()),
		)
	}

	revised.Available = b.Available + (*totalCopies - b.TotalCopies)
	revised.TotalCopies = *totalCopies

	return revised, nil
}
