package core

import (
	"strings"
)

const (
	profilePicBaseURL            = "https://ui-avatars.com/api/"
	failureReasonNameMissing     = "name must not be empty"
	failureReasonClassMissing    = "student_class must not be empty"
	failureReasonStudentNegative = "stars and books_read must not be negative"
)

// Student is a library member. The counters and badges are owned by the reward engine.
type Student struct {
	ID         string        `json:"id"`
	Barcode    BarcodeString `json:"barcode"`
	Name       string        `json:"name"`
	Class      string        `json:"student_class"`
	ProfilePic string        `json:"profile_pic"`
	Active     bool          `json:"active"`
	Stars      int           `json:"stars"`
	Badges     []string      `json:"badges"`
	BooksRead  int           `json:"books_read"`
}

// StudentDetails holds the descriptive attributes of a student that peripheral CRUD may change.
type StudentDetails struct {
	Name       string
	Class      string
	ProfilePic string
}

// ReaderStats is the part of a Student the reward engine reads and writes.
type ReaderStats struct {
	Stars     int
	BooksRead int
	Badges    []string
}

// BuildStudent creates a new active Student without any rewards.
func BuildStudent(id string, barcode BarcodeString, details StudentDetails) (Student, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Student{}, Reject(ErrInvalidInput, failureReasonBarcodeMissing)
	}

	if err := details.validate(); err != nil {
		return Student{}, err
	}

	if details.ProfilePic == "" {
		details.ProfilePic = DefaultProfilePic(details.Name)
	}

	return Student{
		ID:         id,
		Barcode:    barcode,
		Name:       details.Name,
		Class:      details.Class,
		ProfilePic: details.ProfilePic,
		Active:     true,
		Badges:     []string{},
	}, nil
}

// DefaultProfilePic builds a generated avatar URL for the given name.
// Only spaces are replaced, the name is otherwise kept as entered.
func DefaultProfilePic(name string) string {
	return profilePicBaseURL + "?name=" + strings.ReplaceAll(name, " ", "+") + "&background=random"
}

// Revise returns the student with changed details and, if active is not nil, a changed active flag.
func (s Student) Revise(details StudentDetails, active *bool) (Student, error) {
	if err := details.validate(); err != nil {
		return Student{}, err
	}

	revised := s
	revised.Name = details.Name
	revised.Class = details.Class

	if details.ProfilePic != "" {
		revised.ProfilePic = details.ProfilePic
	}

	if active != nil {
		revised.Active = *active
	}

	return revised, nil
}

// Stats returns the reward-relevant counters of the student.
func (s Student) Stats() ReaderStats {
	return ReaderStats{
		Stars:     s.Stars,
		BooksRead: s.BooksRead,
		Badges:    append([]string{}, s.Badges...),
	}
}

// WithStats returns the student carrying the given counters.
func (s Student) WithStats(stats ReaderStats) Student {
	s.Stars = stats.Stars
	s.BooksRead = stats.BooksRead
	s.Badges = append([]string{}, stats.Badges...)

	return s
}

// Validate checks the counters of a student record that was not built by BuildStudent, e.g. seed data.
func (s Student) Validate() error {
	if s.Stars < 0 || s.BooksRead < 0 {
		return Reject(ErrInvalidInput, failureReasonStudentNegative)
	}

	return nil
}

func (d StudentDetails) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return Reject(ErrInvalidInput, failureReasonNameMissing)
	}

	if strings.TrimSpace(d.Class) == "" {
		return Reject(ErrInvalidInput, failureReasonClassMissing)
	}

	return nil
}
