package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell/auth"
	"github.com/readingcorner/library-circulation/store"
)

const (
	logMsgSeedSkipped   = "seed skipped, students exist"
	logMsgSeedCompleted = "seed completed"
	logMsgAdminSeeded   = "admin account seeded"
	logAttrStudents     = "students"
	logAttrBooks        = "books"
	logAttrUsername     = "username"
)

// ErrSeedingFailed is returned when the demo data could not be written.
var ErrSeedingFailed = errors.New("seeding demo data failed")

// Store defines the writes the Seeder needs.
type Store interface {
	CountStudents(ctx context.Context) (int, error)
	InsertStudent(ctx context.Context, student core.Student) error
	InsertBook(ctx context.Context, book core.Book) error
	UpdateBookAvailable(ctx context.Context, barcode core.BarcodeString, delta int) (bool, error)
	CreateTransaction(ctx context.Context, txn core.Transaction) error
	InsertAdmin(ctx context.Context, admin store.Admin) error
}

// Admin holds the credentials of the seeded admin account.
type Admin struct {
	Username string
	Password string
}

// Result reports what Seed wrote.
type Result struct {
	Skipped     bool
	AdminSeeded bool
	Students    int
	Books       int
	Loans       int
}

// Seeder writes the demo data.
type Seeder struct {
	store  Store
	admin  Admin
	logger store.ContextualLogger
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithContextualLogger sets the logger for seed progress.
func WithContextualLogger(logger store.ContextualLogger) Option {
	return func(s *Seeder) {
		s.logger = logger
	}
}

// NewSeeder creates a Seeder that creates admin as the front desk account.
func NewSeeder(s Store, admin Admin, opts ...Option) Seeder {
	seeder := Seeder{store: s, admin: admin}

	for _, opt := range opts {
		opt(&seeder)
	}

	return seeder
}

// Seed inserts the demo data unless any student exists already. The admin account is created
// independently of that, and an existing account with the same username is left alone.
// The open loan is dated relative to now.
func (s Seeder) Seed(ctx context.Context, now time.Time) (Result, error) {
	var result Result

	adminSeeded, err := s.seedAdmin(ctx)
	if err != nil {
		return Result{}, err
	}

	result.AdminSeeded = adminSeeded

	count, err := s.store.CountStudents(ctx)
	if err != nil {
		return Result{}, errors.Join(ErrSeedingFailed, err)
	}

	if count > 0 {
		s.logInfo(ctx, logMsgSeedSkipped, logAttrStudents, count)
		result.Skipped = true

		return result, nil
	}

	seededStudents := make(map[core.BarcodeString]core.Student, len(students))

	for _, row := range students {
		student, err := buildStudent(row)
		if err != nil {
			return Result{}, errors.Join(ErrSeedingFailed, err)
		}

		if err := s.store.InsertStudent(ctx, student); err != nil {
			return Result{}, errors.Join(ErrSeedingFailed, err)
		}

		seededStudents[student.Barcode] = student
		result.Students++
	}

	seededBooks := make(map[core.BarcodeString]core.Book, len(books))

	for _, row := range books {
		book, err := core.BuildBook(newID(), row.barcode, core.BookDetails{
			Title:      row.title,
			Author:     row.author,
			Category:   row.category,
			CoverImage: row.cover,
		}, row.totalCopies)
		if err != nil {
			return Result{}, errors.Join(ErrSeedingFailed, err)
		}

		if err := s.store.InsertBook(ctx, book); err != nil {
			return Result{}, errors.Join(ErrSeedingFailed, err)
		}

		seededBooks[book.Barcode] = book
		result.Books++
	}

	if err := s.seedOverdueLoan(ctx, seededStudents[overdueStudent], seededBooks[overdueBook], now); err != nil {
		return Result{}, err
	}

	result.Loans++

	s.logInfo(ctx, logMsgSeedCompleted, logAttrStudents, result.Students, logAttrBooks, result.Books)

	return result, nil
}

func (s Seeder) seedAdmin(ctx context.Context) (bool, error) {
	hash, err := auth.HashPassword(s.admin.Password)
	if err != nil {
		return false, errors.Join(ErrSeedingFailed, err)
	}

	err = s.store.InsertAdmin(ctx, store.Admin{
		ID:           newID(),
		Username:     s.admin.Username,
		PasswordHash: hash,
	})

	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		return false, nil
	case err != nil:
		return false, errors.Join(ErrSeedingFailed, err)
	}

	s.logInfo(ctx, logMsgAdminSeeded, logAttrUsername, s.admin.Username)

	return true, nil
}

func (s Seeder) seedOverdueLoan(ctx context.Context, student core.Student, book core.Book, now time.Time) error {
	loan := core.OpenLoan(newID(), student, book, now.Add(-overdueLoanDays*24*time.Hour))
	loan = loan.RefreshOverdue(now)

	applied, err := s.store.UpdateBookAvailable(ctx, book.Barcode, -1)
	if err != nil {
		return errors.Join(ErrSeedingFailed, err)
	}

	if !applied {
		return fmt.Errorf("%w: no copy of %s left for the demo loan", ErrSeedingFailed, book.Barcode)
	}

	if err := s.store.CreateTransaction(ctx, loan); err != nil {
		return errors.Join(ErrSeedingFailed, err)
	}

	return nil
}

func (s Seeder) logInfo(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}

func buildStudent(row studentRow) (core.Student, error) {
	student, err := core.BuildStudent(newID(), row.barcode, core.StudentDetails{
		Name:       row.name,
		Class:      row.class,
		ProfilePic: fmt.Sprintf(avatarURL, row.avatarName, row.background),
	})
	if err != nil {
		return core.Student{}, err
	}

	student = student.WithStats(core.ReaderStats{
		Stars:     row.stars,
		BooksRead: row.booksRead,
		Badges:    row.badges,
	})

	return student, student.Validate()
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
