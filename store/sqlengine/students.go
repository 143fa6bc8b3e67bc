package sqlengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	jsoniter "github.com/json-iterator/go"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/store/sqlengine/internal/adapters"
)

const (
	colName         = "name"
	colStudentClass = "student_class"
	colProfilePic   = "profile_pic"
	colActive       = "active"
	colStars        = "stars"
	colBadges       = "badges"
	colBooksRead    = "books_read"

	actionFindStudent        = "find_student"
	actionLockStudent        = "lock_student"
	actionListStudents       = "list_students"
	actionCountStudents      = "count_students"
	actionInsertStudent      = "insert_student"
	actionUpdateStudent      = "update_student"
	actionDeleteStudent      = "delete_student"
	actionUpdateStudentStats = "update_student_stats"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var studentColumns = []any{
	colID, colBarcode, colName, colStudentClass, colProfilePic, colActive, colStars, colBadges, colBooksRead,
}

func scanStudent(rows adapters.DBRows) (core.Student, error) {
	var st core.Student
	var badges string

	if err := rows.Scan(
		&st.ID, &st.Barcode, &st.Name, &st.Class, &st.ProfilePic, &st.Active, &st.Stars, &badges, &st.BooksRead,
	); err != nil {
		return core.Student{}, err
	}

	decoded, err := decodeBadges(badges)
	if err != nil {
		return core.Student{}, err
	}

	st.Badges = decoded

	return st, nil
}

func encodeBadges(badges []string) (string, error) {
	if badges == nil {
		badges = []string{}
	}

	return json.MarshalToString(badges)
}

func decodeBadges(raw string) ([]string, error) {
	badges := make([]string, 0)
	if raw == "" {
		return badges, nil
	}

	if err := json.UnmarshalFromString(raw, &badges); err != nil {
		return nil, err
	}

	return badges, nil
}

// FindStudent returns the student with the given barcode or store.ErrRecordNotFound.
func (e Engine) FindStudent(ctx context.Context, barcode core.BarcodeString) (core.Student, error) {
	return e.direct().FindStudent(ctx, barcode)
}

func (s session) FindStudent(ctx context.Context, barcode core.BarcodeString) (core.Student, error) {
	return s.findStudent(ctx, actionFindStudent, barcode, false)
}

// FindStudentForUpdate returns the student in autocommit mode, see store.Inventory.
func (e Engine) FindStudentForUpdate(ctx context.Context, barcode core.BarcodeString) (core.Student, error) {
	return e.direct().FindStudentForUpdate(ctx, barcode)
}

// FindStudentForUpdate takes a row lock with SELECT ... FOR UPDATE on postgres and mysql.
// SQLite has no row locks, its single writer already serializes the unit of work.
func (s session) FindStudentForUpdate(ctx context.Context, barcode core.BarcodeString) (core.Student, error) {
	return s.findStudent(ctx, actionLockStudent, barcode, s.engine.dialect != DialectSQLite)
}

func (s session) findStudent(ctx context.Context, action string, barcode core.BarcodeString, lock bool) (core.Student, error) {
	stmt := s.engine.builder().
		From(s.engine.tables.students).
		Select(studentColumns...).
		Where(goqu.C(colBarcode).Eq(barcode)).
		Prepared(true)

	if lock {
		stmt = stmt.ForUpdate(exp.Wait)
	}

	rows, err := s.query(ctx, action, stmt)
	if err != nil {
		return core.Student{}, err
	}

	return first(ctx, s, rows, scanStudent)
}

// ListStudents returns all students ordered by barcode.
func (e Engine) ListStudents(ctx context.Context) ([]core.Student, error) {
	s := e.direct()

	stmt := e.builder().
		From(e.tables.students).
		Select(studentColumns...).
		Order(goqu.C(colBarcode).Asc()).
		Prepared(true)

	rows, err := s.query(ctx, actionListStudents, stmt)
	if err != nil {
		return nil, err
	}

	return collect(ctx, s, rows, scanStudent)
}

// CountStudents returns the number of students, active or not.
func (e Engine) CountStudents(ctx context.Context) (int, error) {
	stmt := e.builder().
		From(e.tables.students).
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true)

	return e.direct().count(ctx, actionCountStudents, stmt)
}

// InsertStudent stores a new student. A student with the same barcode yields store.ErrDuplicateKey.
func (e Engine) InsertStudent(ctx context.Context, student core.Student) error {
	badges, err := encodeBadges(student.Badges)
	if err != nil {
		return err
	}

	stmt := e.builder().
		Insert(e.tables.students).
		Rows(goqu.Record{
			colID:           student.ID,
			colBarcode:      student.Barcode,
			colName:         student.Name,
			colStudentClass: student.Class,
			colProfilePic:   student.ProfilePic,
			colActive:       student.Active,
			colStars:        student.Stars,
			colBadges:       badges,
			colBooksRead:    student.BooksRead,
		}).
		Prepared(true)

	_, err = e.direct().exec(ctx, actionInsertStudent, stmt)

	return err
}

// UpdateStudent overwrites the descriptive attributes and the active flag. Reader stats are left alone.
func (e Engine) UpdateStudent(ctx context.Context, student core.Student) error {
	stmt := e.builder().
		Update(e.tables.students).
		Set(goqu.Record{
			colName:         student.Name,
			colStudentClass: student.Class,
			colProfilePic:   student.ProfilePic,
			colActive:       student.Active,
		}).
		Where(goqu.C(colBarcode).Eq(student.Barcode)).
		Prepared(true)

	affected, err := e.direct().exec(ctx, actionUpdateStudent, stmt)
	if err != nil {
		return err
	}

	if affected == 0 {
		return store.ErrRecordNotFound
	}

	return nil
}

// DeleteStudent removes the student. Loans that reference it keep their snapshot of the name.
func (e Engine) DeleteStudent(ctx context.Context, barcode core.BarcodeString) error {
	return e.deleteByBarcode(ctx, actionDeleteStudent, e.tables.students, barcode)
}

// UpdateStudentStats writes the reader stats in autocommit mode, see store.Inventory.
func (e Engine) UpdateStudentStats(ctx context.Context, barcode core.BarcodeString, stats core.ReaderStats) error {
	return e.direct().UpdateStudentStats(ctx, barcode, stats)
}

func (s session) UpdateStudentStats(ctx context.Context, barcode core.BarcodeString, stats core.ReaderStats) error {
	badges, err := encodeBadges(stats.Badges)
	if err != nil {
		return err
	}

	stmt := s.engine.builder().
		Update(s.engine.tables.students).
		Set(goqu.Record{
			colStars:     stats.Stars,
			colBooksRead: stats.BooksRead,
			colBadges:    badges,
		}).
		Where(goqu.C(colBarcode).Eq(barcode)).
		Prepared(true)

	_, err = s.exec(ctx, actionUpdateStudentStats, stmt)

	return err
}
