package sqlengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/store/sqlengine/internal/adapters"
)

const (
	colUsername     = "username"
	colPasswordHash = "password_hash"

	actionFindAdmin   = "find_admin"
	actionInsertAdmin = "insert_admin"
)

func scanAdmin(rows adapters.DBRows) (store.Admin, error) {
	var a store.Admin

	err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash)

	return a, err
}

// FindAdmin returns the admin account with the given username or store.ErrRecordNotFound.
func (e Engine) FindAdmin(ctx context.Context, username string) (store.Admin, error) {
	s := e.direct()

	stmt := e.builder().
		From(e.tables.admins).
		Select(colID, colUsername, colPasswordHash).
		Where(goqu.C(colUsername).Eq(username)).
		Prepared(true)

	rows, err := s.query(ctx, actionFindAdmin, stmt)
	if err != nil {
		return store.Admin{}, err
	}

	return first(ctx, s, rows, scanAdmin)
}

// InsertAdmin stores a new admin account. An existing username yields store.ErrDuplicateKey.
func (e Engine) InsertAdmin(ctx context.Context, admin store.Admin) error {
	stmt := e.builder().
		Insert(e.tables.admins).
		Rows(goqu.Record{
			colID:           admin.ID,
			colUsername:     admin.Username,
			colPasswordHash: admin.PasswordHash,
		}).
		Prepared(true)

	_, err := e.direct().exec(ctx, actionInsertAdmin, stmt)

	return err
}
