package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/app/features/command/addbook"
	"github.com/readingcorner/library-circulation/app/features/command/borrowbook"
	"github.com/readingcorner/library-circulation/app/features/command/reconcileoverdue"
	"github.com/readingcorner/library-circulation/app/features/command/registerstudent"
	"github.com/readingcorner/library-circulation/app/features/command/removebook"
	"github.com/readingcorner/library-circulation/app/features/command/removestudent"
	"github.com/readingcorner/library-circulation/app/features/command/returnbook"
	"github.com/readingcorner/library-circulation/app/features/command/updatebook"
	"github.com/readingcorner/library-circulation/app/features/command/updatestudent"
	"github.com/readingcorner/library-circulation/app/features/query/listbooks"
	"github.com/readingcorner/library-circulation/app/features/query/liststudents"
	"github.com/readingcorner/library-circulation/app/features/query/listtransactions"
	"github.com/readingcorner/library-circulation/app/features/query/statistics"
	"github.com/readingcorner/library-circulation/app/features/query/studentprofile"
	"github.com/readingcorner/library-circulation/app/httpapi"
	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell/auth"
	"github.com/readingcorner/library-circulation/store"
	"github.com/readingcorner/library-circulation/store/sqlengine"
	"github.com/readingcorner/library-circulation/testutil/testdb"
	"github.com/readingcorner/library-circulation/testutil/testdoubles"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	router *gin.Engine
	engine sqlengine.Engine
	logger *testdoubles.ContextualLoggerSpy
}

func newFixture(t *testing.T, cfg httpapi.Config) fixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	engine := testdb.NewSQLiteEngine(t)
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err, "error in arranging test data")
	require.NoError(t, engine.InsertAdmin(context.Background(), store.Admin{ID: "admin-1", Username: "admin", PasswordHash: hash}))

	issuer, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	handlers := httpapi.Handlers{
		BorrowBook:       borrowbook.NewCommandHandler(engine),
		ReturnBook:       returnbook.NewCommandHandler(engine),
		ReconcileOverdue: reconcileoverdue.NewCommandHandler(engine),
		AddBook:          addbook.NewCommandHandler(engine),
		UpdateBook:       updatebook.NewCommandHandler(engine),
		RemoveBook:       removebook.NewCommandHandler(engine),
		RegisterStudent:  registerstudent.NewCommandHandler(engine),
		UpdateStudent:    updatestudent.NewCommandHandler(engine),
		RemoveStudent:    removestudent.NewCommandHandler(engine),
		ListTransactions: listtransactions.NewQueryHandler(engine),
		Statistics:       statistics.NewQueryHandler(engine),
		StudentProfile:   studentprofile.NewQueryHandler(engine),
		ListBooks:        listbooks.NewQueryHandler(engine),
		ListStudents:     liststudents.NewQueryHandler(engine),
		Authenticator:    auth.NewAuthenticator(engine, issuer),
		Health:           engine,
	}

	logger := testdoubles.NewContextualLoggerSpy()

	router, err := httpapi.NewRouter(handlers, cfg,
		httpapi.WithContextualLogger(logger),
		httpapi.WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)

	return fixture{router: router, engine: engine, logger: logger}
}

func (f fixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

type detailBody struct {
	Detail string `json:"detail"`
}

func Test_NewRouter_Fails_WhenHandlerIsMissing(t *testing.T) {
	// act
	_, err := httpapi.NewRouter(httpapi.Handlers{}, httpapi.Config{})

	// assert
	assert.ErrorIs(t, err, httpapi.ErrMissingHandler)
}

func Test_Borrow_ReturnsTransaction_WhenCopyIsAvailable(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	testdb.GivenStudent(t, f.engine, "STU001")
	testdb.GivenBook(t, f.engine, "BK001", 1)

	// act
	rec := f.do(t, http.MethodPost, "/api/borrow", `{"student_barcode":"STU001","book_barcode":"BK001"}`)

	// assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Success     bool             `json:"success"`
		Message     string           `json:"message"`
		Transaction core.Transaction `json:"transaction"`
	}](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "Book borrowed successfully!", body.Message)
	assert.Equal(t, "STU001", body.Transaction.StudentBarcode)
	assert.Equal(t, core.LoanStatusBorrowed, body.Transaction.Status)

	book, err := f.engine.FindBook(context.Background(), "BK001")
	require.NoError(t, err)
	assert.Equal(t, 0, book.Available)
}

func Test_Borrow_MapsRejections_ToStatusCodes(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	testdb.GivenStudent(t, f.engine, "STU001")
	book := testdb.GivenBook(t, f.engine, "BK001", 1)
	student := testdb.GivenStudent(t, f.engine, "STU002")
	testdb.GivenOpenLoan(t, f.engine, "loan-1", student, book, fixedNow)

	testCases := []struct {
		name           string
		body           string
		expectedStatus int
		expectedDetail string
	}{
		{"unknown student", `{"student_barcode":"NOPE","book_barcode":"BK001"}`, http.StatusNotFound, "student not found"},
		{"unknown book", `{"student_barcode":"STU001","book_barcode":"NOPE"}`, http.StatusNotFound, "book not found"},
		{"no copy left", `{"student_barcode":"STU001","book_barcode":"BK001"}`, http.StatusBadRequest, "book is not available"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			rec := f.do(t, http.MethodPost, "/api/borrow", tc.body)

			// assert
			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Equal(t, tc.expectedDetail, decode[detailBody](t, rec).Detail)
		})
	}
}

func Test_Borrow_Answers422_WhenBodyIsInvalid(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})

	testCases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"student_barcode":`},
		{"missing book barcode", `{"student_barcode":"STU001"}`},
		{"unknown field", `{"student_barcode":"STU001","book_barcode":"BK001","copies":2}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			rec := f.do(t, http.MethodPost, "/api/borrow", tc.body)

			// assert
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func Test_Return_ReportsOverdueDays_WhenReturnedLate(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	student := testdb.GivenStudent(t, f.engine, "STU001")
	book := testdb.GivenBook(t, f.engine, "BK001", 1)
	testdb.GivenOpenLoan(t, f.engine, "loan-1", student, book, fixedNow.Add(-20*24*time.Hour))

	// act
	rec := f.do(t, http.MethodPost, "/api/return", `{"student_barcode":"STU001","book_barcode":"BK001"}`)

	// assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		OverdueDays int    `json:"overdue_days"`
	}](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, 5, body.OverdueDays)
	assert.Equal(t, "Book returned! 5 days overdue.", body.Message)
}

func Test_Return_Answers404_WhenNoLoanIsOpen(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	testdb.GivenStudent(t, f.engine, "STU001")
	testdb.GivenBook(t, f.engine, "BK001", 1)

	// act
	rec := f.do(t, http.MethodPost, "/api/return", `{"student_barcode":"STU001","book_barcode":"BK001"}`)

	// assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no active borrow record found", decode[detailBody](t, rec).Detail)
}

func Test_Transactions_FiltersByStatus_AndRejectsUnknownStatus(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	student := testdb.GivenStudent(t, f.engine, "STU001")
	book := testdb.GivenBook(t, f.engine, "BK001", 2)
	testdb.GivenOpenLoan(t, f.engine, "loan-1", student, book, fixedNow)

	// act
	borrowed := f.do(t, http.MethodGet, "/api/transactions?status=borrowed&student_barcode=STU001", "")
	returned := f.do(t, http.MethodGet, "/api/transactions?status=returned", "")
	invalid := f.do(t, http.MethodGet, "/api/transactions?status=lost", "")

	// assert
	require.Equal(t, http.StatusOK, borrowed.Code)
	assert.Len(t, decode[[]core.Transaction](t, borrowed), 1)
	require.Equal(t, http.StatusOK, returned.Code)
	assert.Empty(t, decode[[]core.Transaction](t, returned))
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	assert.Equal(t, "Invalid status. Must be 'borrowed' or 'returned'", decode[detailBody](t, invalid).Detail)
}

func Test_Overdue_ListsAndPersistsOverdueLoans(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	student := testdb.GivenStudent(t, f.engine, "STU001")
	late := testdb.GivenBook(t, f.engine, "BK001", 1)
	onTime := testdb.GivenBook(t, f.engine, "BK002", 1)
	testdb.GivenOpenLoan(t, f.engine, "loan-1", student, late, fixedNow.Add(-18*24*time.Hour))
	testdb.GivenOpenLoan(t, f.engine, "loan-2", student, onTime, fixedNow.Add(-2*24*time.Hour))

	// act
	rec := f.do(t, http.MethodGet, "/api/overdue", "")

	// assert
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	overdue := decode[[]core.Transaction](t, rec)
	require.Len(t, overdue, 1)
	assert.Equal(t, "loan-1", overdue[0].ID)
	assert.Equal(t, 3, overdue[0].OverdueDays)

	stored, err := f.engine.FindOpenTransaction(context.Background(), "STU001", "BK001")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.OverdueDays)
}

func Test_Statistics_ReturnsDashboardCounts(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	student := testdb.GivenStudent(t, f.engine, "STU001")
	book := testdb.GivenBook(t, f.engine, "BK001", 3)
	testdb.GivenOpenLoan(t, f.engine, "loan-1", student, book, fixedNow)

	// act
	rec := f.do(t, http.MethodGet, "/api/statistics", "")

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]int](t, rec)
	assert.Equal(t, map[string]int{
		"total_books":     1,
		"total_available": 2,
		"borrowed_count":  1,
		"active_students": 1,
		"overdue_count":   0,
	}, body)
}

func Test_StudentProfile_ReturnsOpenLoans_And404ForUnknownStudent(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	student := testdb.GivenStudent(t, f.engine, "STU001")
	book := testdb.GivenBook(t, f.engine, "BK001", 1)
	testdb.GivenOpenLoan(t, f.engine, "loan-1", student, book, fixedNow)

	// act
	found := f.do(t, http.MethodGet, "/api/students/STU001", "")
	missing := f.do(t, http.MethodGet, "/api/students/NOPE", "")

	// assert
	require.Equal(t, http.StatusOK, found.Code)
	profile := decode[studentprofile.StudentProfile](t, found)
	assert.Equal(t, "STU001", profile.Student.Barcode)
	assert.Len(t, profile.BorrowedBooks, 1)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Student not found", decode[detailBody](t, missing).Detail)
}

func Test_BookCRUD_RoundTrip(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})

	// act
	created := f.do(t, http.MethodPost, "/api/books", `{"barcode":"BK100","title":"Matilda","author":"Roald Dahl","category":"Fiction"}`)
	duplicate := f.do(t, http.MethodPost, "/api/books", `{"barcode":"BK100","title":"Matilda"}`)
	updated := f.do(t, http.MethodPut, "/api/books/BK100", `{"title":"Matilda","author":"Roald Dahl","total_copies":3}`)
	moved := f.do(t, http.MethodPut, "/api/books/BK100", `{"barcode":"BK200","title":"Matilda"}`)
	listed := f.do(t, http.MethodGet, "/api/books", "")
	removed := f.do(t, http.MethodDelete, "/api/books/BK100", "")
	removedAgain := f.do(t, http.MethodDelete, "/api/books/BK100", "")

	// assert
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())
	book := decode[core.Book](t, created)
	assert.Equal(t, 1, book.TotalCopies)
	assert.Equal(t, core.DefaultCoverImage, book.CoverImage)

	assert.Equal(t, http.StatusBadRequest, duplicate.Code)
	assert.Equal(t, "Book barcode already exists", decode[detailBody](t, duplicate).Detail)

	assert.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	assert.Equal(t, http.StatusBadRequest, moved.Code)

	require.Equal(t, http.StatusOK, listed.Code)
	books := decode[[]core.Book](t, listed)
	require.Len(t, books, 1)
	assert.Equal(t, 3, books[0].TotalCopies)
	assert.Equal(t, 3, books[0].Available)

	assert.Equal(t, http.StatusOK, removed.Code)
	assert.Equal(t, http.StatusNotFound, removedAgain.Code)
}

func Test_StudentCRUD_RoundTrip(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})

	// act
	created := f.do(t, http.MethodPost, "/api/students", `{"barcode":"STU100","name":"Ada Lovelace","student_class":"4B"}`)
	missingClass := f.do(t, http.MethodPost, "/api/students", `{"barcode":"STU101","name":"Alan"}`)
	deactivated := f.do(t, http.MethodPut, "/api/students/STU100", `{"name":"Ada Lovelace","student_class":"4B","active":false}`)
	listed := f.do(t, http.MethodGet, "/api/students", "")
	removed := f.do(t, http.MethodDelete, "/api/students/STU100", "")

	// assert
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())
	student := decode[core.Student](t, created)
	assert.True(t, student.Active)
	assert.Equal(t, core.DefaultProfilePic("Ada Lovelace"), student.ProfilePic)

	assert.Equal(t, http.StatusUnprocessableEntity, missingClass.Code)
	assert.Equal(t, http.StatusOK, deactivated.Code, deactivated.Body.String())

	require.Equal(t, http.StatusOK, listed.Code)
	students := decode[[]core.Student](t, listed)
	require.Len(t, students, 1)
	assert.False(t, students[0].Active)

	assert.Equal(t, http.StatusOK, removed.Code)
}

func Test_StudentLogin(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	testdb.GivenStudent(t, f.engine, "STU001")

	// act
	known := f.do(t, http.MethodPost, "/api/auth/student-login", `{"barcode":"STU001"}`)
	unknown := f.do(t, http.MethodPost, "/api/auth/student-login", `{"barcode":"NOPE"}`)

	// assert
	require.Equal(t, http.StatusOK, known.Code)
	body := decode[struct {
		Success bool         `json:"success"`
		Student core.Student `json:"student"`
	}](t, known)
	assert.True(t, body.Success)
	assert.Equal(t, "Reader STU001", body.Student.Name)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func Test_AdminRoutes_RequireToken_WhenAuthIsEnforced(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{EnforceAuth: true})
	newBook := `{"barcode":"BK100","title":"Matilda"}`

	// act
	wrongPassword := f.do(t, http.MethodPost, "/api/auth/admin-login", `{"username":"admin","password":"nope"}`)
	login := f.do(t, http.MethodPost, "/api/auth/admin-login", `{"username":"admin","password":"admin123"}`)
	withoutToken := f.do(t, http.MethodPost, "/api/books", newBook)
	withBadToken := f.do(t, http.MethodPost, "/api/books", newBook, "Authorization", "Bearer garbage")

	// assert
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, "Invalid credentials", decode[detailBody](t, wrongPassword).Detail)

	require.Equal(t, http.StatusOK, login.Code)
	session := decode[struct {
		Success bool `json:"success"`
		Admin   struct {
			Username string `json:"username"`
		} `json:"admin"`
		Token string `json:"token"`
	}](t, login)
	assert.True(t, session.Success)
	assert.Equal(t, "admin", session.Admin.Username)
	require.NotEmpty(t, session.Token)

	assert.Equal(t, http.StatusUnauthorized, withoutToken.Code)
	assert.Equal(t, "Not authenticated", decode[detailBody](t, withoutToken).Detail)
	assert.Equal(t, http.StatusUnauthorized, withBadToken.Code)
	assert.Equal(t, "Invalid token", decode[detailBody](t, withBadToken).Detail)

	withToken := f.do(t, http.MethodPost, "/api/books", newBook, "Authorization", "Bearer "+session.Token)
	assert.Equal(t, http.StatusOK, withToken.Code, withToken.Body.String())
}

func Test_AdminRoutes_AreOpen_WhenAuthIsNotEnforced(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})

	// act
	rec := f.do(t, http.MethodPost, "/api/books", `{"barcode":"BK100","title":"Matilda"}`)

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_CORS_EchoesOrigin(t *testing.T) {
	testCases := []struct {
		name           string
		origins        []string
		origin         string
		expectedHeader string
	}{
		{"wildcard echoes any origin", []string{"*"}, "http://kiosk.local", "http://kiosk.local"},
		{"listed origin is allowed", []string{"http://localhost:3000"}, "http://localhost:3000", "http://localhost:3000"},
		{"unlisted origin gets no header", []string{"http://localhost:3000"}, "http://evil.example", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			f := newFixture(t, httpapi.Config{CORSOrigins: tc.origins})

			// act
			rec := f.do(t, http.MethodOptions, "/api/books", "",
				"Origin", tc.origin,
				"Access-Control-Request-Method", http.MethodPost,
			)

			// assert
			assert.Equal(t, tc.expectedHeader, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func Test_CORS_AllowsAnyRequestedHeader_OnPreflight(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{CORSOrigins: []string{"http://localhost:3000"}})

	// act
	rec := f.do(t, http.MethodOptions, "/api/borrow", "",
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "X-Kiosk-Id, X-Requested-With",
	)

	// assert
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Kiosk-Id, X-Requested-With", rec.Header().Get("Access-Control-Allow-Headers"))
}

func Test_NewRouter_LeavesGlobalDecoderSettingsAlone(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})
	testdb.GivenStudent(t, f.engine, "STU001")
	testdb.GivenBook(t, f.engine, "BK001", 1)

	// act
	rec := f.do(t, http.MethodPost, "/api/borrow", `{"student_barcode":"STU001","book_barcode":"BK001","note":"x"}`)

	// assert
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, binding.EnableDecoderDisallowUnknownFields)
}

func Test_Health(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})

	// act
	rec := f.do(t, http.MethodGet, "/api/health", "")

	// assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func Test_Requests_AreLogged_WithStatus(t *testing.T) {
	// arrange
	f := newFixture(t, httpapi.Config{})

	// act
	f.do(t, http.MethodGet, "/api/books", "")
	f.do(t, http.MethodPost, "/api/return", `{"student_barcode":"STU001","book_barcode":"BK001"}`)

	// assert
	infos := f.logger.RecordsAt(testdoubles.LevelInfo)
	require.NotEmpty(t, infos)
	route, _ := infos[0].Arg("route")
	assert.Equal(t, "/api/books", route)

	warns := f.logger.RecordsAt(testdoubles.LevelWarn)
	require.NotEmpty(t, warns)
	status, _ := warns[0].Arg("status")
	assert.Equal(t, http.StatusNotFound, status)
}
