package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

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
	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/store"
)

// ErrMissingHandler is returned by NewRouter when a use case has no handler.
var ErrMissingHandler = errors.New("handler must not be nil")

// Authenticator checks admin credentials and tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string, now time.Time) (string, error)
	Verify(token string) (string, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers are the use cases the API exposes. Plain and observable handlers both fit.
type Handlers struct {
	BorrowBook       shell.CommandHandler[borrowbook.Command, borrowbook.Result]
	ReturnBook       shell.CommandHandler[returnbook.Command, returnbook.Result]
	ReconcileOverdue shell.CommandHandler[reconcileoverdue.Command, reconcileoverdue.Result]
	AddBook          shell.CommandHandler[addbook.Command, addbook.Result]
	UpdateBook       shell.CommandHandler[updatebook.Command, updatebook.Result]
	RemoveBook       shell.CommandHandler[removebook.Command, removebook.Result]
	RegisterStudent  shell.CommandHandler[registerstudent.Command, registerstudent.Result]
	UpdateStudent    shell.CommandHandler[updatestudent.Command, updatestudent.Result]
	RemoveStudent    shell.CommandHandler[removestudent.Command, removestudent.Result]

	ListTransactions shell.QueryHandler[listtransactions.Query, listtransactions.TransactionList]
	Statistics       shell.QueryHandler[statistics.Query, statistics.Statistics]
	StudentProfile   shell.QueryHandler[studentprofile.Query, studentprofile.StudentProfile]
	ListBooks        shell.QueryHandler[listbooks.Query, []core.Book]
	ListStudents     shell.QueryHandler[liststudents.Query, []core.Student]

	Authenticator Authenticator
	Health        Pinger
}

func (h Handlers) validate() error {
	required := []any{
		h.BorrowBook, h.ReturnBook, h.ReconcileOverdue,
		h.AddBook, h.UpdateBook, h.RemoveBook,
		h.RegisterStudent, h.UpdateStudent, h.RemoveStudent,
		h.ListTransactions, h.Statistics, h.StudentProfile, h.ListBooks, h.ListStudents,
		h.Authenticator, h.Health,
	}

	for _, handler := range required {
		if handler == nil {
			return ErrMissingHandler
		}
	}

	return nil
}

// Config holds the HTTP-level settings.
type Config struct {
	CORSOrigins []string

	// EnforceAuth requires an admin token on the mutating book and student routes.
	EnforceAuth bool
}

type api struct {
	handlers Handlers
	logger   store.ContextualLogger
	now      func() time.Time
}

// Option configures the router.
type Option func(*api)

// WithContextualLogger sets the logger for requests and internal errors.
func WithContextualLogger(logger store.ContextualLogger) Option {
	return func(a *api) {
		a.logger = logger
	}
}

// WithClock replaces time.Now as the source of command times.
func WithClock(now func() time.Time) Option {
	return func(a *api) {
		a.now = now
	}
}

// NewRouter creates the gin engine with all routes under /api.
func NewRouter(handlers Handlers, cfg Config, opts ...Option) (*gin.Engine, error) {
	if err := handlers.validate(); err != nil {
		return nil, err
	}

	a := &api{
		handlers: handlers,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	corsHandler, err := newCORS(cfg.CORSOrigins)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), a.logRequests(), corsHandler)

	adminOnly := func(c *gin.Context) { c.Next() }
	if cfg.EnforceAuth {
		adminOnly = a.requireAdmin()
	}

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", a.health)

		apiGroup.POST("/auth/student-login", a.studentLogin)
		apiGroup.POST("/auth/admin-login", a.adminLogin)

		apiGroup.POST("/borrow", a.borrow)
		apiGroup.POST("/return", a.giveBack)
		apiGroup.GET("/transactions", a.listTransactions)
		apiGroup.GET("/overdue", a.overdue)
		apiGroup.GET("/statistics", a.statistics)

		apiGroup.GET("/students", a.listStudents)
		apiGroup.GET("/students/:barcode", a.studentProfile)
		apiGroup.POST("/students", adminOnly, a.registerStudent)
		apiGroup.PUT("/students/:barcode", adminOnly, a.updateStudent)
		apiGroup.DELETE("/students/:barcode", adminOnly, a.removeStudent)

		apiGroup.GET("/books", a.listBooks)
		apiGroup.POST("/books", adminOnly, a.addBook)
		apiGroup.PUT("/books/:barcode", adminOnly, a.updateBook)
		apiGroup.DELETE("/books/:barcode", adminOnly, a.removeBook)
	}

	return router, nil
}
