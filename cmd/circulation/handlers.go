package main

import (
	"time"

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
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/app/shared/shell/auth"
	"github.com/readingcorner/library-circulation/app/shared/shell/observable"
	"github.com/readingcorner/library-circulation/store/sqlengine"
)

const updateBookRetryOperation = "update_book"

// buildHandlers wires every use case to the engine. With telemetry enabled each handler is wrapped
// by its observable counterpart.
func buildHandlers(engine sqlengine.Engine, authCfg authSettings, obs observation) (httpapi.Handlers, error) {
	issuer, err := auth.NewTokenIssuer(authCfg.secret, authCfg.ttl)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	var updateBookOptions []updatebook.Option
	if obs.metrics != nil {
		updateBookOptions = append(updateBookOptions,
			updatebook.WithRetryOptions(shell.WithMetrics(obs.metrics, updateBookRetryOperation)))
	}

	return httpapi.Handlers{
		BorrowBook:       wrapCommand[borrowbook.Command, borrowbook.Result](borrowbook.NewCommandHandler(engine), obs),
		ReturnBook:       wrapCommand[returnbook.Command, returnbook.Result](returnbook.NewCommandHandler(engine), obs),
		ReconcileOverdue: wrapCommand[reconcileoverdue.Command, reconcileoverdue.Result](reconcileoverdue.NewCommandHandler(engine), obs),
		AddBook:          wrapCommand[addbook.Command, addbook.Result](addbook.NewCommandHandler(engine), obs),
		UpdateBook:       wrapCommand[updatebook.Command, updatebook.Result](updatebook.NewCommandHandler(engine, updateBookOptions...), obs),
		RemoveBook:       wrapCommand[removebook.Command, removebook.Result](removebook.NewCommandHandler(engine), obs),
		RegisterStudent:  wrapCommand[registerstudent.Command, registerstudent.Result](registerstudent.NewCommandHandler(engine), obs),
		UpdateStudent:    wrapCommand[updatestudent.Command, updatestudent.Result](updatestudent.NewCommandHandler(engine), obs),
		RemoveStudent:    wrapCommand[removestudent.Command, removestudent.Result](removestudent.NewCommandHandler(engine), obs),

		ListTransactions: wrapQuery[listtransactions.Query, listtransactions.TransactionList](listtransactions.NewQueryHandler(engine), obs),
		Statistics:       wrapQuery[statistics.Query, statistics.Statistics](statistics.NewQueryHandler(engine), obs),
		StudentProfile:   wrapQuery[studentprofile.Query, studentprofile.StudentProfile](studentprofile.NewQueryHandler(engine), obs),
		ListBooks:        wrapQuery[listbooks.Query, []core.Book](listbooks.NewQueryHandler(engine), obs),
		ListStudents:     wrapQuery[liststudents.Query, []core.Student](liststudents.NewQueryHandler(engine), obs),

		Authenticator: auth.NewAuthenticator(engine, issuer),
		Health:        engine,
	}, nil
}

type authSettings struct {
	secret string
	ttl    time.Duration
}

// observation carries the collectors handed to the observable wrappers. A nil metrics collector means plain handlers.
type observation struct {
	metrics shell.MetricsCollector
	tracing shell.TracingCollector
	logger  shell.ContextualLogger
}

func wrapCommand[C shell.Command, R shell.CommandResult](
	handler shell.CommandHandler[C, R],
	obs observation,
) shell.CommandHandler[C, R] {
	if obs.metrics == nil {
		return handler
	}

	// the options never fail
	wrapper, _ := observable.NewCommandWrapper(handler,
		observable.WithCommandMetrics[C, R](obs.metrics),
		observable.WithCommandTracing[C, R](obs.tracing),
		observable.WithCommandContextualLogging[C, R](obs.logger),
	)

	return wrapper
}

func wrapQuery[Q shell.Query, R any](handler shell.QueryHandler[Q, R], obs observation) shell.QueryHandler[Q, R] {
	if obs.metrics == nil {
		return handler
	}

	wrapper, _ := observable.NewQueryWrapper(handler,
		observable.WithQueryMetrics[Q, R](obs.metrics),
		observable.WithQueryTracing[Q, R](obs.tracing),
		observable.WithQueryContextualLogging[Q, R](obs.logger),
	)

	return wrapper
}
