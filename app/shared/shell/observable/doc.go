// Package observable wraps command and query handlers with metrics, tracing and logging
// while the wrapped handlers keep only their business workflow.
//
// Wrapping happens explicitly where the application is wired, not inside the handler constructors:
//
//	coreHandler := borrowbook.NewCommandHandler(engine)
//
//	borrowHandler, err := observable.NewCommandWrapper(
//		coreHandler,
//		observable.WithCommandMetrics[borrowbook.Command, borrowbook.Result](metricsCollector),
//		observable.WithCommandTracing[borrowbook.Command, borrowbook.Result](tracingCollector),
//		observable.WithCommandContextualLogging[borrowbook.Command, borrowbook.Result](contextualLogger),
//	)
//
// Each concern is optional. Tests of the business workflow use the core handlers directly.
//
// Outcomes are classified as success, idempotent, rejected (a business rule said no),
// canceled, timeout or error. Rejections are logged at warn level and do not mark the span as failed.
package observable
