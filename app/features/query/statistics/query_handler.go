package statistics

import (
	"context"
	"time"
)

// StatisticsStore defines the interface needed by the QueryHandler.
type StatisticsStore interface {
	CountBooks(ctx context.Context) (int, error)
	SumAvailable(ctx context.Context) (int, error)
	CountOpenTransactions(ctx context.Context) (int, error)
	CountActiveStudents(ctx context.Context) (int, error)

	// CountOverdueTransactions counts open loans with due_date < asOf.
	CountOverdueTransactions(ctx context.Context, asOf time.Time) (int, error)
}

// QueryHandler aggregates the dashboard counts.
type QueryHandler struct {
	stats StatisticsStore
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(stats StatisticsStore) QueryHandler {
	return QueryHandler{stats: stats}
}

// Handle runs one count per figure. The counts are not read in one snapshot.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Statistics, error) {
	var (
		result Statistics
		err    error
	)

	if result.TotalBooks, err = h.stats.CountBooks(ctx); err != nil {
		return Statistics{}, err
	}

	if result.TotalAvailable, err = h.stats.SumAvailable(ctx); err != nil {
		return Statistics{}, err
	}

	if result.BorrowedCount, err = h.stats.CountOpenTransactions(ctx); err != nil {
		return Statistics{}, err
	}

	if result.ActiveStudents, err = h.stats.CountActiveStudents(ctx); err != nil {
		return Statistics{}, err
	}

	if result.OverdueCount, err = h.stats.CountOverdueTransactions(ctx, query.AsOf); err != nil {
		return Statistics{}, err
	}

	return result, nil
}
