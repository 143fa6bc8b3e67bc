package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingcorner/library-circulation/app/features/command/reconcileoverdue"
	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell"
	"github.com/readingcorner/library-circulation/app/shared/shell/config"
	"github.com/readingcorner/library-circulation/testutil/testdoubles"
)

func writeSQLiteConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(dir, "circulation.db"))
	content := fmt.Sprintf(`
database:
  driver: sqlite
  dsn: %q
log:
  level: error
`, dsn)

	path := filepath.Join(dir, "circulation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "error in arranging test config")

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return stdout.String(), err
}

func Test_SeedThenReconcileOverdue_PrintsSeededOverdueLoan(t *testing.T) {
	// arrange
	configFile := writeSQLiteConfig(t)
	_, err := execute(t, "seed", "--config", configFile)
	require.NoError(t, err)

	// act
	out, err := execute(t, "reconcile-overdue", "--config", configFile)

	// assert
	require.NoError(t, err)

	var overdue []core.Transaction
	require.NoError(t, json.Unmarshal([]byte(out), &overdue), out)
	require.Len(t, overdue, 1)
	assert.Equal(t, "STU003", overdue[0].StudentBarcode)
	assert.Equal(t, "BK005", overdue[0].BookBarcode)
	assert.Equal(t, 5, overdue[0].OverdueDays)
}

func Test_Migrate_IsRepeatable(t *testing.T) {
	// arrange
	configFile := writeSQLiteConfig(t)

	// act
	_, firstErr := execute(t, "migrate", "--config", configFile)
	_, secondErr := execute(t, "migrate", "--config", configFile)

	// assert
	assert.NoError(t, firstErr)
	assert.NoError(t, secondErr)
}

func Test_Commands_Fail_WhenConfigIsUnusable(t *testing.T) {
	// arrange
	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("database:\n  driver: oracle\n"), 0o600))

	// act
	_, missingErr := execute(t, "migrate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	_, invalidErr := execute(t, "migrate", "--config", invalid)

	// assert
	assert.ErrorIs(t, missingErr, config.ErrReadingConfigFailed)
	assert.ErrorIs(t, invalidErr, config.ErrInvalidConfig)
}

type reconcileHandlerStub struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *reconcileHandlerStub) Handle(_ context.Context, _ reconcileoverdue.Command) (reconcileoverdue.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	if s.err != nil {
		return reconcileoverdue.Result{HandlerResult: shell.NewErrorResult(shell.SingleAttempt(s.err))}, s.err
	}

	return reconcileoverdue.Result{Overdue: []core.Transaction{{ID: "loan-1"}}, Updated: 1}, nil
}

func (s *reconcileHandlerStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func Test_RunReconciler_RunsEveryInterval_UntilCanceled(t *testing.T) {
	// arrange
	handler := &reconcileHandlerStub{}
	logger := testdoubles.NewContextualLoggerSpy()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// act
	go func() {
		defer close(done)
		runReconciler(ctx, handler, 5*time.Millisecond, time.Now, logger)
	}()

	require.Eventually(t, func() bool { return handler.callCount() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done

	// assert
	assert.True(t, logger.HasMessage(testdoubles.LevelInfo, logMsgReconcilerStarted))
	assert.True(t, logger.HasMessage(testdoubles.LevelInfo, logMsgReconcileCompleted))
}

func Test_RunReconciler_LogsFailures_AndKeepsRunning(t *testing.T) {
	// arrange
	handler := &reconcileHandlerStub{err: assert.AnError}
	logger := testdoubles.NewContextualLoggerSpy()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// act
	go func() {
		defer close(done)
		runReconciler(ctx, handler, 5*time.Millisecond, time.Now, logger)
	}()

	require.Eventually(t, func() bool { return handler.callCount() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done

	// assert
	assert.True(t, logger.HasMessage(testdoubles.LevelError, logMsgReconcileFailed))
}

func Test_RunReconciler_ReturnsImmediately_WhenIntervalIsZero(t *testing.T) {
	// arrange
	handler := &reconcileHandlerStub{}

	// act
	runReconciler(context.Background(), handler, 0, time.Now, testdoubles.NewContextualLoggerSpy())

	// assert
	assert.Zero(t, handler.callCount())
}
