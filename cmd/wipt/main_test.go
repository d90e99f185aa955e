package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/wipt/internal/adapters/telemetry"
	"go.trai.ch/wipt/internal/app"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports/mocks"
	"go.trai.ch/wipt/internal/engine/updater"
	"go.uber.org/mock/gomock"
)

func newComponents(t *testing.T, store *mocks.MockCacheStore, log *mocks.MockLogger) ComponentProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	upd := updater.NewUpdater(fetcher, mocks.NewMockManifestParser(ctrl), store, log, telemetry.NewNoOpTracer())
	application := app.New(domain.DefaultSettings(), log, store, fetcher, upd, nil, nil)

	return func(_ context.Context) (*app.Components, func(), error) {
		return app.NewComponents(application, log), func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockStore := mocks.NewMockCacheStore(ctrl)

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, stderr, newComponents(t, mockStore, mockLogger))

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "wipt version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when a command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockStore := mocks.NewMockCacheStore(ctrl)

	// No repositories are configured.
	mockLogger.EXPECT().Error(domain.ErrNoSources)

	exitCode := run(context.Background(), []string{"update"}, new(bytes.Buffer), new(bytes.Buffer),
		newComponents(t, mockStore, mockLogger))
	assert.Equal(t, 1, exitCode)
}

// TestRun_BatchFailure verifies that batch failures are not logged a second time.
func TestRun_BatchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockStore := mocks.NewMockCacheStore(ctrl)

	mockStore.EXPECT().Load().Return(domain.NewCache(), nil)
	mockLogger.EXPECT().Warn(gomock.Any())
	// Only the per-item error is logged.
	mockLogger.EXPECT().Error(gomock.Cond(func(err error) bool {
		return errors.Is(err, domain.ErrProductNotFound)
	}))

	exitCode := run(context.Background(), []string{"show", "Nope"}, new(bytes.Buffer), new(bytes.Buffer),
		newComponents(t, mockStore, mockLogger))
	assert.Equal(t, 1, exitCode)
}
