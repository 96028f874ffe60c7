package factory

import (
	"log/slog"
	"time"

	"github.com/acmei/landgrab/internal/dependencies/mocks"
	"github.com/acmei/landgrab/internal/storage/memory"
	"github.com/acmei/landgrab/internal/testutil"
)

// TestApp wraps App with mocked dependencies exposed for test control
type TestApp struct {
	*App

	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockToken  *mocks.MockToken
}

// NewTestApp creates an App backed by in-memory storage and mocked
// clock, random and token generators. The random queue is pre-loaded
// with enough distinct session ids for a typical test.
func NewTestApp() *TestApp {
	return NewTestAppWithLogger(testutil.NopLogger())
}

// NewTestAppWithLogger creates a test App with the given logger
func NewTestAppWithLogger(logger *slog.Logger) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockRandom.QueueString(
		"SESSION00001",
		"SESSION00002",
		"SESSION00003",
		"SESSION00004",
		"SESSION00005",
	)
	mockToken := mocks.NewMockToken()

	app := newWithDependencies(memory.New(), mockClock, mockRandom, mockToken, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockToken:  mockToken,
	}
}
