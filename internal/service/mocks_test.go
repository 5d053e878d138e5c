package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SeyyedAliBargh/task-manager-api/internal/events"
)

// MockEventEmitter implements the events.EventEmitter interface for testing
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.JobRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// strPtr returns a pointer to the given string, for partial update params.
func strPtr(s string) *string {
	return &s
}
