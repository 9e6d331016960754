package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// NewMockSinkForTest creates a new mock Sink for testing
func NewMockSinkForTest(t *testing.T) *MockSink {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockSink(ctrl)
}

// NewMockListerForTest creates a new mock Lister for testing
func NewMockListerForTest(t *testing.T) *MockLister {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockLister(ctrl)
}
