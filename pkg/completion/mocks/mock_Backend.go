// Package mocks provides test doubles for the completion backend.
package mocks

import (
	"context"

	completion "github.com/sells-group/uni-enrich/pkg/completion"
	mock "github.com/stretchr/testify/mock"
)

// MockBackend is a mock type for the Backend interface.
type MockBackend struct {
	mock.Mock
}

// Complete provides a mock function with given fields: ctx, systemPrompt, userPrompt, opts
func (_m *MockBackend) Complete(ctx context.Context, systemPrompt string, userPrompt string, opts completion.Options) (string, error) {
	ret := _m.Called(ctx, systemPrompt, userPrompt, opts)

	if len(ret) == 0 {
		panic("no return value specified for Complete")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, completion.Options) (string, error)); ok {
		return rf(ctx, systemPrompt, userPrompt, opts)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string, completion.Options) string); ok {
		r0 = rf(ctx, systemPrompt, userPrompt, opts)
	} else {
		r0 = ret.Get(0).(string)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string, completion.Options) error); ok {
		r1 = rf(ctx, systemPrompt, userPrompt, opts)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockBackend creates a new instance of MockBackend.
func NewMockBackend(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBackend {
	mock := &MockBackend{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
