// Package mocks provides test doubles for the Throxy client.
package mocks

import (
	"context"

	throxy "github.com/sells-group/uni-enrich/pkg/throxy"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// BuiltWith provides a mock function with given fields: ctx, targetURL
func (_m *MockClient) BuiltWith(ctx context.Context, targetURL string) ([]string, error) {
	ret := _m.Called(ctx, targetURL)

	if len(ret) == 0 {
		panic("no return value specified for BuiltWith")
	}

	var r0 []string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) ([]string, error)); ok {
		return rf(ctx, targetURL)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// Search provides a mock function with given fields: ctx, query
func (_m *MockClient) Search(ctx context.Context, query string) (*throxy.SearchResponse, error) {
	ret := _m.Called(ctx, query)

	if len(ret) == 0 {
		panic("no return value specified for Search")
	}

	var r0 *throxy.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*throxy.SearchResponse, error)); ok {
		return rf(ctx, query)
	}
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*throxy.SearchResponse)
	}
	r1 = ret.Error(1)

	return r0, r1
}

// WebsiteMarkdownScrape provides a mock function with given fields: ctx, targetURL
func (_m *MockClient) WebsiteMarkdownScrape(ctx context.Context, targetURL string) (string, error) {
	ret := _m.Called(ctx, targetURL)

	if len(ret) == 0 {
		panic("no return value specified for WebsiteMarkdownScrape")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (string, error)); ok {
		return rf(ctx, targetURL)
	}
	r0 = ret.Get(0).(string)
	r1 = ret.Error(1)

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
