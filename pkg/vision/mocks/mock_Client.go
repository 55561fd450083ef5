// Package mocks provides test doubles for the vision client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	vision "github.com/draftworks/manualj-cli/pkg/vision"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// ExtractRooms provides a mock function with given fields: ctx, req
func (_m *MockClient) ExtractRooms(ctx context.Context, req vision.ExtractRoomsRequest) (*vision.ExtractRoomsResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for ExtractRooms")
	}

	var r0 *vision.ExtractRoomsResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, vision.ExtractRoomsRequest) (*vision.ExtractRoomsResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, vision.ExtractRoomsRequest) *vision.ExtractRoomsResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*vision.ExtractRoomsResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, vision.ExtractRoomsRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

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
