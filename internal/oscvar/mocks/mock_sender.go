// Hand-written in the shape of MockGen output.
// Source: github.com/streamglitch/glitcher/internal/oscvar (interfaces: Sender)

// Package mocks holds a hand-maintained stand-in for the output of
// `mockgen -destination=mocks/mock_sender.go -package=mocks
// github.com/streamglitch/glitcher/internal/oscvar Sender`, kept in
// tree (rather than generated at build time) since this module has no
// go:generate runner step.
package mocks

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
	osc "github.com/hypebeast/go-osc"
)

// MockSender is a mock of the oscvar.Sender interface.
type MockSender struct {
	ctrl     *gomock.Controller
	recorder *MockSenderMockRecorder
}

// MockSenderMockRecorder is the mock recorder for MockSender.
type MockSenderMockRecorder struct {
	mock *MockSender
}

// NewMockSender returns a new mock bound to ctrl.
func NewMockSender(ctrl *gomock.Controller) *MockSender {
	mock := &MockSender{ctrl: ctrl}
	mock.recorder = &MockSenderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSender) EXPECT() *MockSenderMockRecorder {
	return m.recorder
}

// Send mocks base method.
func (m *MockSender) Send(packet osc.Packet) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Send", packet)
	ret0, _ := ret[0].(error)
	return ret0
}

// Send indicates an expected call of Send.
func (mr *MockSenderMockRecorder) Send(packet interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*MockSender)(nil).Send), packet)
}
