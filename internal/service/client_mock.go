package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/you/go-flight-deals/internal/amadeus"
)

// ClientMock scripts one response per call, in order. Once the script runs
// out it keeps returning the last entry.
type ClientMock struct {
	script    []MockCall
	delay     time.Duration
	connected bool
	callCount *int32
	params    []amadeus.SearchParams
}

type MockCall struct {
	Offers []amadeus.Offer
	Err    error
}

func NewClientMock(script ...MockCall) *ClientMock {
	var calls int32
	return &ClientMock{script: script, connected: true, callCount: &calls}
}

func (m *ClientMock) Calls() int { return int(atomic.LoadInt32(m.callCount)) }

// Params returns the search parameters of every call seen so far.
func (m *ClientMock) Params() []amadeus.SearchParams { return m.params }

func (m *ClientMock) SetConnected(ok bool) { m.connected = ok }

func (m *ClientMock) Search(ctx context.Context, p amadeus.SearchParams) ([]amadeus.Offer, error) {
	n := int(atomic.AddInt32(m.callCount, 1)) - 1
	m.params = append(m.params, p)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if len(m.script) == 0 {
		return []amadeus.Offer{}, nil
	}
	if n >= len(m.script) {
		n = len(m.script) - 1
	}
	call := m.script[n]
	if call.Err != nil {
		return nil, call.Err
	}
	return call.Offers, nil
}

func (m *ClientMock) CheckConnection(ctx context.Context) bool { return m.connected }

var errMockTransport = errors.New("mock: transport failure")

// FailCall is a scripted transport failure.
func FailCall() MockCall { return MockCall{Err: errMockTransport} }
