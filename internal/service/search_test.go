package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/you/go-flight-deals/internal/amadeus"
)

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func testCriteria(flex, minStay, maxStay int) Criteria {
	return Criteria{
		Origin:      "SFO",
		Destination: "OGG",
		StartDate:   date(2025, time.July, 31),
		Flexibility: flex,
		MinStay:     minStay,
		MaxStay:     maxStay,
		MaxPrice:    500,
		Currency:    "USD",
		Adults:      1,
		MaxResults:  50,
	}
}

func offerWithPrice(t *testing.T, price string) amadeus.Offer {
	t.Helper()
	return rawOffer(t, fmt.Sprintf(`{
		"price": {"total": %q},
		"itineraries": [
			{"segments": [
				{"carrierCode": "UA", "departure": {"at": "2025-07-31T08:15:00"}, "arrival": {"at": "2025-07-31T14:05:00"}}
			]},
			{"segments": [
				{"carrierCode": "UA", "departure": {"at": "2025-08-07T15:20:00"}, "arrival": {"at": "2025-08-07T23:55:00"}}
			]}
		]
	}`, price))
}

func TestRun_FailedPairsAreSkipped(t *testing.T) {
	// 5 date pairs: flex=2, stay 7..7. Pairs 1, 3 and 5 fail outright,
	// pairs 2 and 4 each find one offer.
	mock := NewClientMock(
		FailCall(),
		MockCall{Offers: []amadeus.Offer{offerWithPrice(t, "300.00")}},
		FailCall(),
		MockCall{Offers: []amadeus.Offer{offerWithPrice(t, "250.00")}},
		FailCall(),
	)
	svc := NewSearchService(mock, nil, nil, testLogger())

	res, err := svc.Run(context.Background(), testCriteria(2, 7, 7), nil)
	require.NoError(t, err)
	require.Len(t, res.Offers, 2)
	if !res.Complete {
		t.Fatalf("run with failed pairs must still be complete")
	}
	if got := mock.Calls(); got != 5 {
		t.Fatalf("expected 5 search calls, got %d", got)
	}
}

func TestRun_DiscoveryOrderPreserved(t *testing.T) {
	mock := NewClientMock(
		MockCall{Offers: []amadeus.Offer{offerWithPrice(t, "400.00")}},
		MockCall{Offers: []amadeus.Offer{offerWithPrice(t, "100.00")}},
		MockCall{Offers: []amadeus.Offer{offerWithPrice(t, "300.00")}},
	)
	svc := NewSearchService(mock, nil, nil, testLogger())

	res, err := svc.Run(context.Background(), testCriteria(1, 7, 7), nil)
	require.NoError(t, err)
	require.Len(t, res.Offers, 3)

	// discovery order, not price order
	require.Equal(t, 400.00, res.Offers[0].Price)
	require.Equal(t, 100.00, res.Offers[1].Price)
	require.Equal(t, 300.00, res.Offers[2].Price)

	SortByPrice(res.Offers)
	require.Equal(t, 100.00, res.Offers[0].Price)
	require.Equal(t, 400.00, res.Offers[2].Price)
}

func TestRun_UnparsableRecordsAreSkipped(t *testing.T) {
	bad := rawOffer(t, `{"price": {"total": "oops"}, "itineraries": []}`)
	mock := NewClientMock(
		MockCall{Offers: []amadeus.Offer{bad, offerWithPrice(t, "199.00"), bad}},
	)
	svc := NewSearchService(mock, nil, nil, testLogger())

	res, err := svc.Run(context.Background(), testCriteria(0, 7, 7), nil)
	require.NoError(t, err)
	require.Len(t, res.Offers, 1)
	require.Equal(t, 199.00, res.Offers[0].Price)
	if !res.Complete {
		t.Fatalf("parse failures must not mark the run incomplete")
	}
}

func TestRun_ProgressPerPair(t *testing.T) {
	mock := NewClientMock(MockCall{Offers: []amadeus.Offer{}})
	svc := NewSearchService(mock, nil, nil, testLogger())

	c := testCriteria(1, 7, 8) // 3 offsets x 2 stays = 6 pairs
	var events []Progress
	_, err := svc.Run(context.Background(), c, func(p Progress) {
		events = append(events, p)
	})
	require.NoError(t, err)
	require.Len(t, events, 6)
	for i, p := range events {
		require.Equal(t, i+1, p.Index)
		require.Equal(t, 6, p.Total)
	}
	require.Equal(t, DatePair{Outbound: "2025-07-30", Return: "2025-08-06"}, events[0].Pair)
	require.Equal(t, DatePair{Outbound: "2025-08-01", Return: "2025-08-09"}, events[5].Pair)
}

func TestRun_ParamsPerPair(t *testing.T) {
	mock := NewClientMock(MockCall{Offers: []amadeus.Offer{}})
	svc := NewSearchService(mock, nil, nil, testLogger())

	c := testCriteria(1, 7, 7)
	c.NonStop = true
	c.MaxPrice = 499.9

	_, err := svc.Run(context.Background(), c, nil)
	require.NoError(t, err)

	params := mock.Params()
	require.Len(t, params, 3)
	first := params[0]
	require.Equal(t, "SFO", first.Origin)
	require.Equal(t, "OGG", first.Destination)
	require.Equal(t, "2025-07-30", first.Departure)
	require.Equal(t, "2025-08-06", first.Return)
	require.Equal(t, 1, first.Adults)
	require.Equal(t, 50, first.Max)
	require.True(t, first.NonStop)
	require.Equal(t, "USD", first.Currency)
	require.Equal(t, 499.9, first.MaxPrice)
}

func TestRun_CancelledBetweenPairs(t *testing.T) {
	mock := NewClientMock(MockCall{Offers: []amadeus.Offer{offerWithPrice(t, "300.00")}})
	svc := NewSearchService(mock, nil, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Run(ctx, testCriteria(2, 7, 7), func(p Progress) {
		if p.Index == 1 {
			cancel()
		}
	})
	require.ErrorIs(t, err, context.Canceled)
	if res.Complete {
		t.Fatalf("cancelled run must not be complete")
	}
	// the in-flight pair finished before cancellation was observed
	require.Equal(t, 1, mock.Calls())
	require.Len(t, res.Offers, 1)
}

func TestRun_RecordsRunSummary(t *testing.T) {
	mock := NewClientMock(
		MockCall{Offers: []amadeus.Offer{offerWithPrice(t, "300.00"), offerWithPrice(t, "250.00")}},
	)
	runs := NewRunLog(10)
	svc := NewSearchService(mock, nil, runs, testLogger())

	_, err := svc.Run(context.Background(), testCriteria(0, 7, 7), nil)
	require.NoError(t, err)

	last, ok := runs.Last()
	require.True(t, ok)
	require.Equal(t, "SFO", last.Origin)
	require.Equal(t, "OGG", last.Destination)
	require.Equal(t, 1, last.Pairs)
	require.Equal(t, 2, last.Offers)
	require.Equal(t, 250.00, last.Cheapest)
	require.True(t, last.Complete)
	require.NotEmpty(t, last.ID)
}

func TestCheckConnection(t *testing.T) {
	mock := NewClientMock()
	svc := NewSearchService(mock, nil, nil, testLogger())

	if !svc.CheckConnection(context.Background()) {
		t.Fatalf("expected connected")
	}
	mock.SetConnected(false)
	if svc.CheckConnection(context.Background()) {
		t.Fatalf("expected not connected")
	}
}
