package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/you/go-flight-deals/internal/amadeus"
)

// Leg is one direction of an offer, normalized from the raw segments.
type Leg struct {
	Date     string    `json:"date"` // YYYY-MM-DD of departure
	Airline  string    `json:"airline"`
	DepartAt time.Time `json:"depart_at"`
	ArriveAt time.Time `json:"arrive_at"`
}

// FlightOffer is one priced itinerary. Return is nil for one-way offers;
// when present, every return field is set.
type FlightOffer struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Outbound Leg     `json:"outbound"`
	Return   *Leg    `json:"return,omitempty"`
}

// ParseOffer normalizes one raw record. A missing second itinerary on a
// round-trip search degrades to a one-way offer rather than an error.
func ParseOffer(raw amadeus.Offer, currency string, roundTrip bool) (FlightOffer, error) {
	price, err := strconv.ParseFloat(raw.Price.Total, 64)
	if err != nil {
		return FlightOffer{}, fmt.Errorf("bad price %q: %w", raw.Price.Total, err)
	}

	if len(raw.Itineraries) == 0 {
		return FlightOffer{}, fmt.Errorf("offer has no itineraries")
	}

	outbound, err := parseLeg(raw, 0)
	if err != nil {
		return FlightOffer{}, fmt.Errorf("outbound: %w", err)
	}

	offer := FlightOffer{Price: price, Currency: currency, Outbound: outbound}

	if roundTrip && len(raw.Itineraries) > 1 {
		ret, err := parseLeg(raw, 1)
		if err != nil {
			return FlightOffer{}, fmt.Errorf("return: %w", err)
		}
		offer.Return = &ret
	}

	return offer, nil
}

func parseLeg(raw amadeus.Offer, itinerary int) (Leg, error) {
	segments := raw.Itineraries[itinerary].Segments
	if len(segments) == 0 {
		return Leg{}, fmt.Errorf("itinerary %d has no segments", itinerary)
	}

	first := segments[0]
	last := segments[len(segments)-1]

	depart, err := parseOfferTime(first.Departure.At)
	if err != nil {
		return Leg{}, fmt.Errorf("departure time: %w", err)
	}
	arrive, err := parseOfferTime(last.Arrival.At)
	if err != nil {
		return Leg{}, fmt.Errorf("arrival time: %w", err)
	}
	if first.CarrierCode == "" {
		return Leg{}, fmt.Errorf("itinerary %d missing carrier code", itinerary)
	}

	return Leg{
		Date:     depart.Format(dateFormat),
		Airline:  first.CarrierCode,
		DepartAt: depart,
		ArriveAt: arrive,
	}, nil
}

func parseOfferTime(s string) (time.Time, error) {
	// Amadeus returns local time without offset, e.g. 2025-09-10T08:45:00.
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC); err == nil {
		return t, nil
	}
	// Fallbacks if they ever include a zone
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", s)
}
