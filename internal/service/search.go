package service

import (
	"context"
	"log"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/you/go-flight-deals/internal/amadeus"
)

// OfferClient is the one remote collaborator of a search run.
type OfferClient interface {
	Search(ctx context.Context, p amadeus.SearchParams) ([]amadeus.Offer, error)
	CheckConnection(ctx context.Context) bool
}

// SearchResult holds the offers in discovery order. Complete means every
// generated date pair was attempted; pairs that failed outright still count
// as attempted, so Complete is true for any run that was not cancelled.
type SearchResult struct {
	Offers   []FlightOffer `json:"offers"`
	Complete bool          `json:"complete"`
}

// Progress is emitted once per date pair, before its search call is issued.
type Progress struct {
	Pair  DatePair `json:"pair"`
	Index int      `json:"index"` // 1-based
	Total int      `json:"total"`
}

// SearchService drives the scan: one date pair at a time, strictly in order,
// never more than one search call in flight.
type SearchService struct {
	client  OfferClient
	limiter *rate.Limiter
	runs    *RunLog
	log     *log.Logger
}

func NewSearchService(client OfferClient, limiter *rate.Limiter, runs *RunLog, logger *log.Logger) *SearchService {
	return &SearchService{client: client, limiter: limiter, runs: runs, log: logger}
}

// Run scans every date pair for the given criteria. A failed pair contributes
// zero offers and the scan moves on; a record that fails to parse is skipped
// and its siblings are still processed. Nothing is retried. The context is
// only observed between pairs; cancellation returns the partial accumulation
// with Complete=false and the context error.
func (s *SearchService) Run(ctx context.Context, c Criteria, onProgress func(Progress)) (SearchResult, error) {
	pairs := c.Pairs()
	total := len(pairs)
	started := time.Now()

	s.log.Printf("searching %d date combinations for %s->%s", total, c.Origin, c.Destination)

	var offers []FlightOffer
	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return SearchResult{Offers: offers, Complete: false}, err
		}
		if onProgress != nil {
			onProgress(Progress{Pair: pair, Index: i + 1, Total: total})
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return SearchResult{Offers: offers, Complete: false}, err
			}
		}

		s.log.Printf("searching flights for %s -> %s (%d/%d)", pair.Outbound, pair.Return, i+1, total)

		raw, err := s.client.Search(ctx, amadeus.SearchParams{
			Origin:      c.Origin,
			Destination: c.Destination,
			Departure:   pair.Outbound,
			Return:      pair.Return,
			Adults:      c.Adults,
			Max:         c.MaxResults,
			NonStop:     c.NonStop,
			Currency:    c.Currency,
			MaxPrice:    c.MaxPrice,
		})
		if err != nil {
			s.log.Printf("pair %s -> %s failed: %v", pair.Outbound, pair.Return, err)
			continue
		}

		for _, record := range raw {
			offer, err := ParseOffer(record, c.Currency, true)
			if err != nil {
				s.log.Printf("skipping offer for %s -> %s: %v", pair.Outbound, pair.Return, err)
				continue
			}
			offers = append(offers, offer)
		}
	}

	result := SearchResult{Offers: offers, Complete: true}
	if s.runs != nil {
		s.runs.Record(c, result, started, time.Now())
	}
	return result, nil
}

// CheckConnection reports whether the offer API is reachable right now.
func (s *SearchService) CheckConnection(ctx context.Context) bool {
	return s.client.CheckConnection(ctx)
}

// SortByPrice orders offers cheapest first, in place. Ties keep discovery
// order.
func SortByPrice(offers []FlightOffer) {
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })
}
