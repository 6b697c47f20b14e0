package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
)

// SearchParams describes a single flight-offers query, one date pair at a time.
type SearchParams struct {
	Origin      string
	Destination string
	Departure   string // YYYY-MM-DD
	Return      string // YYYY-MM-DD, empty for one-way
	Adults      int
	Max         int
	NonStop     bool
	Currency    string
	MaxPrice    float64 // <= 0 means no filter
}

// Offer is one raw record from the flight-offers response, kept close to the
// wire shape; normalization happens in the service layer.
type Offer struct {
	Price struct {
		Total string `json:"total"`
	} `json:"price"`
	Itineraries []struct {
		Segments []struct {
			CarrierCode string `json:"carrierCode"`
			Departure   struct {
				At string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				At string `json:"at"`
			} `json:"arrival"`
		} `json:"segments"`
	} `json:"itineraries"`
}

type Client struct {
	host       string
	searchPath string
	client     *http.Client
	tokens     *TokenSource
	log        *log.Logger
}

func NewClient(host string, tokens *TokenSource, logger *log.Logger) *Client {
	return &Client{
		host:       host,
		searchPath: "/v2/shopping/flight-offers",
		client:     http.DefaultClient,
		tokens:     tokens,
		log:        logger,
	}
}

// Search performs one synchronous flight-offers call. An empty slice with a
// nil error means the API answered and found nothing for this date pair.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]Offer, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("originLocationCode", p.Origin)
	q.Set("destinationLocationCode", p.Destination)
	q.Set("departureDate", p.Departure)
	if p.Return != "" {
		q.Set("returnDate", p.Return)
	}
	q.Set("adults", strconv.Itoa(p.Adults))
	q.Set("max", strconv.Itoa(p.Max))
	q.Set("nonStop", strconv.FormatBool(p.NonStop))
	q.Set("currencyCode", p.Currency)
	if p.MaxPrice > 0 {
		// the API only accepts integer price filters; truncate, don't round
		q.Set("maxPrice", strconv.Itoa(int(p.MaxPrice)))
	}

	u := c.host + c.searchPath + "?" + q.Encode()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Printf("search %s->%s %s: %v", p.Origin, p.Destination, p.Departure, err)
		return nil, fmt.Errorf("amadeus search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.log.Printf("search %s->%s %s: %s", p.Origin, p.Destination, p.Departure, resp.Status)
		return nil, fmt.Errorf("amadeus search: %s", resp.Status)
	}

	var payload struct {
		Data []Offer `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("amadeus search: could not decode response: %w", err)
	}
	if payload.Data == nil {
		return []Offer{}, nil
	}
	return payload.Data, nil
}

// CheckConnection reports whether a token can currently be obtained.
func (c *Client) CheckConnection(ctx context.Context) bool {
	_, err := c.tokens.Token(ctx)
	return err == nil
}
