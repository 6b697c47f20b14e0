package amadeus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// apiServer serves both the token endpoint and the flight-offers endpoint,
// capturing the last search query for assertions.
func apiServer(t *testing.T, offersBody string, offersStatus int) (*httptest.Server, *url.Values) {
	t.Helper()
	lastQuery := &url.Values{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token": "test-token", "expires_in": 1800}`)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header: got %q", got)
		}
		*lastQuery = r.URL.Query()
		if offersStatus != http.StatusOK {
			http.Error(w, "error", offersStatus)
			return
		}
		fmt.Fprint(w, offersBody)
	})
	return httptest.NewServer(mux), lastQuery
}

func newTestClient(srv *httptest.Server) *Client {
	tokens := NewTokenSource(srv.URL, "id", "secret", discard())
	return NewClient(srv.URL, tokens, discard())
}

func baseParams() SearchParams {
	return SearchParams{
		Origin:      "SFO",
		Destination: "OGG",
		Departure:   "2025-07-30",
		Return:      "2025-08-06",
		Adults:      1,
		Max:         50,
		NonStop:     false,
		Currency:    "USD",
	}
}

func TestSearch_QueryParameters(t *testing.T) {
	srv, query := apiServer(t, `{"data": []}`, http.StatusOK)
	defer srv.Close()

	p := baseParams()
	p.NonStop = true
	p.MaxPrice = 499.9

	_, err := newTestClient(srv).Search(context.Background(), p)
	require.NoError(t, err)

	require.Equal(t, "SFO", query.Get("originLocationCode"))
	require.Equal(t, "OGG", query.Get("destinationLocationCode"))
	require.Equal(t, "2025-07-30", query.Get("departureDate"))
	require.Equal(t, "2025-08-06", query.Get("returnDate"))
	require.Equal(t, "1", query.Get("adults"))
	require.Equal(t, "50", query.Get("max"))
	require.Equal(t, "true", query.Get("nonStop"))
	require.Equal(t, "USD", query.Get("currencyCode"))
	// 499.9 truncates to "499", it does not round to "500"
	require.Equal(t, "499", query.Get("maxPrice"))
}

func TestSearch_OneWayOmitsReturnDate(t *testing.T) {
	srv, query := apiServer(t, `{"data": []}`, http.StatusOK)
	defer srv.Close()

	p := baseParams()
	p.Return = ""
	p.NonStop = false

	_, err := newTestClient(srv).Search(context.Background(), p)
	require.NoError(t, err)

	_, hasReturn := (*query)["returnDate"]
	require.False(t, hasReturn)
	require.Equal(t, "false", query.Get("nonStop"))
}

func TestSearch_NoMaxPriceOmitsFilter(t *testing.T) {
	srv, query := apiServer(t, `{"data": []}`, http.StatusOK)
	defer srv.Close()

	_, err := newTestClient(srv).Search(context.Background(), baseParams())
	require.NoError(t, err)

	_, hasMaxPrice := (*query)["maxPrice"]
	require.False(t, hasMaxPrice)
}

func TestSearch_EmptyDataIsNotAnError(t *testing.T) {
	srv, _ := apiServer(t, `{"data": []}`, http.StatusOK)
	defer srv.Close()

	offers, err := newTestClient(srv).Search(context.Background(), baseParams())
	require.NoError(t, err)
	require.NotNil(t, offers)
	require.Empty(t, offers)
}

func TestSearch_MissingDataFieldIsNotAnError(t *testing.T) {
	srv, _ := apiServer(t, `{}`, http.StatusOK)
	defer srv.Close()

	offers, err := newTestClient(srv).Search(context.Background(), baseParams())
	require.NoError(t, err)
	require.NotNil(t, offers)
	require.Empty(t, offers)
}

func TestSearch_DecodesRawOffers(t *testing.T) {
	body := `{"data": [
		{
			"price": {"total": "432.10"},
			"itineraries": [
				{"segments": [
					{"carrierCode": "UA", "departure": {"at": "2025-07-30T08:15:00"}, "arrival": {"at": "2025-07-30T14:05:00"}}
				]}
			]
		}
	]}`
	srv, _ := apiServer(t, body, http.StatusOK)
	defer srv.Close()

	offers, err := newTestClient(srv).Search(context.Background(), baseParams())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.Equal(t, "432.10", offers[0].Price.Total)
	require.Len(t, offers[0].Itineraries, 1)
	require.Equal(t, "UA", offers[0].Itineraries[0].Segments[0].CarrierCode)
}

func TestSearch_NonSuccessStatusIsFailure(t *testing.T) {
	srv, _ := apiServer(t, "", http.StatusBadRequest)
	defer srv.Close()

	_, err := newTestClient(srv).Search(context.Background(), baseParams())
	require.Error(t, err)
}

func TestSearch_NoTokenAbortsBeforeSearch(t *testing.T) {
	var searchCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		searchCalls++
		fmt.Fprint(w, `{"data": []}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := newTestClient(srv).Search(context.Background(), baseParams())
	require.ErrorIs(t, err, ErrNoToken)
	require.Zero(t, searchCalls)
}

func TestCheckConnection(t *testing.T) {
	srv, _ := apiServer(t, `{"data": []}`, http.StatusOK)
	client := newTestClient(srv)
	require.True(t, client.CheckConnection(context.Background()))
	srv.Close()

	broken := NewClient("http://127.0.0.1:1",
		NewTokenSource("http://127.0.0.1:1", "id", "secret", discard()), discard())
	require.False(t, broken.CheckConnection(context.Background()))
}
