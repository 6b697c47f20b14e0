package httpx

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/you/go-flight-deals/internal/service"
)

type searchResponse struct {
	Origin      string                `json:"origin"`
	Destination string                `json:"destination"`
	Complete    bool                  `json:"complete"`
	Offers      []service.FlightOffer `json:"offers"`
}

type statusResponse struct {
	Connected bool                `json:"connected"`
	Origin    string              `json:"origin"`
	Dest      string              `json:"destination"`
	StartDate string              `json:"start_date"`
	Pairs     int                 `json:"pairs"`
	LastRun   *service.RunSummary `json:"last_run,omitempty"`
}

// SearchHandler runs one full scan with the configured criteria and returns
// the offers sorted by price. The scan is sequential; expect it to take a
// while for wide flexibility windows.
func SearchHandler(svc *service.SearchService, criteria service.Criteria) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, err := svc.Run(r.Context(), criteria, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		service.SortByPrice(res.Offers)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(searchResponse{
			Origin:      criteria.Origin,
			Destination: criteria.Destination,
			Complete:    res.Complete,
			Offers:      res.Offers,
		})
	}
}

// RunsHandler lists recent run summaries, newest first.
func RunsHandler(runs *service.RunLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(runs.Recent(n))
	}
}

// StatusHandler reports connectivity and the configured criteria.
func StatusHandler(svc *service.SearchService, criteria service.Criteria, runs *service.RunLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			Connected: svc.CheckConnection(r.Context()),
			Origin:    criteria.Origin,
			Dest:      criteria.Destination,
			StartDate: criteria.StartDate.Format("2006-01-02"),
			Pairs:     criteria.PairCount(),
		}
		if runs != nil {
			if last, ok := runs.Last(); ok {
				resp.LastRun = &last
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 🔒 in prod, restrict origin
	},
}

type wsEvent struct {
	Type     string            `json:"type"` // "progress" or "result"
	Progress *service.Progress `json:"progress,omitempty"`
	Result   *searchResponse   `json:"result,omitempty"`
}

// ProgressWSHandler runs a scan and streams one event per date pair followed
// by the final result. The scan itself stays strictly sequential; the socket
// only observes it.
func ProgressWSHandler(svc *service.SearchService, criteria service.Criteria) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		res, err := svc.Run(r.Context(), criteria, func(p service.Progress) {
			if err := conn.WriteJSON(wsEvent{Type: "progress", Progress: &p}); err != nil {
				log.Printf("write error: %v", err)
			}
		})
		if err != nil {
			_ = conn.WriteJSON(map[string]string{"error": err.Error()})
			return
		}

		service.SortByPrice(res.Offers)
		_ = conn.WriteJSON(wsEvent{Type: "result", Result: &searchResponse{
			Origin:      criteria.Origin,
			Destination: criteria.Destination,
			Complete:    res.Complete,
			Offers:      res.Offers,
		}})
	}
}
