package telegram

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/you/go-flight-deals/internal/service"
)

const welcomeText = "👋 Welcome to the Flight Deals Bot!\n\n" +
	"I can help you find the best flight deals between airports.\n\n" +
	"Available commands:\n" +
	"/search - Search for flights\n" +
	"/status - Show current search parameters\n" +
	"/help - Show this help message\n" +
	"/stop - Stop the bot"

const helpText = "🔍 How to use the Flight Deals Bot:\n\n" +
	"/search - Start a flight search with the configured parameters\n" +
	"/status - Show current search parameters and bot status\n" +
	"/stop - Stop the bot\n\n" +
	"Example:\n/search"

func formatMoney(n float64) string { return "$" + humanize.FormatFloat("#,###.##", n) }

// FormatOffer renders one offer the way the chat shows it.
func FormatOffer(o service.FlightOffer) string {
	lines := []string{
		fmt.Sprintf("💰 Price: %s", formatMoney(o.Price)),
		"\n✈️ Outbound Flight:",
		fmt.Sprintf("📅 Date: %s", o.Outbound.Date),
		fmt.Sprintf("🛫 Departure: %s", o.Outbound.DepartAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("🛬 Arrival: %s", o.Outbound.ArriveAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("✈️ Airline: %s", o.Outbound.Airline),
	}

	if o.Return != nil {
		lines = append(lines,
			"\n↩️ Return Flight:",
			fmt.Sprintf("📅 Date: %s", o.Return.Date),
			fmt.Sprintf("🛫 Departure: %s", o.Return.DepartAt.Format("2006-01-02 15:04")),
			fmt.Sprintf("🛬 Arrival: %s", o.Return.ArriveAt.Format("2006-01-02 15:04")),
			fmt.Sprintf("✈️ Airline: %s", o.Return.Airline),
		)
	}

	return strings.Join(lines, "\n")
}

// FormatDigest renders the result message: up to limit offers, assumed
// already sorted cheapest first.
func FormatDigest(offers []service.FlightOffer, limit int) string {
	if len(offers) == 0 {
		return "❌ No flights found matching your criteria."
	}

	lines := []string{
		fmt.Sprintf("✅ Found %d matching flights!\n", len(offers)),
		"🏆 Best deals:\n",
	}
	if limit > len(offers) {
		limit = len(offers)
	}
	for i, offer := range offers[:limit] {
		lines = append(lines,
			fmt.Sprintf("\n#%d Deal:", i+1),
			FormatOffer(offer),
			"\n"+strings.Repeat("-", 30),
		)
	}
	return strings.Join(lines, "\n")
}

// FormatStatus renders the /status reply.
func FormatStatus(connected bool, c service.Criteria, last *service.RunSummary) string {
	apiStatus := "❌ Not Connected"
	if connected {
		apiStatus = "✅ Connected"
	}

	lines := []string{
		"🤖 Flight Deals Bot Status\n",
		fmt.Sprintf("API Status: %s\n", apiStatus),
		"\n📊 Current Search Parameters:",
		fmt.Sprintf("• Origin: %s", c.Origin),
		fmt.Sprintf("• Destination: %s", c.Destination),
		fmt.Sprintf("• Base Date: %s", c.StartDate.Format("2006-01-02")),
		fmt.Sprintf("• Days Flexibility: ±%d days", c.Flexibility),
		fmt.Sprintf("• Stay Duration: %d-%d days", c.MinStay, c.MaxStay),
		fmt.Sprintf("• Maximum Price: %s", formatMoney(c.MaxPrice)),
		fmt.Sprintf("• Date Pairs per Search: %d", c.PairCount()),
	}

	if last != nil {
		lines = append(lines,
			"\n🕑 Last Run:",
			fmt.Sprintf("• Route: %s → %s", last.Origin, last.Destination),
			fmt.Sprintf("• Offers Found: %d", last.Offers),
		)
		if last.Offers > 0 {
			lines = append(lines, fmt.Sprintf("• Cheapest: %s", formatMoney(last.Cheapest)))
		}
	}

	return strings.Join(lines, "\n")
}
