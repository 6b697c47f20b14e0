package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/you/go-flight-deals/internal/service"
)

const digestTemplate = `<h2>Flight deals: {{.Origin}} &rarr; {{.Destination}}</h2>
<p>{{len .Offers}} matching offers found. Best deals:</p>
<ul>
{{range .Offers}}<li>
  <strong>{{printf "%.2f" .Price}} {{.Currency}}</strong> &mdash;
  out {{.Outbound.Date}} ({{.Outbound.Airline}}){{if .Return}},
  back {{.Return.Date}} ({{.Return.Airline}}){{end}}
</li>
{{end}}</ul>`

// EmailNotifier mails a digest of the best deals after a run. Mailgun is
// configured entirely from the environment (MG_DOMAIN, MG_API_KEY, MG_FROM).
type EmailNotifier struct {
	recipients []string
	maxOffers  int
	log        *log.Logger
}

func NewEmailNotifier(recipients []string, logger *log.Logger) *EmailNotifier {
	return &EmailNotifier{recipients: recipients, maxOffers: 5, log: logger}
}

// NotifyDeals sends the digest. Offers are assumed sorted cheapest first.
func (n *EmailNotifier) NotifyDeals(ctx context.Context, c service.Criteria, offers []service.FlightOffer) error {
	if len(n.recipients) == 0 || len(offers) == 0 {
		return nil
	}

	mg, err := mailgun.NewMailgunFromEnv()
	if err != nil {
		return fmt.Errorf("mailgun not configured: %w", err)
	}

	top := offers
	if len(top) > n.maxOffers {
		top = top[:n.maxOffers]
	}

	buf := new(bytes.Buffer)
	tpl := template.Must(template.New("deal digest").Parse(digestTemplate))
	err = tpl.Execute(buf, struct {
		Origin      string
		Destination string
		Offers      []service.FlightOffer
	}{c.Origin, c.Destination, top})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Flight deals %s-%s", c.Origin, c.Destination)
	msg := mg.NewMessage(os.Getenv("MG_FROM"), subject, "", n.recipients...)
	msg.SetHtml(buf.String())

	if _, _, err := mg.Send(ctx, msg); err != nil {
		return fmt.Errorf("could not send message: %w", err)
	}
	n.log.Printf("deal digest sent to %d recipients", len(n.recipients))
	return nil
}
