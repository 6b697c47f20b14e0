package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/you/go-flight-deals/internal/service"
)

// API is the slice of the Bot API the bot actually uses; *tgbotapi.BotAPI
// satisfies it, tests swap in a recorder.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Notifier delivers a deal digest on a secondary channel after a run.
type Notifier interface {
	NotifyDeals(ctx context.Context, c service.Criteria, offers []service.FlightOffer) error
}

// Bot wires chat commands to the search service. It is explicitly
// constructed and passed around; exactly one run is active at a time because
// commands are handled in arrival order on the polling loop.
type Bot struct {
	api      API
	svc      *service.SearchService
	runs     *service.RunLog
	criteria service.Criteria
	notifier Notifier // may be nil
	log      *log.Logger
	stop     context.CancelFunc

	handlers map[Command]func(ctx context.Context, chatID int64)
}

// New builds the bot. stop requests process shutdown; the /stop command and
// a completed search both trigger it, like the original bot shutting itself
// down once every date pair has been processed.
func New(api API, svc *service.SearchService, runs *service.RunLog, criteria service.Criteria, notifier Notifier, logger *log.Logger, stop context.CancelFunc) *Bot {
	b := &Bot{
		api:      api,
		svc:      svc,
		runs:     runs,
		criteria: criteria,
		notifier: notifier,
		log:      logger,
		stop:     stop,
	}
	b.handlers = map[Command]func(ctx context.Context, chatID int64){
		CmdStart:  b.handleStart,
		CmdHelp:   b.handleHelp,
		CmdSearch: b.handleSearch,
		CmdStatus: b.handleStatus,
		CmdStop:   b.handleStop,
	}
	return b
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	cmd, ok := ParseCommand(update.Message.Command())
	if !ok {
		return
	}
	b.Dispatch(ctx, cmd, update.Message.Chat.ID)
}

// Dispatch runs one command for one chat. The Lambda webhook entrypoint
// calls this directly with a decoded update.
func (b *Bot) Dispatch(ctx context.Context, cmd Command, chatID int64) {
	handler, ok := b.handlers[cmd]
	if !ok {
		return
	}
	handler(ctx, chatID)
}

// DirectSearch runs a search without a triggering command and reports to the
// given chat. The one-shot direct mode of cmd/bot uses it to search, report
// and exit without ever polling for updates.
func (b *Bot) DirectSearch(ctx context.Context, chatID int64) {
	b.handleSearch(ctx, chatID)
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.send(chatID, welcomeText)
}

func (b *Bot) handleHelp(ctx context.Context, chatID int64) {
	b.send(chatID, helpText)
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	connected := b.svc.CheckConnection(ctx)
	var last *service.RunSummary
	if b.runs != nil {
		if s, ok := b.runs.Last(); ok {
			last = &s
		}
	}
	b.send(chatID, FormatStatus(connected, b.criteria, last))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64) {
	progress, err := b.api.Send(tgbotapi.NewMessage(chatID, "🔍 Searching for flights..."))
	if err != nil {
		b.log.Printf("could not send search message: %v", err)
		return
	}

	result, err := b.svc.Run(ctx, b.criteria, nil)
	if err != nil {
		b.edit(chatID, progress.MessageID, "❌ Sorry, something went wrong while searching for flights.")
		return
	}

	service.SortByPrice(result.Offers)
	b.edit(chatID, progress.MessageID, FormatDigest(result.Offers, 5))

	if b.notifier != nil && len(result.Offers) > 0 {
		if err := b.notifier.NotifyDeals(ctx, b.criteria, result.Offers); err != nil {
			b.log.Printf("deal notification failed: %v", err)
		}
	}

	if result.Complete {
		b.send(chatID, "✅ Search completed! All date pairs processed. Shutting down...")
		b.stop()
	}
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) {
	b.send(chatID, "👋 Shutting down the bot. Goodbye!")
	b.stop()
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Printf("could not send message: %v", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Printf("could not edit message: %v", err)
	}
}
