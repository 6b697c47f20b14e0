package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/you/go-flight-deals/internal/amadeus"
	"github.com/you/go-flight-deals/internal/config"
	"github.com/you/go-flight-deals/internal/service"
	"github.com/you/go-flight-deals/internal/telegram"
)

var headers = map[string]string{
	"Content-Type": "application/json",
}

func respond(status int, body string) (*events.APIGatewayProxyResponse, error) {
	return &events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}, nil
}

// handler processes one Telegram webhook update. Each invocation builds its
// services fresh; Lambda may reuse the process, in which case the token
// cache survives between invocations.
func handler(ctx context.Context, request events.APIGatewayProxyRequest) (*events.APIGatewayProxyResponse, error) {
	log.Println("processing telegram webhook update")

	var update tgbotapi.Update
	if err := json.Unmarshal([]byte(request.Body), &update); err != nil {
		log.Printf("bad update payload: %v", err)
		return respond(400, `{"status":"bad request"}`)
	}

	// non-command updates are acknowledged with an empty body so Telegram
	// does not redeliver them
	if update.Message == nil || !update.Message.IsCommand() {
		return respond(200, "")
	}

	cmd, ok := telegram.ParseCommand(update.Message.Command())
	if !ok {
		return respond(200, "")
	}

	cfg := config.Load()
	logger := log.Default()

	tokens := amadeus.NewTokenSource(cfg.AmadeusURL, cfg.AmadeusClientID, cfg.AmadeusClientSecret, logger)
	client := amadeus.NewClient(cfg.AmadeusURL, tokens, logger)
	limiter := rate.NewLimiter(rate.Limit(cfg.SearchRatePerSec), 1)
	runs := service.NewRunLog(cfg.RunLogSize)
	searchSvc := service.NewSearchService(client, limiter, runs, logger)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Printf("could not create telegram bot: %v", err)
		return respond(500, `{"status":"error"}`)
	}

	// The webhook has no process to stop; shutdown is a no-op here.
	noop := func() {}
	bot := telegram.New(api, searchSvc, runs, cfg.Criteria, nil, logger, noop)

	bot.Dispatch(ctx, cmd, update.Message.Chat.ID)

	return respond(200, `{"status":"ok"}`)
}

func main() {
	lambda.Start(handler)
}
