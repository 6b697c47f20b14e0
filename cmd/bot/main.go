package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/you/go-flight-deals/internal/amadeus"
	"github.com/you/go-flight-deals/internal/auth"
	"github.com/you/go-flight-deals/internal/config"
	"github.com/you/go-flight-deals/internal/httpx"
	"github.com/you/go-flight-deals/internal/notify"
	"github.com/you/go-flight-deals/internal/service"
	"github.com/you/go-flight-deals/internal/telegram"
)

func main() {
	direct := flag.Bool("direct", false, "run one search, report it to the configured chat, then exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := config.Load()
	logger := log.Default()

	// One token slot for the whole process; every search reuses it.
	tokens := amadeus.NewTokenSource(cfg.AmadeusURL, cfg.AmadeusClientID, cfg.AmadeusClientSecret, logger)
	client := amadeus.NewClient(cfg.AmadeusURL, tokens, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.SearchRatePerSec), 1)
	runs := service.NewRunLog(cfg.RunLogSize)
	searchSvc := service.NewSearchService(client, limiter, runs, logger)

	var notifier telegram.Notifier
	if len(cfg.MailgunRecipients) > 0 {
		notifier = notify.NewEmailNotifier(cfg.MailgunRecipients, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("could not create telegram bot: %v", err)
	}
	logger.Printf("authorized on telegram account %s", api.Self.UserName)

	bot := telegram.New(api, searchSvc, runs, cfg.Criteria, notifier, logger, stop)

	if *direct {
		if cfg.TelegramChatID == 0 {
			log.Fatal("telegram_chat_id is required for direct mode")
		}
		logger.Printf("direct mode: searching and reporting to chat %d", cfg.TelegramChatID)
		bot.DirectSearch(ctx, cfg.TelegramChatID)
		return
	}

	authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTUser, cfg.JWTPassword, logger)

	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("/search", httpx.SearchHandler(searchSvc, cfg.Criteria))
	protectedMux.HandleFunc("/runs", httpx.RunsHandler(runs))
	protectedMux.HandleFunc("/status", httpx.StatusHandler(searchSvc, cfg.Criteria, runs))
	protectedMux.HandleFunc("/ws/progress", httpx.ProgressWSHandler(searchSvc, cfg.Criteria))

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("/auth/login", authSvc.LoginHandler())
	rootMux.Handle("/", authSvc.Protect(protectedMux))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           rootMux,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Run(ctx)
	})

	g.Go(func() error {
		logger.Printf("➡️ server listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
