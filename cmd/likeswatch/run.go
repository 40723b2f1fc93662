package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"likeswatch/pkg/action"
	"likeswatch/pkg/auth"
	"likeswatch/pkg/browser"
	"likeswatch/pkg/chat"
	"likeswatch/pkg/config"
	"likeswatch/pkg/crawler"
	"likeswatch/pkg/discord"
	"likeswatch/pkg/logger"
	"likeswatch/pkg/notify"
	"likeswatch/pkg/ratelimit"
	"likeswatch/pkg/storage"
	"likeswatch/pkg/twitter"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the watch daemon",
		Long:  "Starts the sweep loop and the chat gateway and runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}
}

// engine bundles the wired components and everything to tear down
type engine struct {
	cfg      *config.Config
	log      logger.Logger
	store    *storage.SQLiteStore
	session  *browser.Session
	client   *discord.Client
	crawl    *crawler.Orchestrator
	twitter  *twitter.Client
	notifier *notify.Notifier
}

// buildEngine wires every component. On failure everything already started
// is torn down before returning.
func buildEngine() (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, err
	}
	log := logger.GetLogger()

	token, err := discordToken(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	session, err := browser.Connect(browser.Config{
		Headless:    cfg.Browser.Headless,
		ChromePath:  cfg.Browser.ChromePath,
		NavTimeout:  cfg.Browser.NavTimeout,
		UserDataDir: cfg.Browser.UserDataDir,
	}, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	sendGuard := ratelimit.NewTokenBucket(5, time.Second)
	client, err := discord.New(token, sendGuard, log)
	if err != nil {
		session.Close()
		store.Close()
		return nil, err
	}

	tw := twitter.NewClient(session, cfg.Twitter.BaseURL, log)
	notifier := notify.New(client, ratelimit.NewInterval(cfg.Crawl.MessageDelay), log)
	crawl := crawler.New(tw, store, notifier, crawler.Config{
		Interval:     cfg.Crawl.Interval,
		FetchLimit:   cfg.Twitter.FetchLimit,
		SweepOnStart: cfg.Crawl.SweepOnStart,
	}, log)

	return &engine{
		cfg:      cfg,
		log:      log,
		store:    store,
		session:  session,
		client:   client,
		crawl:    crawl,
		twitter:  tw,
		notifier: notifier,
	}, nil
}

// shutdown tears components down in reverse start order
func (e *engine) shutdown() {
	if err := e.client.Close(); err != nil {
		e.log.WithError(err).Warn("failed to close chat session")
	}
	if err := e.session.Close(); err != nil {
		e.log.WithError(err).Warn("failed to close browser")
	}
	if err := e.store.Close(); err != nil {
		e.log.WithError(err).Warn("failed to close store")
	}
}

func runDaemon() error {
	e, err := buildEngine()
	if err != nil {
		return err
	}
	defer e.shutdown()

	coordinator := action.NewCoordinator(e.twitter, e.client, e.cfg.Discord.OwnerID, e.log)
	e.client.OnLikeRequest(func(ctx context.Context, in chat.Interaction) {
		coordinator.Handle(ctx, in)
	})

	if err := e.client.Open(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.log.InfoWithFields("watch daemon started", map[string]interface{}{
		"interval":    e.cfg.Crawl.Interval,
		"fetch_limit": e.cfg.Twitter.FetchLimit,
	})
	e.crawl.Run(ctx)
	return nil
}

// discordToken resolves the bot token: config wins, the credential store is
// the fallback.
func discordToken(cfg *config.Config) (string, error) {
	if cfg.Discord.Token != "" {
		return cfg.Discord.Token, nil
	}
	manager, err := auth.NewManager()
	if err != nil {
		return "", fmt.Errorf("no discord token in config and credential store unavailable: %w", err)
	}
	cred, err := manager.Retrieve(auth.CredentialDiscordToken)
	if err != nil {
		return "", fmt.Errorf("discord token not configured, run 'likeswatch auth login' first: %w", err)
	}
	return cred.Secret, nil
}
