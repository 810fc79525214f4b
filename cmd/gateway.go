package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tanguofu/openclaw/internal/agent"
	"github.com/tanguofu/openclaw/internal/bus"
	"github.com/tanguofu/openclaw/internal/config"
	"github.com/tanguofu/openclaw/internal/dispatch"
	"github.com/tanguofu/openclaw/internal/slack"
	"github.com/tanguofu/openclaw/internal/store/sqlite"
)

func runGateway() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	if !cfg.Slack.Enabled || cfg.Slack.BotToken == "" || cfg.Slack.AppToken == "" {
		slog.Error("slack is not configured: set OPENCLAW_SLACK_BOT_TOKEN and OPENCLAW_SLACK_APP_TOKEN, or slack.bot_token / slack.app_token in config")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storePath := config.ExpandHome(cfg.Store.Path)
	stores, db, err := sqlite.NewStores(storePath)
	if err != nil {
		slog.Error("failed to open store", "path", storePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	client := slack.NewClient(cfg.Slack.BotToken, cfg.Slack.AppToken)

	identity, err := client.AuthTest(ctx)
	if err != nil {
		slog.Error("slack auth check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("slack identity resolved",
		"bot_user_id", identity.UserID, "account_id", identity.AccountID, "team_id", identity.TeamID)

	watcher := config.NewWatcher(cfgPath, cfg)
	msgBus := bus.New()

	handler := slack.NewHandler(slack.HandlerOptions{
		Config:    watcher.Snapshot,
		BotUserID: identity.UserID,
		AccountID: identity.AccountID,
		Directory: client,
		ChannelGate: func(ref slack.ChannelRef) bool {
			blocked := watcher.Snapshot().Slack.BlockedChannels
			return !slack.AllowListMatches(blocked, ref.ID, ref.Name)
		},
		Pairing:      stores.Pairing,
		ChannelAllow: stores.ChannelAllow,
		Dispatcher:   dispatch.NewBusDispatcher(msgBus, 0),
		Limiter:      slack.NewCommandLimiter(cfg.Gateway.RateLimitRPM),
	})

	listener := slack.NewListener(client, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listener.Run(gctx) })
	g.Go(func() error { return watcher.Run(gctx) })

	if cfg.Agents.Endpoint != "" {
		forwarder := agent.NewForwarder(msgBus, cfg.Agents.Endpoint)
		g.Go(func() error { return forwarder.Run(gctx) })
	} else {
		slog.Warn("no agent runtime endpoint configured; dispatched commands will report no output")
	}

	slog.Info("openclaw gateway started", "config", cfgPath, "store", storePath)

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		slog.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("gateway shut down")
}
