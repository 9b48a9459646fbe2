package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfeed/internal/adapter"
	"github.com/amishk599/jobfeed/internal/config"
	"github.com/amishk599/jobfeed/internal/ingest"
	"github.com/amishk599/jobfeed/internal/model"
	"github.com/amishk599/jobfeed/internal/normalize"
	"github.com/amishk599/jobfeed/internal/notifier"
	"github.com/amishk599/jobfeed/internal/ratelimit"
	"github.com/amishk599/jobfeed/internal/retry"
	"github.com/amishk599/jobfeed/internal/store"
)

var (
	cfgPath string
	debug   bool
	logJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "jobfeed",
	Short: "Job posting aggregator with subscriber alerts",
	Long:  "jobfeed pulls postings from ATS boards, RemoteOK and feeds, stores the new ones and alerts subscribers whose topics match.",
	// Default to `start` so that `jobfeed` with no args runs the daemon.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBFEED_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
}

func loadConfig() (*config.Config, error) {
	return config.Load(config.ResolvePath(cfgPath))
}

func setupLogger(dbg, jsonOut bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	if jsonOut {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStore connects the configured backend. Dry runs get a throwaway memory store.
func openStore(ctx context.Context, cfg *config.Config, dryRun bool) (store.Store, error) {
	if dryRun {
		return store.NewMemoryStore(), nil
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	return st, nil
}

func createFetcher(family, identifier string, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.JobFetcher, bool) {
	switch family {
	case adapter.FamilyLever:
		return adapter.NewLeverAdapter(identifier, httpClient, logger), true
	case adapter.FamilyGreenhouse:
		return adapter.NewGreenhouseAdapter(identifier, httpClient, logger), true
	case adapter.FamilyAshby:
		return adapter.NewAshbyAdapter(identifier, httpClient, logger), true
	case adapter.FamilyRemoteOK:
		return adapter.NewRemoteOKAdapter(identifier, httpClient, logger), true
	case adapter.FamilyRSS:
		return adapter.NewFeedAdapter(identifier, httpClient, logger), true
	case adapter.FamilySynthetic:
		return adapter.NewSyntheticAdapter(identifier, cfg.Sources.SyntheticPerBoard, nil), true
	default:
		logger.Warn("unsupported source family, skipping", "family", family, "identifier", identifier)
		return nil, false
	}
}

// buildSources wires every enabled identifier into a source. Network
// connectors are retried and rate limited per family; every attempt waits
// its turn.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []*adapter.Source {
	limiter := ratelimit.NewKeyedRateLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.Overrides)
	policy := retry.Policy{MaxRetries: cfg.Retry.MaxRetries, BaseDelay: cfg.Retry.BaseDelay, MaxDelay: cfg.Retry.MaxDelay}
	enricher := adapter.NewEnricher(normalize.NewSalaryParser(cfg.Ingest.SalaryMinBareAmount))

	var sources []*adapter.Source
	for _, f := range cfg.Sources.Enabled() {
		for _, id := range f.Identifiers {
			fetcher, ok := createFetcher(f.Family, id, cfg, httpClient, logger)
			if !ok {
				continue
			}
			label := adapter.SourceLabel(f.Family, id)
			if f.Family == adapter.FamilySynthetic {
				logger.Warn("synthetic source enabled, its postings are not real", "source", label)
			} else {
				fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter, f.Family)
				fetcher = retry.NewRetryFetcher(fetcher, policy, label, logger)
			}
			sources = append(sources, adapter.NewSource(f.Family, id, fetcher, enricher, logger))
			logger.Debug("registered source", "source", label)
		}
	}
	return sources
}

// setupSenders returns one sender per enabled channel. The log channel is
// always available.
func setupSenders(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) map[model.Channel]model.Sender {
	limiter := ratelimit.NewKeyedRateLimiter(cfg.Notify.MinDelay, nil)
	policy := retry.Policy{MaxRetries: cfg.Notify.MaxRetries, BaseDelay: cfg.Retry.BaseDelay, MaxDelay: cfg.Retry.MaxDelay}
	wrap := func(ch model.Channel, s model.Sender) model.Sender {
		return retry.NewRetrySender(ratelimit.NewRateLimitedSender(s, limiter, string(ch)), policy, ch, logger)
	}

	senders := map[model.Channel]model.Sender{
		model.ChannelLog: notifier.NewLogSender(logger),
	}
	if t := cfg.Notify.Telegram; t.Enabled {
		senders[model.ChannelTelegram] = wrap(model.ChannelTelegram, notifier.NewTelegramSender(t.BaseURL, t.BotToken, httpClient))
		logger.Info("using telegram channel")
	}
	if cfg.Notify.Discord.Enabled {
		senders[model.ChannelDiscord] = wrap(model.ChannelDiscord, notifier.NewDiscordSender(httpClient))
		logger.Info("using discord channel")
	}
	if cfg.Notify.Slack.Enabled {
		senders[model.ChannelSlack] = wrap(model.ChannelSlack, notifier.NewSlackSender(httpClient))
		logger.Info("using slack channel")
	}
	return senders
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return adapter.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
}

func newNotifier(cfg *config.Config, st store.Store, httpClient *http.Client, logger *slog.Logger) *notifier.Notifier {
	return notifier.New(st, st, setupSenders(cfg, httpClient, logger), cfg.Notify.MaxPerSubscriber, logger)
}

func buildPipeline(cfg *config.Config, st store.Store, logger *slog.Logger) (*ingest.Pipeline, error) {
	httpClient := newHTTPClient(cfg)
	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources to ingest")
	}
	list := make([]ingest.Source, len(sources))
	for i, s := range sources {
		list[i] = s
	}
	orch := ingest.NewOrchestrator(list, st, cfg.Ingest.Concurrency, logger)
	return ingest.NewPipeline(orch, newNotifier(cfg, st, httpClient, logger), logger), nil
}
