// Package cli is the crawler's process entrypoint: a single cobra
// command that wires configuration, the stores, the social-network
// registry, account pools, the task publisher, and the parser
// orchestrator, then runs until SIGINT/SIGTERM.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evalgo/mansa/account"
	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/config"
	"github.com/evalgo/mansa/model"
	"github.com/evalgo/mansa/publisher"
	"github.com/evalgo/mansa/reddit"
	"github.com/evalgo/mansa/registry"
	"github.com/evalgo/mansa/settings"
	"github.com/evalgo/mansa/stats"
	"github.com/evalgo/mansa/store"
	"github.com/evalgo/mansa/version"
	"github.com/evalgo/mansa/worker"
)

// RootCmd is the crawler's single command. There are no subcommands:
// the process does one thing, controlled entirely by flags/env vars.
var RootCmd = &cobra.Command{
	Use:   "mansa",
	Short: "a Reddit crawler with durable task scheduling and rate-limited account pooling",
	Long: `mansa seeds and processes a durable queue of crawl tasks against
Reddit's API, spreading requests across a pool of rate-limited accounts
and persisting both the task queue and parsed entities to CouchDB.`,
	RunE: runCrawler,
}

func init() {
	defaults := config.LoadCrawlerConfig()

	RootCmd.PersistentFlags().String("settings-dir", defaults.SettingsDir, "directory containing general_settings.json and per-network settings.json files")
	RootCmd.PersistentFlags().String("couchdb-url", defaults.CouchDBURL, "CouchDB connection URL")
	RootCmd.PersistentFlags().String("database", defaults.Database, "CouchDB database name prefix")
	RootCmd.PersistentFlags().Int("channel-limit", defaults.ChannelLimit, "capacity of the publisher-to-orchestrator task channel")
	RootCmd.PersistentFlags().Int("worker-cap", defaults.WorkerCap, "soft cap on concurrently running handler invocations")
	RootCmd.PersistentFlags().String("mode", defaults.Mode, "publisher startup mode: \"manual\" (seed from settings) or \"recovery\" (republish stranded tasks)")
	RootCmd.PersistentFlags().Duration("stats-interval", defaults.StatsInterval, "interval between statistics snapshots")
	RootCmd.PersistentFlags().Bool("version", false, "print build and dependency version information, then exit")

	viper.BindPFlag("version", RootCmd.PersistentFlags().Lookup("version"))
	viper.BindPFlag("settings_dir", RootCmd.PersistentFlags().Lookup("settings-dir"))
	viper.BindPFlag("couchdb_url", RootCmd.PersistentFlags().Lookup("couchdb-url"))
	viper.BindPFlag("database", RootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("channel_limit", RootCmd.PersistentFlags().Lookup("channel-limit"))
	viper.BindPFlag("worker_cap", RootCmd.PersistentFlags().Lookup("worker-cap"))
	viper.BindPFlag("mode", RootCmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("stats_interval", RootCmd.PersistentFlags().Lookup("stats-interval"))

	viper.SetEnvPrefix("MANSA")
	viper.AutomaticEnv()
}

func runCrawler(cmd *cobra.Command, args []string) error {
	if viper.GetBool("version") {
		printVersion()
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	common.Logger.WithField("version", version.MainModuleVersion()).Info("mansa: starting up")

	settingsDir := viper.GetString("settings_dir")
	loaded, err := settings.Load(settingsDir)
	if err != nil {
		return fmt.Errorf("cli: loading settings: %w", err)
	}

	couchdbURL := viper.GetString("couchdb_url")
	database := viper.GetString("database")
	storeClient, err := store.Connect(ctx, couchdbURL, database)
	if err != nil {
		return fmt.Errorf("cli: connecting to store: %w", err)
	}
	defer storeClient.Close()

	bank := stats.New()
	stats.StartReporter(ctx, bank, viper.GetDuration("stats_interval"))

	redditHandler := reddit.NewHandler(storeClient, bank)
	if networkSettings, ok := loaded.NetworkSettingsFor(model.Reddit); ok {
		redditHandler.ApplySettings(networkSettings)
	}

	reg := registry.New()
	reg.Register(model.Reddit, redditHandler)

	if err := reg.EnsureRegistered(configuredNetworks(loaded)); err != nil {
		return fmt.Errorf("cli: %w", err)
	}

	pools, err := buildPools(ctx, reg, loaded, bank)
	if err != nil {
		return fmt.Errorf("cli: building account pools: %w", err)
	}

	mode := publisher.Manual
	if viper.GetString("mode") == "recovery" {
		mode = publisher.Recovery
	}
	channelLimit := viper.GetInt("channel_limit")
	pub := publisher.New(storeClient, reg, loaded, mode, channelLimit)

	workerPools := make(map[model.SocialNetworkTag]worker.AccountPool, len(pools))
	for tag, p := range pools {
		workerPools[tag] = p
	}
	orchestrator := worker.New(pub.Tasks(), workerPools, reg, bank, viper.GetInt("worker_cap"))

	errCh := make(chan error, 2)
	go func() { errCh <- pub.Start(ctx) }()
	go func() { errCh <- orchestrator.Start(ctx) }()

	select {
	case <-ctx.Done():
		common.Logger.Info("mansa: shutdown signal received, stopping new dispatch")
	case err := <-errCh:
		if err != nil {
			common.Logger.WithError(err).Error("mansa: a pipeline stage exited with an error")
		}
	}
	cancel()

	// Both pub.Start and orchestrator.Start return once ctx is done, so
	// draining the second result unblocks as soon as in-flight work
	// notices the cancellation — tasks left Processing are picked up by
	// Recovery mode on next start.
	<-errCh
	common.Logger.Info("mansa: shutdown complete")
	return nil
}

// printVersion reports the running binary's own version and its
// dependency graph, the --version flag's entire job.
func printVersion() {
	info := version.GetBuildInfo()
	fmt.Printf("mansa %s (%s)\n", info.MainVersion, info.GoVersion)
	if driver := version.GetDependency("github.com/go-kivik/kivik/v4"); driver != nil {
		fmt.Printf("store driver: %s@%s\n", driver.Path, driver.Version)
	}
	fmt.Println("dependencies:")
	for _, dep := range info.Dependencies {
		fmt.Printf("  %s %s\n", dep.Path, dep.Version)
	}
}

// configuredNetworks lists the social networks named in the loaded
// settings directory, for EnsureRegistered's startup check.
func configuredNetworks(loaded model.Settings) []model.SocialNetworkTag {
	tags := make([]model.SocialNetworkTag, 0, len(loaded.Networks))
	for tag := range loaded.Networks {
		tags = append(tags, tag)
	}
	return tags
}

// buildPools constructs one account.Pool per configured network,
// authenticating every account eagerly at startup so the orchestrator
// never blocks its first GetAccount call on an Auth round trip.
func buildPools(ctx context.Context, reg *registry.Registry, loaded model.Settings, bank *stats.Bank) (map[model.SocialNetworkTag]*account.Pool, error) {
	pools := make(map[model.SocialNetworkTag]*account.Pool)

	for _, tag := range reg.Networks() {
		networkSettings, ok := loaded.NetworkSettingsFor(tag)
		if !ok {
			continue
		}
		handler := reg.Dispatch(tag)
		accounts, err := handler.PrepareAccounts(loaded.General, networkSettings)
		if err != nil {
			return nil, fmt.Errorf("cli: preparing %s accounts: %w", tag, err)
		}

		pool := account.NewPool(bank)
		for _, acct := range accounts {
			session, err := handler.Auth(ctx, acct.Data, acct.HTTPClient)
			if err != nil {
				common.Logger.WithError(err).WithField("social_network", tag).Error("cli: authenticating account at startup")
				continue
			}
			acct.SetSession(session)
			pool.Add(acct)
		}
		pools[tag] = pool
	}
	return pools, nil
}
