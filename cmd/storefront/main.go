package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/catalog"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/localstore"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/storeclient"
)

// app is the per-invocation state shared by all subcommands.
type app struct {
	verbose     bool
	profilePath string
	apiURL      string

	cfg    config.ClientConfig
	logger *zap.Logger
	client *storeclient.Client
	store  *localstore.Store
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Browse the building-materials catalog and place orders",
		Long: `storefront talks to the store API. When the store cannot take an order
(signed out, expired session, API unreachable) the order is kept in a local
database so it is not lost.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.profilePath, "config", config.DefaultProfilePath(), "Profile YAML file")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Store API base URL (overrides profile and env)")

	root.AddCommand(
		newProductsCmd(a),
		newBuyCmd(a),
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newOrdersCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	cfg, err := config.LoadClient(a.profilePath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	a.cfg = cfg
	a.client = storeclient.New(cfg.APIURL, cfg.RequestTimeout, logger)

	store, err := localstore.Open(ctx, cfg.LocalStorePath())
	if err != nil {
		return err
	}
	a.store = store
	a.logger.Debug("client ready",
		zap.String("api_url", cfg.APIURL), zap.String("data_dir", cfg.DataDir))
	return nil
}

func (a *app) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close local store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// newCatalog starts the background load of the name to id mapping.
func (a *app) newCatalog(ctx context.Context) *catalog.Cache {
	cache := catalog.New(a.client,
		catalog.WithLogger(a.logger),
		catalog.WithFuzzyMatch(a.cfg.FuzzyMatch),
		catalog.WithMaxAge(a.cfg.CatalogMaxAge),
	)
	cache.Initialize(ctx)
	return cache
}
