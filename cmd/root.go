package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/salestrack/internal/adapters/kv"
	"github.com/okian/salestrack/internal/adapters/repository"
	"github.com/okian/salestrack/internal/app"
	"github.com/okian/salestrack/internal/config"
	"github.com/okian/salestrack/pkg/logger"
)

// cli carries state shared by every command.
type cli struct {
	out    io.Writer
	errOut io.Writer
	cfg    *config.Config
	log    logger.Logger
	money  *message.Printer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut, money: message.NewPrinter(language.English)}

	cmd := &cobra.Command{
		Use:           "salestrack",
		Short:         "Track sales representatives, their deals and revenue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd.Context())
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.AddCommand(
		c.newServeCmd(),
		c.newRepCmd(),
		c.newDealCmd(),
		c.newStatsCmd(),
		c.newExportCmd(),
		c.newSeedCmd(),
	)
	return cmd
}

// init loads configuration (defaults -> optional file -> env) and sets up logging.
func (c *cli) init(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithWriter(c.errOut), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel),
			logger.Error(err),
		)
		_ = logger.SetLevelString("info")
	}
	c.log = logger.Named("salestrack")
	return nil
}

// openService opens the configured store and loads the dashboard from it.
// The returned func closes the store.
func (c *cli) openService(ctx context.Context) (*app.Service, func(), error) {
	store, err := kv.Open(ctx, c.cfg.StorageDriver, c.cfg.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	loc, err := c.cfg.Location()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	svc := app.New(
		app.WithLogger(c.log.Named("app")),
		app.WithStore(repository.New(store,
			repository.WithKey(c.cfg.StorageKey),
			repository.WithLogger(c.log.Named("repository")),
		)),
		app.WithLocation(loc),
		app.WithDedupeSize(c.cfg.DedupeSize),
	)
	c.warn(svc.Start(ctx))

	closeFn := func() {
		if err := store.Close(); err != nil {
			c.log.Error(ctx, "failed to close store", logger.Error(err))
		}
	}
	return svc, closeFn, nil
}

// warn prints persistence warnings to stderr.
func (c *cli) warn(out app.Outcome) {
	for _, w := range out.Warnings {
		fmt.Fprintln(c.errOut, "warning:", w)
	}
}

func (c *cli) formatMoney(v float64) string {
	return c.money.Sprintf("%.2f", v)
}
