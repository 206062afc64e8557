package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/counter"
	"github.com/Zachkp/portfolio/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var port int

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if port > 0 {
			cfg.Server.Port = port
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}
	serveCmd.Flags().IntVar(&port, "port", 0, "override server port")

	elapsedCmd := &cobra.Command{
		Use:   "elapsed",
		Short: "Print the coding counter once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			epoch, err := cfg.Epoch()
			if err != nil {
				return err
			}
			secs := counter.Elapsed(epoch, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "I've been coding for %s seconds\n", counter.Format(secs))
			return nil
		},
	}

	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Personal portfolio site with a live coding counter",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	root.Flags().AddFlagSet(serveCmd.Flags())
	root.AddCommand(serveCmd, elapsedCmd)
	return root
}

func runServer(ctx context.Context, cfg *config.Config) error {
	epoch, err := cfg.Epoch()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	retention, err := store.NewRetention(db, cfg.Store.CleanupSchedule, cfg.Store.Retention)
	if err != nil {
		return err
	}
	retention.Start()
	defer retention.Stop()

	clock := counter.New(epoch, counter.WithPeriod(cfg.Counter.Period))
	clock.Start(ctx)
	defer clock.Stop()

	s := newSite(cfg, clock, db, smtpMailer(cfg.Mail))
	return s.serve(ctx)
}
