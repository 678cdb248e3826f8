package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ruh-integration-pages/internal/app"
	"ruh-integration-pages/internal/config"
	"ruh-integration-pages/pkg/logger"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	log      *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ruh-pages",
	Short: "Generate and publish Ruh AI integration pages",
	Long: `ruh-pages works through the connector list: it researches each pending
connector, generates its integration page, saves it locally and publishes it
to the CMS.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		cfg = c
		log = logger.NewWith(os.Stderr, c.Log.Level, c.Log.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./ruh.yaml or ./configs/ruh.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.AddCommand(statusCmd, nextCmd, batchCmd, parseCmd, classifyCmd, republishCmd)
}

// newApp builds the pipeline for commands that need the connector store.
func newApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, cfg, log, nil)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
