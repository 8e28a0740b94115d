package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"urly/config"
	"urly/internal/database"
	"urly/internal/registry"
	"urly/internal/scraper"
)

// NewRootCmd builds the urly command tree around a fresh settings instance
func NewRootCmd() *cobra.Command {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:           "urly",
		Short:         "Watch UR rental estates and alert Slack when rooms free up",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store-driver", "", "subscription store driver (sqlite, consul)")
	rootCmd.PersistentFlags().String("database-path", "", "sqlite database file")
	bindFlag(v, rootCmd, "log_level", "log-level")
	bindFlag(v, rootCmd, "store_driver", "store-driver")
	bindFlag(v, rootCmd, "database_path", "database-path")

	rootCmd.AddCommand(newServeCmd(v))
	rootCmd.AddCommand(newPollCmd(v))
	rootCmd.AddCommand(newListCmd(v))

	return rootCmd
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

// loadConfig reads the settings and applies the log level
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if level < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, nil
}

// components holds what every subcommand needs
type components struct {
	store    database.Store
	registry *registry.Registry
	scrapers *scraper.Registry
}

func setup(cfg *config.Config) (*components, error) {
	store, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	return &components{
		store:    store,
		registry: registry.New(store),
		scrapers: scraper.NewRegistry(scraper.NewURScraper(cfg.Endpoint, cfg.HTTPTimeout, cfg.NameLookupHosts...)),
	}, nil
}
