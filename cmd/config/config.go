package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-board/pkg/registry"
	"github.com/mattsolo1/grove-board/pkg/service"
)

var cfgFile string

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "board")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("BOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	viper.SetDefault("data_dir", filepath.Join(home, ".local", "share", "board"))
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("storage.backend", service.StorageFile)
	viper.SetDefault("storage.key", registry.DefaultStorageKey)
	viper.SetDefault("storage.quota_bytes", 5<<20)
	viper.SetDefault("storage.flush_delay", registry.DefaultFlushDelay)
	viper.SetDefault("search.backend", "memory")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// NewLogger configures the standard logrus logger from log_level.
func NewLogger() (*logrus.Logger, error) {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// ServiceConfig builds the service configuration from viper.
func ServiceConfig() (*service.Config, error) {
	cfg := service.DefaultConfig(viper.GetString("data_dir"))
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func InitService(ctx context.Context) (*service.Service, error) {
	logger, err := NewLogger()
	if err != nil {
		return nil, err
	}
	cfg, err := ServiceConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return service.New(ctx, cfg, service.WithLogger(logger))
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/board/config.yaml)")
	cmd.PersistentFlags().String("data-dir", "", "directory holding the board's data")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	cobra.CheckErr(viper.BindPFlag("data_dir", cmd.PersistentFlags().Lookup("data-dir")))
	cobra.CheckErr(viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level")))
}
