package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/NeuralTrust/ImageGuard/pkg/config"
	infraLogger "github.com/NeuralTrust/ImageGuard/pkg/infra/logger"
	"github.com/NeuralTrust/ImageGuard/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configDir string
	envFile   string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "imageguard",
	Short:         "Image content moderation engine",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(envFile); err != nil {
			log.Println("no .env file found, using system environment variables")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "./config", "directory holding config.yaml and providers.yaml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", envOr("ENV_FILE", ".env"), "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (defaults to LOG_LEVEL or info)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConfig reads the config directory. With allowMissing, an absent
// directory yields the built-in defaults.
func loadConfig(allowMissing bool) (*config.Config, error) {
	if err := config.Load(configDir); err != nil {
		if allowMissing {
			return config.Default(), nil
		}
		return nil, err
	}
	return config.GetConfig(), nil
}

// cliLogger logs to stderr only, so stdout stays clean for reports.
func cliLogger(w io.Writer) *logrus.Logger {
	level := logLevel
	if level == "" {
		level = "warn"
	}
	logger, _ := infraLogger.NewLogger("cli", infraLogger.Options{Level: level, Console: w, NoFile: true})
	return logger
}

var errUsage = errors.New("invalid arguments")
