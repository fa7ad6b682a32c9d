package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/ImageGuard/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/ImageGuard/pkg/infra/logger"
	"github.com/NeuralTrust/ImageGuard/pkg/server"
	"github.com/NeuralTrust/ImageGuard/pkg/server/router"
	"github.com/NeuralTrust/ImageGuard/pkg/version"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the moderation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(_ *cobra.Command) error {
	logger, closeLogs := infraLogger.NewLogger("server", infraLogger.Options{Level: logLevel})
	defer closeLogs()

	cfg, err := loadConfig(false)
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		return err
	}
	logger.WithField("version", version.GetInfo().String()).Info("starting ImageGuard")

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return err
	}
	defer container.Close()

	srv := server.NewAPIServer(server.APIServerDI{
		Routers: []router.ServerRouter{
			router.NewAPIRouter(container.MiddlewareTransport, container.HandlerTransport),
		},
		Config: cfg,
		Logger: logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("server failed")
			return err
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}
