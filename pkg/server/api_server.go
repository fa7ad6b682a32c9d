package server

import (
	"fmt"

	"github.com/NeuralTrust/ImageGuard/pkg/config"
	"github.com/NeuralTrust/ImageGuard/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	APIServerDI struct {
		Routers []router.ServerRouter
		Config  *config.Config
		Logger  *logrus.Logger
	}
	APIServer struct {
		*BaseServer
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	s := &APIServer{BaseServer: NewBaseServer(di.Config, di.Logger)}
	s.WithRouters(di.Routers...)
	return s
}

func (s *APIServer) Run() error {
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting moderation API server")
	return s.Router.Listen(addr)
}

func (s *APIServer) Shutdown() error {
	if err := s.Router.ShutdownWithTimeout(s.Config.Server.ShutdownGrace); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return s.shutdownMetrics()
}
