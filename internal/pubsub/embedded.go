package pubsub

import (
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

type EmbeddedConfig struct {
	Host     string
	Port     int
	StoreDir string
}

// EmbeddedServer is an in-process NATS server with JetStream, for
// single-instance deployments that have no broker of their own.
type EmbeddedServer struct {
	server *server.Server
}

// StartEmbedded starts the server and waits until it accepts connections.
func StartEmbedded(cfg EmbeddedConfig) (*EmbeddedServer, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	ns, err := server.NewServer(&server.Options{
		ServerName: "thermostat-events",
		Host:       cfg.Host,
		Port:       cfg.Port,
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.ConfigureLogger()
	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}
	return &EmbeddedServer{server: ns}, nil
}

func (s *EmbeddedServer) ClientURL() string { return s.server.ClientURL() }

func (s *EmbeddedServer) Shutdown() {
	s.server.Shutdown()
	s.server.WaitForShutdown()
}
