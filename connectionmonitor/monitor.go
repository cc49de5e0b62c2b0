package connectionmonitor

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// healthCheckInterval defines the interval between connection health checks.
	healthCheckInterval = 30 * time.Second
	// reconnectBackoff defines the pause between reconnection attempts.
	reconnectBackoff = 5 * time.Second
	// maxReconnectAttempts defines the maximum number of reconnection attempts
	// per failed health check.
	maxReconnectAttempts = 3
)

// ConnectionMonitor keeps one chain's RPC connection alive in the
// background. A wallet session can outlive an RPC endpoint's availability;
// the monitor detects dead connections between user actions so the next
// submit or read does not fail on a stale client.
type ConnectionMonitor interface {
	// Start starts connection monitoring.
	Start(ctx context.Context) error
	// Stop stops connection monitoring.
	Stop()
}

// BlockchainClient is the connection surface the monitor drives.
type BlockchainClient interface {
	// CheckConnection checks if the connection is alive.
	CheckConnection(ctx context.Context) error
	// Reconnect attempts to re-establish the connection.
	Reconnect(ctx context.Context) error
}

type connectionMonitor struct {
	client       BlockchainClient
	logger       *logrus.Logger
	chainName    string
	stopChan     chan struct{}
	isMonitoring bool
	monitorMutex sync.RWMutex
}

// NewConnectionMonitor creates a new connection monitor instance.
//
// Parameters:
// - client: the blockchain client to monitor.
// - logger: the logger for logging purposes.
// - chainName: the name of the monitored chain.
//
// Returns:
// - ConnectionMonitor: the new connection monitor instance.
func NewConnectionMonitor(
	client BlockchainClient,
	logger *logrus.Logger,
	chainName string,
) ConnectionMonitor {
	return &connectionMonitor{
		client:    client,
		logger:    logger,
		chainName: chainName,
		stopChan:  make(chan struct{}),
	}
}

// Start starts connection monitoring.
//
// Parameters:
// - ctx: the context for managing the monitoring goroutine.
//
// Returns:
// - error: an error if the monitor is already running.
func (m *connectionMonitor) Start(ctx context.Context) error {
	m.monitorMutex.Lock()
	if m.isMonitoring {
		m.monitorMutex.Unlock()
		return errors.Errorf("connection monitor is already running for chain %s", m.chainName)
	}
	m.isMonitoring = true
	m.monitorMutex.Unlock()

	go m.monitorConnection(ctx)
	return nil
}

// Stop stops connection monitoring.
func (m *connectionMonitor) Stop() {
	m.monitorMutex.Lock()
	defer m.monitorMutex.Unlock()

	if !m.isMonitoring {
		return
	}

	close(m.stopChan)
	m.isMonitoring = false
}

// monitorConnection checks connection health on a fixed interval and
// reconnects when a check fails.
func (m *connectionMonitor) monitorConnection(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.WithField("chain", m.chainName).Info("Connection monitoring stopped due to context cancellation")
			return

		case <-m.stopChan:
			m.logger.WithField("chain", m.chainName).Info("Connection monitoring stopped")
			return

		case <-ticker.C:
			if err := m.checkAndReconnect(ctx); err != nil {
				m.logger.WithFields(logrus.Fields{
					"chain": m.chainName,
					"error": err,
				}).Error("Failed to check or reconnect")
			}
		}
	}
}

// checkAndReconnect verifies the connection and retries reconnection a
// bounded number of times on failure.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - error: an error if every reconnection attempt fails.
func (m *connectionMonitor) checkAndReconnect(ctx context.Context) error {
	if err := m.client.CheckConnection(ctx); err == nil {
		return nil
	} else {
		m.logger.WithFields(logrus.Fields{
			"chain": m.chainName,
			"error": err,
		}).Warn("Connection check failed, attempting to reconnect")
	}

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		if err := m.client.Reconnect(ctx); err != nil {
			m.logger.WithFields(logrus.Fields{
				"chain":   m.chainName,
				"attempt": attempt,
				"error":   err,
			}).Error("Reconnection attempt failed")

			if attempt == maxReconnectAttempts {
				return errors.Wrapf(err, "failed to reconnect to chain %s", m.chainName)
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectBackoff):
				continue
			}
		}

		m.logger.WithFields(logrus.Fields{
			"chain":   m.chainName,
			"attempt": attempt,
		}).Info("Client successfully reconnected")
		return nil
	}

	return nil
}
