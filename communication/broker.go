package communication

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const defaultSubjectPrefix = "aigent"

// Broker publishes events on NATS. A nil Broker drops everything.
type Broker struct {
	Conn   *nats.Conn
	prefix string
}

// NewBroker connects to cfg.URL. It returns a nil Broker when no URL is configured.
func NewBroker(cfg config.NATSConfig) (*Broker, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("aigent-launchpad"),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.L().Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.L().Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	logger.L().Info("connected to NATS", zap.String("url", cfg.URL), zap.String("prefix", prefix))
	return &Broker{Conn: nc, prefix: prefix}, nil
}

// Subject returns the subject events of eventType are published on
func (b *Broker) Subject(eventType string) string {
	prefix := defaultSubjectPrefix
	if b != nil {
		prefix = b.prefix
	}
	return prefix + "." + strings.ToLower(eventType)
}

// Publish sends v as JSON on subject
func (b *Broker) Publish(subject string, v interface{}) error {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode message for %s: %w", subject, err)
	}
	logger.L().Debug("publishing", zap.String("subject", subject), zap.Int("bytes", len(data)))
	return b.Conn.Publish(subject, data)
}

func (b *Broker) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	if b == nil {
		return nil, fmt.Errorf("NATS is not configured")
	}
	return b.Conn.Subscribe(subject, cb)
}

// Close drains pending messages and closes the connection
func (b *Broker) Close() {
	if b == nil {
		return
	}
	if err := b.Conn.Drain(); err != nil {
		b.Conn.Close()
	}
}
