// Package events публикует уведомления о новых снимках в шину NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/shenikar/border_conflict_monitor/internal/models"
)

const defaultSubject = "conflict.snapshot.updated"

// NATSPublisher публикует SnapshotEvent в subject NATS
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

type NATSConfig struct {
	URL            string
	Subject        string
	ConnectTimeout time.Duration
}

func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	nc, err := nats.Connect(url,
		nats.Name("border-conflict-monitor"),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}
	return &NATSPublisher{nc: nc, subject: subject}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event models.SnapshotEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish snapshot event to NATS: %w", err)
	}
	return nil
}

// Close отправляет буферизованные сообщения и закрывает соединение
func (p *NATSPublisher) Close() {
	_ = p.nc.Drain()
}

func encodeEvent(event models.SnapshotEvent) ([]byte, error) {
	if event.LastUpdated.IsZero() || event.Source == "" {
		return nil, fmt.Errorf("invalid snapshot event: missing required fields")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot event: %w", err)
	}
	return data, nil
}
