// Package events publishes domain events to NATS so other services (push
// gateways, analytics) can react without polling the database.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"MINDBRIDGE_BACK-END/internal/config"
)

// NATS subjects
const (
	SubjectRequestCreated   = "peer.request.created"
	SubjectRequestAccepted  = "peer.request.accepted"
	SubjectRequestRejected  = "peer.request.rejected"
	SubjectRequestCancelled = "peer.request.cancelled"
	SubjectChatMessage      = "peer.chat.message"
	SubjectChatDeleted      = "peer.chat.deleted"
)

// Event is the JSON envelope published on every subject
type Event struct {
	Subject    string         `json:"subject"`
	ActorID    string         `json:"actor_id"`
	TargetID   string         `json:"target_id"`
	ResourceID string         `json:"resource_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher emits domain events. Publishing is best effort; callers log
// failures and carry on.
type Publisher interface {
	Publish(e Event) error
	Close()
}

// NATSPublisher publishes events over a NATS connection
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to NATS with reconnect handlers that log state
// changes.
func NewNATSPublisher(cfg config.NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())
	return &NATSPublisher{conn: nc}, nil
}

// Publish encodes e as JSON and sends it on e.Subject
func (p *NATSPublisher) Publish(e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(e.Subject, data)
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.Printf("[nats] drain error: %v", err)
		p.conn.Close()
	}
}

// Noop discards events. Used when NATS_URL is not set.
type Noop struct{}

func (Noop) Publish(Event) error { return nil }
func (Noop) Close()              {}

// New returns a NATS publisher when a URL is configured, otherwise Noop.
// A failed connection is logged and degrades to Noop.
func New(cfg config.NATSConfig) Publisher {
	if cfg.URL == "" {
		log.Printf("[nats] NATS_URL not set, events disabled")
		return Noop{}
	}
	p, err := NewNATSPublisher(cfg)
	if err != nil {
		log.Printf("[nats] %v, events disabled", err)
		return Noop{}
	}
	return p
}
