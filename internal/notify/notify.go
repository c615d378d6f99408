// Package notify publishes a summary of every finished build to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/bayoss/landscape2/internal/build"
	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/logfields"
	"github.com/bayoss/landscape2/internal/observability"
)

// publishTimeout bounds the flush after a publish.
const publishTimeout = 5 * time.Second

// Summary is the message published for a build.
type Summary struct {
	BuildID       string    `json:"build_id"`
	Outcome       string    `json:"outcome"`
	Start         time.Time `json:"start"`
	DurationMS    int64     `json:"duration_ms"`
	Items         int       `json:"items"`
	LogosPrepared int       `json:"logos_prepared"`
	DegradedLogos []string  `json:"degraded_logos,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// NewSummary builds the published summary from a build report.
func NewSummary(r *build.Report) Summary {
	s := Summary{
		BuildID:       r.BuildID,
		Outcome:       string(r.Outcome),
		Start:         r.Start,
		DurationMS:    r.Duration().Milliseconds(),
		Items:         r.Items,
		LogosPrepared: r.LogosPrepared,
		DegradedLogos: r.DegradedLogos,
	}
	if len(r.Errors) > 0 {
		s.Error = r.Errors[0].Error()
	}
	return s
}

// conn is the subset of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Publisher implements build.Notifier over a NATS connection.
type Publisher struct {
	conn    conn
	subject string
}

var _ build.Notifier = (*Publisher)(nil)

// Connect dials the NATS server in cfg.
func Connect(cfg config.NotifyConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.ConfigError("notify: nats_url is required").Build()
	}
	nc, err := nats.Connect(cfg.NATSURL, nats.Name("landscape-builder"))
	if err != nil {
		return nil, errors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.NATSURL).
			Build()
	}
	return newPublisher(nc, cfg.Subject), nil
}

func newPublisher(c conn, subject string) *Publisher {
	return &Publisher{conn: c, subject: subject}
}

// Notify publishes the summary of r.
func (p *Publisher) Notify(ctx context.Context, r *build.Report) error {
	data, err := json.Marshal(NewSummary(r))
	if err != nil {
		return fmt.Errorf("marshal build summary: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish build summary: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush build summary: %w", err)
	}
	observability.DebugContext(ctx, "Build summary published", logfields.Subject(p.subject))
	return nil
}

// Close closes the underlying connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
