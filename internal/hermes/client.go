// Package hermes publishes documentation run events over NATS.
package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectRunStarted     = "docgen.run.started"
	SubjectStageCompleted = "docgen.stage.completed"
	SubjectRunCompleted   = "docgen.run.completed"
	SubjectRunFailed      = "docgen.run.failed"

	// SubjectAll matches every documentation run event.
	SubjectAll = "docgen.>"
)

// RunEvent is the payload of every docgen subject.
type RunEvent struct {
	RunID        string `json:"run_id"`
	Root         string `json:"root,omitempty"`
	Stage        string `json:"stage,omitempty"`
	FrontendN    int    `json:"frontend_files,omitempty"`
	BackendN     int    `json:"backend_files,omitempty"`
	OutputLen    int    `json:"output_len,omitempty"`
	DocumentPath string `json:"document_path,omitempty"`
	Error        string `json:"error,omitempty"`
	Timestamp    string `json:"timestamp"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	opts := []nats.Option{
		nats.Name("aidoc"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}

// ParseRunEvent decodes a docgen payload.
func ParseRunEvent(data []byte) (RunEvent, error) {
	var evt RunEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return RunEvent{}, fmt.Errorf("parse run event: %w", err)
	}
	return evt, nil
}
