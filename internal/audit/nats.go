package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is where instantiation events are published.
const DefaultSubject = "leo.audit.agent_instantiation"

// publisher is the slice of *nats.Conn the sink needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes events as JSON so other services can follow the
// instantiation log without reading the database.
type NATSSink struct {
	pub     publisher
	subject string
	conn    *nats.Conn
}

// DialNATS connects to url and returns a sink publishing on subject.
// An empty subject uses DefaultSubject.
func DialNATS(url, subject string) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("leo-audit"))
	if err != nil {
		return nil, fmt.Errorf("audit: connect nats %s: %w", url, err)
	}
	s := newNATSSink(nc, subject)
	s.conn = nc
	return s, nil
}

func newNATSSink(pub publisher, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSink{pub: pub, subject: subject}
}

// Subject returns the subject events are published on.
func (s *NATSSink) Subject() string {
	return s.subject
}

// Append implements Sink.
func (s *NATSSink) Append(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("audit: publish %s: %w", s.subject, err)
	}
	return nil
}

// Close drains the underlying connection, if the sink owns one.
func (s *NATSSink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}
