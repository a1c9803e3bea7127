package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// eventConn is the slice of *nats.Conn the mirror needs. Narrowed to an
// interface so forwarding can be tested without a running server.
type eventConn interface {
	Publish(subject string, data []byte) error
	Flush() error
	Close()
}

// NATSMirror republishes every bus event as JSON on a NATS subject tree,
// one subject per event type: "<prefix>.<type>". External observers can
// subscribe without linking the engine; losing the NATS connection never
// affects the engine itself.
type NATSMirror struct {
	conn eventConn
	sub  *Subscription
	done chan struct{}
}

// StartNATSMirror connects to NATS and starts forwarding events from b.
func StartNATSMirror(b *Bus, url, subjectPrefix, clientName string) (*NATSMirror, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	if clientName == "" {
		clientName = "buddy"
	}

	opts := []nats.Option{
		nats.Name(clientName),
		nats.Timeout(30 * time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return startMirrorOnConn(b, conn, subjectPrefix), nil
}

// NewNATSMirrorFromConn starts a mirror on an existing connection.
// Useful for testing with an embedded NATS server.
func NewNATSMirrorFromConn(b *Bus, conn *nats.Conn, subjectPrefix string) *NATSMirror {
	return startMirrorOnConn(b, conn, subjectPrefix)
}

func startMirrorOnConn(b *Bus, conn eventConn, subjectPrefix string) *NATSMirror {
	if subjectPrefix == "" {
		subjectPrefix = "buddy.event"
	}

	m := &NATSMirror{
		conn: conn,
		sub:  b.Subscribe(),
		done: make(chan struct{}),
	}

	go func() {
		defer close(m.done)
		for evt := range m.sub.Events() {
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			// Fire-and-forget; publish errors must not reach the engine.
			_ = m.conn.Publish(fmt.Sprintf("%s.%s", subjectPrefix, evt.Type), data)
		}
	}()

	return m
}

// Close stops forwarding and flushes the connection.
func (m *NATSMirror) Close() {
	m.sub.Unsubscribe()
	<-m.done
	_ = m.conn.Flush()
	m.conn.Close()
}
