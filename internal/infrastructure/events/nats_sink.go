package events

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes every event on <prefix>.<tournamentID>.<eventType>.
type NATSSink struct {
	conn   natsPublisher
	closer func()
	prefix string
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
	ClientName    string
}

func NewNATSSink(cfg NATSConfig, logger *logging.Logger) (*NATSSink, error) {
	if logger == nil {
		logger = logging.Default()
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.PingInterval(20*time.Second),
		nats.MaxPingsOutstanding(5),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, crerr.Wrapf(err, "connect nats %s", cfg.URL)
	}

	return &NATSSink{
		conn:   conn,
		closer: func() { _ = conn.Drain() },
		prefix: strings.Trim(cfg.SubjectPrefix, "."),
	}, nil
}

func newNATSSinkWithPublisher(pub natsPublisher, prefix string) *NATSSink {
	return &NATSSink{conn: pub, prefix: strings.Trim(prefix, ".")}
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Subject(event tournament.Event) string {
	parts := make([]string, 0, 3)
	if s.prefix != "" {
		parts = append(parts, s.prefix)
	}
	parts = append(parts, event.TournamentID, string(event.Type))
	return strings.Join(parts, ".")
}

func (s *NATSSink) Deliver(ctx context.Context, event tournament.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(event)
	if err != nil {
		return crerr.Wrap(err, "encode nats event")
	}
	subject := s.Subject(event)
	if err := s.conn.Publish(subject, data); err != nil {
		return crerr.Wrapf(err, "publish %s", subject)
	}
	return nil
}

func (s *NATSSink) Close() {
	if s.closer != nil {
		s.closer()
	}
}
