package pubsub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/matchday/internal/domain/event"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/metrics"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
)

const defaultStreamName = "MATCHDAY_EVENTS"

type jetStreamPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

type Config struct {
	URL              string
	SubjectPrefix    string
	StreamName       string
	FailureThreshold int
	CoolDown         time.Duration
	PublishTimeout   time.Duration
}

// NATSPublisher publishes domain events to JetStream under <prefix>.<event name>.
type NATSPublisher struct {
	nc      *nats.Conn
	js      jetStreamPublisher
	prefix  string
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	metrics *metrics.Manager
	logger  *logging.Logger
}

func NewNATSPublisher(cfg Config, metricsManager *metrics.Manager, logger *logging.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.SubjectPrefix), ".")
	if prefix == "" {
		return nil, fmt.Errorf("nats subject prefix is required")
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("matchday-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info("nats reconnected", "url", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	streamName := cfg.StreamName
	if streamName == "" {
		streamName = defaultStreamName
	}
	if _, err := js.StreamInfo(streamName); err != nil {
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{prefix + ".>"},
			Storage:  nats.FileStorage,
			MaxAge:   7 * 24 * time.Hour,
		}); err != nil {
			nc.Close()
			return nil, fmt.Errorf("create stream %s: %w", streamName, err)
		}
	}

	publisher := newPublisher(js, prefix, cfg, metricsManager, logger)
	publisher.nc = nc
	return publisher, nil
}

func newPublisher(js jetStreamPublisher, prefix string, cfg Config, metricsManager *metrics.Manager, logger *logging.Logger) *NATSPublisher {
	return &NATSPublisher{
		js:      js,
		prefix:  prefix,
		timeout: cfg.PublishTimeout,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			CoolDown:         cfg.CoolDown,
		}),
		metrics: metricsManager,
		logger:  logger,
	}
}

func (p *NATSPublisher) Subject(evt event.Event) string {
	return p.prefix + "." + evt.EventName()
}

func (p *NATSPublisher) Publish(ctx context.Context, evt event.Event) error {
	subject := p.Subject(evt)
	if err := p.breaker.Allow(); err != nil {
		p.metrics.RecordPublish(subject, err)
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(evt); err != nil {
		return fmt.Errorf("encode %s event: %w", evt.EventName(), err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	_, err := p.js.Publish(subject, buf.Bytes(), nats.Context(ctx))
	p.breaker.Record(err)
	p.metrics.RecordPublish(subject, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.DebugContext(ctx, "event published", "subject", subject)
	return nil
}

func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("drain nats connection failed", "error", err)
		p.nc.Close()
	}
}
