// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/breaker"
	"github.com/tomtom215/sidequest/internal/config"
	"github.com/tomtom215/sidequest/internal/logging"
	"github.com/tomtom215/sidequest/internal/metrics"
)

// Transport names reported by Bus.Transport.
const (
	TransportGoChannel = "gochannel"
	TransportJetStream = "jetstream"
)

// Defaults applied when the config leaves a value empty.
const (
	DefaultPublishTimeout = 2 * time.Second
	auditDurableName      = "sidequest-audit"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event bus closed")

// Bus publishes RecommendationServed events and hands out the matching
// subscriber for consumers.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	shared     bool // publisher and subscriber are the same gochannel
	transport  string

	topic   string
	timeout time.Duration
	breaker *breaker.Breaker

	wmLogger watermill.LoggerAdapter
	logger   zerolog.Logger

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// NewBus creates a bus for cfg. An empty cfg.NATSURL selects the in-process
// gochannel transport; otherwise the JetStream stream is provisioned and
// the bus connects to it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(ctx context.Context, cfg config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	b := newBus(cfg, logger)
	if cfg.NATSURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, b.wmLogger)
		b.publisher, b.subscriber, b.shared = ch, ch, true
		b.transport = TransportGoChannel
		return b, nil
	}

	if err := provisionStream(ctx, cfg.NATSURL, b.topic); err != nil {
		return nil, err
	}
	pub, sub, err := newJetStreamPubSub(cfg.NATSURL, b.wmLogger)
	if err != nil {
		return nil, err
	}
	b.publisher, b.subscriber = pub, sub
	b.transport = TransportJetStream
	b.logger.Info().Str("url", logging.RedactURL(cfg.NATSURL)).Str("topic", b.topic).Msg("event bus connected to NATS JetStream")
	return b, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBus(cfg config.EventsConfig, logger zerolog.Logger) *Bus {
	logger = logger.With().Str("component", "events").Logger()
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Bus{
		topic:    topic,
		timeout:  timeout,
		breaker:  breaker.New(breaker.Settings{Name: "events", Timeout: 30 * time.Second}),
		wmLogger: watermill.NewSlogLogger(slog.New(logging.NewSlogHandlerWithLogger(logger))),
		logger:   logger,
	}
}

func provisionStream(ctx context.Context, url, topic string) error {
	nc, err := natsgo.Connect(url, natsgo.Name("sidequest-provisioner"), natsgo.Timeout(5*time.Second))
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create jetstream context: %w", err)
	}
	return EnsureStream(ctx, js, DefaultStreamConfig(topic))
}

func newJetStreamPubSub(url string, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(2),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: auditDurableName,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			DurablePrefix: auditDurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(StreamName),
				natsgo.DeliverNew(),
				natsgo.MaxDeliver(5),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create nats subscriber: %w", err)
	}
	return pub, sub, nil
}

// Topic returns the topic events are published to.
func (b *Bus) Topic() string {
	return b.topic
}

// Transport returns TransportGoChannel or TransportJetStream.
func (b *Bus) Transport() string {
	return b.transport
}

// Subscriber returns the subscriber consumers should read from. Closing
// it is a no-op: Watermill routers close their subscribers on shutdown,
// and the bus owns the transport.
func (b *Bus) Subscriber() message.Subscriber {
	return busSubscriber{b.subscriber}
}

type busSubscriber struct {
	message.Subscriber
}

func (busSubscriber) Close() error { return nil }

// WatermillLogger returns the logger adapter shared with routers.
func (b *Bus) WatermillLogger() watermill.LoggerAdapter {
	return b.wmLogger
}

// Publish sends ev and waits at most the publish timeout. The outcome is
// recorded as ok, error or rejected (circuit open).
func (b *Bus) Publish(ctx context.Context, ev *RecommendationServed) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return ErrClosed
	}
	return b.publish(ctx, ev)
}

func (b *Bus) publish(ctx context.Context, ev *RecommendationServed) error {
	payload, err := ev.Marshal()
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return err
	}
	msg := message.NewMessage(ev.EventID, payload)
	msg.Metadata.Set("session_id", ev.SessionID)
	msg.Metadata.Set("request_id", ev.RequestID)
	msg.Metadata.Set(natsgo.MsgIdHdr, ev.EventID)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := b.breaker.Execute(func() (interface{}, error) {
			return nil, b.publisher.Publish(b.topic, msg)
		})
		done <- err
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	switch {
	case err == nil:
		metrics.EventsPublished.WithLabelValues("ok").Inc()
		return nil
	case errors.Is(err, breaker.ErrOpen):
		metrics.EventsPublished.WithLabelValues("rejected").Inc()
	default:
		metrics.EventsPublished.WithLabelValues("error").Inc()
	}
	return fmt.Errorf("publish event %s: %w", ev.EventID, err)
}

// PublishAsync publishes ev in the background, detached from ctx
// cancellation. Failures are logged. Close waits for pending publishes.
func (b *Bus) PublishAsync(ctx context.Context, ev *RecommendationServed) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	b.inflight.Add(1)
	b.mu.RUnlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer b.inflight.Done()
		if err := b.publish(ctx, ev); err != nil {
			b.logger.Warn().Err(err).
				Str("session_id", ev.SessionID).
				Str("request_id", ev.RequestID).
				Msg("recommendation event not published")
		}
	}()
}

// Close waits for pending publishes and closes the transport.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.inflight.Wait()

	err := b.publisher.Close()
	if !b.shared {
		if subErr := b.subscriber.Close(); subErr != nil && err == nil {
			err = subErr
		}
	}
	return err
}
