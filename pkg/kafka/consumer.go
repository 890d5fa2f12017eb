package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	applogger "StockSage/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from one topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer reads registered topics and dispatches messages to a worker
// pool. Failed messages are retried with jittered backoff and finally
// routed to the dead-letter topic so a poison message cannot stall the
// partition.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *applogger.Logger
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	msgChan  chan *message
	dlq      *kafka.Writer
}

type message struct {
	topic string
	data  []byte
	km    kafka.Message
}

// NewConsumer creates a Kafka consumer.
func NewConsumer(log *applogger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "default",
		WorkerCount: 1,
		BufferSize:  10,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	c := &Consumer{
		cfg:      cfg,
		log:      log,
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		stopChan: make(chan struct{}),
		msgChan:  make(chan *message, cfg.BufferSize),
	}

	initConsumerMetrics()

	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}}
	}

	return c, nil
}

// RegisterHandler registers a message handler for its topic.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.log.Warn("handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// Start creates readers for the registered topics and launches the workers.
func (c *Consumer) Start() error {
	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.worker()
	}

	for topic, reader := range c.readers {
		c.wg.Add(1)
		go c.consume(topic, reader)
	}

	c.log.Info("kafka consumer started",
		applogger.Int("workers", c.cfg.WorkerCount),
		applogger.Int("topics", len(c.readers)),
	)
	return nil
}

// Stop shuts down the consumer gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error

	c.stopOnce.Do(func() {
		close(c.stopChan)
		close(c.msgChan)

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()

		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		case <-done:
		}

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				c.log.Error("close reader", applogger.String("topic", topic), applogger.Error(err))
			}
		}

		if c.dlq != nil {
			if err := c.dlq.Close(); err != nil {
				c.log.Error("close dlq writer", applogger.Error(err))
			}
		}
	})

	return stopErr
}

func (c *Consumer) consume(topic string, reader *kafka.Reader) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopChan:
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			msg, err := reader.FetchMessage(ctx)
			cancel()

			if err != nil {
				if !errors.Is(err, context.DeadlineExceeded) {
					c.log.Error("fetch message", applogger.String("topic", topic), applogger.Error(err))
				}
				continue
			}

			select {
			case c.msgChan <- &message{topic: topic, data: msg.Value, km: msg}:
				consumerQueueDepth.WithLabelValues(topic).Set(float64(len(c.msgChan)))
			case <-c.stopChan:
				return
			}
		}
	}
}

func (c *Consumer) worker() {
	defer c.wg.Done()

	for msg := range c.msgChan {
		handler, exists := c.handlers[msg.topic]
		if !exists {
			continue
		}
		c.handleMessage(handler, msg)
	}
}

func (c *Consumer) handleMessage(handler MessageHandler, msg *message) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic in message handler",
				applogger.String("topic", msg.topic),
				applogger.Any("panic", r),
			)
		}
	}()

	var err error
	for attempt := 1; ; attempt++ {
		err = handler.Handle(context.Background(), msg.data)
		if err == nil || attempt > c.cfg.RetryMax {
			break
		}

		sleep := backoffWithJitter(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)
		select {
		case <-time.After(sleep):
		case <-c.stopChan:
			return
		}
	}

	if err != nil {
		c.log.Error("message handling failed",
			applogger.String("topic", msg.topic),
			applogger.Int("retries", c.cfg.RetryMax),
			applogger.Error(err),
		)
		if c.dlq != nil && c.cfg.DLQTopic != "" {
			if dlqErr := c.dlq.WriteMessages(context.Background(), kafka.Message{
				Topic:   c.cfg.DLQTopic,
				Value:   msg.data,
				Time:    time.Now(),
				Headers: []kafka.Header{{Key: "source_topic", Value: []byte(msg.topic)}},
			}); dlqErr != nil {
				c.log.Error("dlq publish failed",
					applogger.String("topic", c.cfg.DLQTopic),
					applogger.Error(dlqErr),
				)
			}
		}
	}

	// Commit on success or after DLQ routing to avoid poison loops.
	if err == nil || (c.dlq != nil && c.cfg.DLQTopic != "") {
		if reader := c.readers[msg.topic]; reader != nil {
			c.commitWithRetry(reader, msg.km, 3)
		}
	}

	consumerHandleLatency.WithLabelValues(msg.topic).Observe(time.Since(start).Seconds())
}

func (c *Consumer) commitWithRetry(reader *kafka.Reader, km kafka.Message, max int) {
	var err error
	for attempt := 1; attempt <= max; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = reader.CommitMessages(ctx, km)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoffWithJitter(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.log.Error("commit failed", applogger.Int("attempts", max), applogger.Error(err))
}

func backoffWithJitter(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	exp := min * time.Duration(1<<uint(attempt-1))
	if exp > max {
		exp = max
	}
	jitter := time.Duration(rand.Int63n(int64(exp)/2 + 1))
	return exp - jitter
}

var (
	consumerQueueDepth    *prometheus.GaugeVec
	consumerHandleLatency *prometheus.HistogramVec
	consumerMetricsOnce   sync.Once
)

func initConsumerMetrics() {
	consumerMetricsOnce.Do(func() {
		consumerQueueDepth = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stocksage_kafka_consumer_queue_depth",
				Help: "Messages waiting in the consumer queue",
			},
			[]string{"topic"},
		)
		consumerHandleLatency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocksage_kafka_consumer_handle_seconds",
				Help:    "Handling time per message",
				Buckets: []float64{0.05, 0.2, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"topic"},
		)
	})
}
