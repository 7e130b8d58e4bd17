package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	headerID        = "x-message-id"
	headerTimestamp = "x-message-ts"
)

// KafkaConfig is the kafka section of the service config.
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	ClientID     string        `yaml:"clientID"`
	Async        bool          `yaml:"async"`
	BatchTimeout time.Duration `yaml:"batchTimeout"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	// Acks is one of "none", "one" or "all". Empty means "one".
	Acks string `yaml:"acks"`
}

func (c KafkaConfig) withDefaults() KafkaConfig {
	if c.BatchTimeout == 0 {
		c.BatchTimeout = 10 * time.Millisecond
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Second
	}
	return c
}

func parseAcks(s string) (kafka.RequiredAcks, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "one":
		return kafka.RequireOne, nil
	case "none":
		return kafka.RequireNone, nil
	case "all":
		return kafka.RequireAll, nil
	default:
		return 0, fmt.Errorf("unknown acks %q", s)
	}
}

// KafkaProducer implements Producer on a kafka-go Writer.
type KafkaProducer struct {
	brokers   []string
	dialer    *kafka.Dialer
	writer    *kafka.Writer
	closeOnce sync.Once
	closeErr  error
}

func NewKafkaProducer(cfg KafkaConfig) (*KafkaProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	acks, err := parseAcks(cfg.Acks)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	return &KafkaProducer{
		brokers: cfg.Brokers,
		dialer:  &kafka.Dialer{ClientID: cfg.ClientID, Timeout: cfg.DialTimeout, DualStack: true},
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: acks,
			BatchTimeout: cfg.BatchTimeout,
			WriteTimeout: cfg.WriteTimeout,
			Async:        cfg.Async,
			Transport:    &kafka.Transport{ClientID: cfg.ClientID, DialTimeout: cfg.DialTimeout},
		},
	}, nil
}

func (k *KafkaProducer) Publish(ctx context.Context, topic string, message *Message) error {
	switch {
	case message == nil:
		return errors.New("message is nil")
	case topic == "":
		return errors.New("topic is required")
	}
	return k.writer.WriteMessages(ctx, toKafkaMessage(topic, message))
}

// Ping succeeds as soon as one broker accepts a connection.
func (k *KafkaProducer) Ping(ctx context.Context) error {
	var errs []error
	for _, broker := range k.brokers {
		conn, err := k.dialer.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn.Close()
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close is safe to call more than once.
func (k *KafkaProducer) Close() error {
	k.closeOnce.Do(func() { k.closeErr = k.writer.Close() })
	return k.closeErr
}

func toKafkaMessage(topic string, m *Message) kafka.Message {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	headers := make([]kafka.Header, 0, len(m.Headers)+2)
	for key, value := range m.Headers {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}
	if m.Key != "" {
		headers = append(headers, kafka.Header{Key: headerID, Value: []byte(m.Key)})
	}
	headers = append(headers, kafka.Header{Key: headerTimestamp, Value: []byte(m.Timestamp.Format(time.RFC3339Nano))})

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(m.Key),
		Value:   m.Body,
		Headers: headers,
		Time:    m.Timestamp,
	}
}
