//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"credverify/internal/platform/kafka/producer"
	"credverify/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	cfg := producer.DefaultConfig(s.kafka.Brokers)
	cfg.DeliveryTimeout = 10 * time.Second
	prod, err := producer.New(cfg, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *ProducerIntegrationSuite) TestProduceIsAcknowledged() {
	ctx := context.Background()
	topic := "credential-audit-test"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("1001"),
		Value:   []byte(`{"action":"credential_issued"}`),
		Headers: map[string]string{"event_type": "credential_issued"},
	})
	s.Require().NoError(err)

	consumer, err := s.kafka.NewConsumer(ctx, "producer-test", topic)
	s.Require().NoError(err)
	defer consumer.Close()

	record := s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "1001"
	})
	s.Require().NotNil(record)
	s.Equal(`{"action":"credential_issued"}`, string(record.Value))
	s.Require().Len(record.Headers, 1)
	s.Equal("event_type", record.Headers[0].Key)
}

func (s *ProducerIntegrationSuite) TestHealthy() {
	s.NoError(s.producer.Healthy(context.Background()))
}
