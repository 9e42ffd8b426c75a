package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"triptrek/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherPublish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	bookingID := uuid.New()

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != bookingID.String() {
			return errors.New("unexpected partition key")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event Event
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.Type != EventBookingCreated {
			return errors.New("unexpected event type")
		}
		return nil
	})

	publisher := NewKafkaPublisherWithProducer(producer, "triptrek.bookings", logger.Discard())
	event := NewEvent(EventBookingCreated, bookingID, uuid.New(), map[string]interface{}{"travelers": 2})

	require.NoError(t, publisher.Publish(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherPropagatesSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisherWithProducer(producer, "triptrek.bookings", logger.Discard())
	err := publisher.Publish(context.Background(), NewEvent(EventTicketIssued, uuid.New(), uuid.New(), nil))

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	_ = publisher.Close()
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, *Event) error {
	f.calls++
	return errors.New("broker down")
}
func (f *failingPublisher) Close() error { return nil }

func TestPublishQuietlySwallowsErrors(t *testing.T) {
	p := &failingPublisher{}
	PublishQuietly(context.Background(), p, logger.Discard(), NewEvent(EventBookingConfirmed, uuid.New(), uuid.New(), nil))
	assert.Equal(t, 1, p.calls)

	PublishQuietly(context.Background(), nil, logger.Discard(), NewEvent(EventBookingConfirmed, uuid.New(), uuid.New(), nil))
}
