// Package producer publishes outbound mail messages on the mail topic. The API server
// hands mails off here and the worker delivers them, so a slow SMTP hop never sits on a
// request path.
package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/rbroggi/studyhub/internal/core/model"
)

// NewProducer creates a new producer.
func NewProducer(topic *pubsub.Topic) (*Producer, error) {
	if topic == nil {
		return nil, errors.New("topic is nil")
	}
	return &Producer{topic: topic}, nil
}

// Producer is the pubsub producer of mail messages.
type Producer struct {
	topic *pubsub.Topic
}

// Send publishes the mail message and blocks until the broker acknowledges it.
func (p *Producer) Send(ctx context.Context, msg model.MailMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling mail message: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
	})
	// Block until the result is returned and a server-generated
	// ID is returned for the published message.
	if _, err = result.Get(ctx); err != nil {
		return fmt.Errorf("pubsub: result.Get: %v", err)
	}
	return nil
}
