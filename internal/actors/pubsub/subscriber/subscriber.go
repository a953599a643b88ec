// Package subscriber consumes mail messages from the mail subscription and hands them
// to the configured mail handler.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	log "github.com/sirupsen/logrus"

	"github.com/rbroggi/studyhub/internal/core/model"
	"github.com/rbroggi/studyhub/internal/core/ports"
)

// SubscriberArgs contain the mandatory arguments to build a subscriber.
type SubscriberArgs struct {
	// Subscription is a pubsub subscription
	Subscription *pubsub.Subscription

	// MailHandler delivers the consumed mail messages.
	MailHandler ports.MailHandler
}

// Subscriber is a pubsub async subscriber.
type Subscriber struct {
	subscription *pubsub.Subscription
	mailHandler  ports.MailHandler
}

// NewSubscriber creates a subscriber.
func NewSubscriber(args SubscriberArgs) *Subscriber {
	return &Subscriber{
		subscription: args.Subscription,
		mailHandler:  args.MailHandler,
	}
}

// Consume starts the subscriber. This is a blocking method and should be started in its
// own go-routine. The way to terminate the method is to cancel the context in input.
func (s *Subscriber) Consume(ctx context.Context) error {
	if err := s.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {

		mail, err := decodeMsgIntoMail(msg)
		if err != nil {
			log.WithError(err).Error("error decoding message into mail message")
			msg.Nack()
			return
		}

		if err := s.mailHandler.Handle(ctx, *mail); err != nil {
			log.WithError(err).WithField("to", mail.To).Error("error in mail handler")
			msg.Nack()
		} else {
			msg.Ack()
		}
	}); err != nil {
		return fmt.Errorf("error receiving messages from subscription: %w", err)
	}
	return nil
}

func decodeMsgIntoMail(msg *pubsub.Message) (*model.MailMessage, error) {
	if msg == nil {
		return nil, errors.New("cannot decode nil pubsub msg")
	}
	mail := new(model.MailMessage)
	if err := json.Unmarshal(msg.Data, mail); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}
	if mail.To == "" {
		return nil, errors.New("mail message without recipient")
	}
	return mail, nil
}
