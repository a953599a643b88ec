package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/pubsub"
	log "github.com/sirupsen/logrus"

	smtpactor "github.com/rbroggi/studyhub/internal/actors/smtp"

	subscriberactor "github.com/rbroggi/studyhub/internal/actors/pubsub/subscriber"

	"github.com/rbroggi/studyhub/internal/config"
)

func init() {
	// Log as JSON instead of the default ASCII formatter.
	log.SetFormatter(&log.JSONFormatter{})

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	// Only log the DebugLevel severity or above.
	log.SetLevel(log.DebugLevel)
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.MustLoad()

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return err
	}
	defer client.Close()

	mailer, err := smtpactor.NewMailer(smtpactor.MailerArgs{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
	if err != nil {
		return err
	}

	subscriber := subscriberactor.NewSubscriber(subscriberactor.SubscriberArgs{
		Subscription: client.Subscription(cfg.PubSub.SubscriptionID),
		MailHandler:  mailer,
	})

	// start subscriber
	errCh := make(chan error, 1)
	go func(ctx context.Context) {
		errCh <- subscriber.Consume(ctx)
	}(ctx)

	log.
		WithField("subscription", cfg.PubSub.SubscriptionID).
		Info("worker up. listening to SIGTERM, SIGINT, SIGQUIT for stopping the worker")

	// Wait for signal or subscriber failure
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	select {
	case <-ch:
		cancel()
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}
