package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/go-pg/pg/v10"
	log "github.com/sirupsen/logrus"

	produceractor "github.com/rbroggi/studyhub/internal/actors/pubsub/producer"

	"github.com/rbroggi/studyhub/internal/actors/httpserver"
	"github.com/rbroggi/studyhub/internal/actors/postgres"
	"github.com/rbroggi/studyhub/internal/config"
	"github.com/rbroggi/studyhub/internal/core/access"
	"github.com/rbroggi/studyhub/internal/core/token"
	"github.com/rbroggi/studyhub/internal/core/usecase"
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

	opts, err := pg.ParseURL(cfg.Postgres.URL)
	if err != nil {
		return err
	}
	db := pg.Connect(opts)
	defer db.Close()
	if err := db.Ping(ctx); err != nil {
		log.WithError(err).Error("db does not appear to be reachable")
		return err
	}

	store, err := postgres.NewPostgresDB(postgres.PostgresDBArgs{DB: db})
	if err != nil {
		log.WithError(err).Error("could not initialize postgres actor")
		return err
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return err
	}
	defer pubsubClient.Close()

	mailProducer, err := produceractor.NewProducer(pubsubClient.Topic(cfg.PubSub.MailTopicID))
	if err != nil {
		return err
	}

	sessions, err := access.NewCoordinator(access.CoordinatorArgs{
		Accounts:   store,
		Secret:     cfg.Session.Secret,
		SessionTTL: cfg.Session.TTL,
	})
	if err != nil {
		return err
	}

	accountService := usecase.NewAccountService(usecase.AccountServiceArgs{
		Accounts: store,
		Tags:     store,
		Zones:    store,
		Issuer:   token.NewIssuer(),
		Sessions: sessions,
		Mail:     mailProducer,
		BaseURL:  cfg.BaseURL,
	})
	studyService := usecase.NewStudyService(usecase.StudyServiceArgs{
		Studies:  store,
		Tags:     store,
		Zones:    store,
		Notifier: usecase.NewNotifier(mailProducer),
	})
	meetingService := usecase.NewMeetingService(usecase.MeetingServiceArgs{
		Meetings: store,
		Studies:  store,
	})

	server := httpserver.NewServer(httpserver.ServerArgs{
		Addr:     cfg.HTTPServer.Addr,
		Accounts: accountService,
		Studies:  studyService,
		Meetings: meetingService,
		Access:   sessions,
	})

	go func() {
		if err := server.Start(); err != nil {
			panic(err)
		}
	}()

	log.
		WithField("http-server-addr", cfg.HTTPServer.Addr).
		Info("server up or soon to be up. listening to SIGTERM, SIGINT, SIGQUIT for stopping the server")

	// Wait for signal
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		panic(err)
	}
}
