package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/murmurhq/murmur/internal/adapters"
	"github.com/murmurhq/murmur/internal/adapters/classifier/gemini"
	"github.com/murmurhq/murmur/internal/adapters/classifier/openai"
	"github.com/murmurhq/murmur/internal/admission"
	"github.com/murmurhq/murmur/internal/config"
	"github.com/murmurhq/murmur/internal/db/sqlite"
	"github.com/murmurhq/murmur/internal/escalation"
	"github.com/murmurhq/murmur/internal/event"
	"github.com/murmurhq/murmur/internal/guard"
	"github.com/murmurhq/murmur/internal/httpapi"
	"github.com/murmurhq/murmur/internal/infra"
	"github.com/murmurhq/murmur/internal/ledger"
	"github.com/murmurhq/murmur/internal/lifecycle"
	"github.com/murmurhq/murmur/internal/moderation"
	"github.com/murmurhq/murmur/internal/notify"
	"github.com/murmurhq/murmur/internal/observability"
)

func main() {
	log.SetFormatter(&config.MurmurFormatter{})
	log.SetOutput(os.Stdout)

	cfg := config.Get()
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := observability.Init(ctx, cfg.MetricsAddr); err != nil {
		log.WithError(err).Fatalln("cant initialize observability")
	}

	workDir := cfg.DotPath
	if workDir == "" {
		workDir = infra.GetWorkDir()
	} else if err := os.MkdirAll(workDir, os.ModePerm); err != nil {
		log.WithError(err).Fatalln("cant create work dir")
	}

	dbClient, err := sqlite.NewSQLiteClient(ctx, workDir, "murmur.db")
	if err != nil {
		log.WithError(err).Fatalln("cant open db")
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.WithError(err).Errorln("cant close db")
		}
	}()

	var external adapters.Classifier
	if cfg.Classifier.APIKey != "" {
		entry := log.WithField("context", "classifier")
		switch cfg.Classifier.Type {
		case "gemini":
			external = gemini.NewGemini(cfg.Classifier.APIKey, cfg.Classifier.Model, entry)
		default:
			external = openai.NewOpenAI(cfg.Classifier.APIKey, cfg.Classifier.Model, cfg.Classifier.BaseURL, entry)
		}
	} else {
		log.Warnln("no classifier api key, external moderation disabled")
	}

	spamGuard := guard.NewSpamGuard(cfg.SpamGuard, cfg.ExemptPredicate(), dbClient)
	classifier := moderation.NewService(external, cfg.Classifier.Timeout)
	bans := ledger.NewBanLedger(dbClient, cfg.BanLedger.SweepInterval)
	restrictions := ledger.NewRestrictionLedger(dbClient)
	tracker := escalation.NewTracker(dbClient, bans, cfg.Escalation)
	orchestrator := admission.NewOrchestrator(spamGuard, classifier, bans, restrictions, tracker, dbClient)

	dispatcher := notify.NewLogDispatcher()
	event.Subscribe(event.TypeEngagement, func(queued event.Queueable) {
		e, ok := queued.(*event.EngagementEvent)
		if !ok {
			queued.Drop()
			return
		}
		spamGuard.RecordEngagement(ctx, e.ActorID, e.PostID)
		e.Process()
	})
	event.Subscribe(event.TypeModeration, func(queued event.Queueable) {
		e, ok := queued.(*event.ModerationEvent)
		if !ok {
			queued.Drop()
			return
		}
		dispatcher.Dispatch(notify.Notification{
			Kind:        e.Kind,
			ActorID:     e.ActorID,
			Fingerprint: e.Fingerprint,
			PostID:      e.PostID,
			Reason:      e.Reason,
		})
		e.Process()
	})
	stopWorker := event.RunWorker()
	defer stopWorker()

	runtime := lifecycle.NewRuntime()
	runtime.Register("ban_ledger", bans)
	runtime.Register("httpapi", httpapi.NewServer(orchestrator, cfg.ListenAddr))

	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}
	log.WithField("addr", cfg.ListenAddr).Infoln("murmur is up")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-signals:
		log.WithField("signal", sig.String()).Infoln("shutting down")
	case <-ctx.Done():
	}

	if err := runtime.Stop(context.Background()); err != nil {
		log.WithError(err).Errorln("shutdown errors")
	}
}
