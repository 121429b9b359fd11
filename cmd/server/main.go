package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	channelapp "ember/internal/channels/app"
	channelsms "ember/internal/channels/sms"
	"ember/internal/encounter"
	"ember/internal/jwt"
	"ember/internal/platform/config"
	"ember/internal/platform/httpserver"
	"ember/internal/platform/logger"
	"ember/internal/platform/metrics"
	platformredis "ember/internal/platform/redis"
	"ember/internal/screening"
	"ember/internal/tracing/consent"
	"ember/internal/tracing/dispatch"
	"ember/internal/tracing/inbox"
	"ember/internal/tracing/resolver"
	httptransport "ember/internal/transport/http"
	"ember/pkg/platform/audit"
	auditkafka "ember/pkg/platform/audit/publisher/kafka"
	auditmemory "ember/pkg/platform/audit/store/memory"
	auditworker "ember/pkg/platform/audit/worker"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := metrics.New()

	// Stores: postgres when configured, in-memory otherwise (local runs).
	var (
		screenStore    screening.Store
		encounterStore encounter.Store
		consentStore   consent.Store
		notifStore     dispatch.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		screenStore = screening.NewPostgresStore(db)
		encounterStore = encounter.NewPostgresStore(db)
		consentStore = consent.NewPostgresStore(db)
		notifStore = dispatch.NewPostgresStore(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		screenStore = screening.NewInMemoryStore()
		encounterStore = encounter.NewInMemoryStore()
		consentStore = consent.NewInMemoryStore()
		notifStore = dispatch.NewInMemoryStore()
	}

	// App channel: redis pub/sub nudges when configured.
	var appNotifier dispatch.AppNotifier = channelapp.NopNotifier{}
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		appNotifier = channelapp.NewRedisNotifier(redisClient)
	}

	// SMS channel: the gateway is optional; without it every texted partner
	// would land in manual follow-up anyway, so a nil gateway short-circuits.
	var smsGateway dispatch.SMSGateway = unavailableSMSGateway{}
	if cfg.SMSGatewayURL != "" {
		smsGateway = channelsms.NewHTTPGateway(cfg.SMSGatewayURL, cfg.SMSGatewayAPIKey, cfg.SMSSendTimeout, log)
	}

	// Audit trail: Kafka sink when brokers are configured, memory otherwise.
	auditInbox := make(chan audit.Event, 256)
	var auditStore audit.Store = auditmemory.New()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaStore, err := auditkafka.New(cfg.KafkaBrokers, "")
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	}
	recorder := audit.NewPublisher(auditInbox)
	go func() {
		if err := auditworker.NewWorker(auditStore, auditInbox, log).Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	consentSvc := consent.NewService(consentStore, recorder, log)
	encounterSvc := encounter.NewService(encounterStore, log)
	partnerResolver := resolver.New(encounterStore, log)
	dispatchSvc := dispatch.NewService(
		partnerResolver, consentSvc, encounterStore, notifStore,
		appNotifier, smsGateway, m, recorder, log,
		dispatch.Config{Concurrency: cfg.DispatchConcurrency, SMSTimeout: cfg.SMSSendTimeout},
	)
	screeningSvc := screening.NewService(screenStore, consentSvc, dispatchSvc, m, recorder, log,
		screening.Config{LookbackDays: cfg.LookbackDays})
	inboxSvc := inbox.NewService(notifStore, consentSvc, recorder, log)

	validator := jwt.NewService(cfg.JWTSigningKey, "ember")
	handler := httptransport.NewHandler(log, m, screeningSvc, encounterSvc, consentSvc, inboxSvc, validator)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	log.Info("starting ember tracing engine", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// unavailableSMSGateway stands in when no gateway is configured; partners
// with phone numbers fold into the manual follow-up bucket.
type unavailableSMSGateway struct{}

func (unavailableSMSGateway) Send(context.Context, string, string) error {
	return errNoGateway
}

var errNoGateway = &gatewayNotConfiguredError{}

type gatewayNotConfiguredError struct{}

func (*gatewayNotConfiguredError) Error() string { return "sms gateway not configured" }
