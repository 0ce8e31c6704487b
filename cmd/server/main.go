package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"stores-api/internal/blocklist"
	"stores-api/internal/config"
	"stores-api/internal/es"
	"stores-api/internal/handlers"
	"stores-api/internal/logging"
	authmw "stores-api/internal/middleware/auth"
	"stores-api/internal/mykafka"
	"stores-api/internal/notifier"
	"stores-api/internal/tokens"
	httpserver "stores-api/internal/transport/http"
)

const itemIndex = "items"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	codec := tokens.NewCodec([]byte(configuration.JWT_SECRET), []byte(configuration.REFRESH_SECRET))

	var revoked blocklist.Blocklist
	if configuration.REDIS_ADDR != "" {
		r, err := blocklist.NewRedis(configuration.REDIS_ADDR, configuration.REDIS_PASSWORD, codec.RefreshTTL)
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		defer r.Close()
		revoked = r
	} else {
		revoked = blocklist.NewMemory()
	}

	var producer mykafka.Publisher = mykafka.Nop{}
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	var mailer notifier.Notifier = &notifier.Log{Logger: logger}
	if configuration.MAILGUN_DOMAIN != "" && configuration.MAILGUN_API_KEY != "" {
		mailer = notifier.NewMailgun(configuration.MAILGUN_DOMAIN, configuration.MAILGUN_API_KEY)
	}

	guard := &authmw.Guard{Codec: codec, Blocklist: revoked}

	deps := httpserver.Deps{
		Guard:        guard,
		AuthHandler:  &handlers.AuthHandler{DB: db, Codec: codec, Blocklist: revoked, Producer: producer, Notifier: mailer},
		StoreHandler: &handlers.StoreHandler{DB: db},
		ItemHandler:  &handlers.ItemHandler{DB: db, Producer: producer},
		TagHandler:   &handlers.TagHandler{DB: db},
	}

	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		deps.ItemHandler.ES = esClient
		deps.ItemHandler.Index = itemIndex
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: itemIndex}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
