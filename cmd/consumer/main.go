package main

import (
	"context"
	"log"
	"time"

	"closetube/internal/config"
	"closetube/internal/enrich"
	"closetube/internal/repository"
	"closetube/internal/service"
	"closetube/pkg/logger"
	"closetube/pkg/rabbitmq"

	"encoding/json"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Enrichment worker: consumes ingestion events and back-fills title and
// thumbnail via oEmbed. Everything here is best-effort; a video that never
// gets enriched is still a fully functional catalog entry.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, relying on environment")
	}
	logger.InitLogger()
	cfg := config.Load()

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{})
	if err != nil {
		logger.Log.Fatalf("consumer cannot connect to database: %v", err)
	}

	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.AMQPURL)
	if err != nil {
		logger.Log.Fatalf("consumer cannot connect to RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()

	// No cache writes from this process, so no redis client.
	videoRepo := repository.NewVideoRepository(db, nil)
	enricher := enrich.NewEnricher(5 * time.Second)

	consumeEnrichments(rabbitMQConn, videoRepo, enricher)
}

func consumeEnrichments(conn *amqp.Connection, videoRepo repository.VideoRepository, enricher *enrich.Enricher) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Fatalf("cannot open channel: %v", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(service.QueueEnrich, true, false, false, false, nil); err != nil {
		logger.Log.Fatalf("cannot declare enrich queue: %v", err)
	}

	msgs, err := ch.Consume(
		service.QueueEnrich, // queue
		"",                  // consumer
		false,               // auto-ack
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		logger.Log.Fatalf("cannot register enrich consumer: %v", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			logCtx := logger.Log.WithField("redelivered", d.Redelivered)
			logCtx.Info("enrich message received")

			var msg service.EnrichMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				logCtx.WithError(err).Error("enrich message unmarshal failed")
				// Poison message, drop it.
				d.Nack(false, false)
				continue
			}
			logCtx = logCtx.WithField("video_id", msg.VideoID)

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			meta, err := enricher.Fetch(ctx, msg.SourceURL)
			if err != nil {
				// Provider said no (or never answered). Enrichment is
				// best-effort, so this is a terminal outcome, not a retry.
				logCtx.WithError(err).Warn("enrichment fetch failed, leaving fields empty")
				cancel()
				d.Ack(false)
				continue
			}

			if err := videoRepo.UpdateMetadata(ctx, msg.VideoID, meta.Title, meta.ThumbnailURL); err != nil {
				// Store trouble is transient; let the broker redeliver.
				logCtx.WithError(err).Error("metadata write failed, requeueing")
				cancel()
				d.Nack(false, true)
				continue
			}
			cancel()

			logCtx.WithField("title", meta.Title).Info("video enriched")
			d.Ack(false)
		}
	}()

	logger.Log.Info(" [*] waiting for enrich messages, press CTRL+C to exit")
	<-forever
}
