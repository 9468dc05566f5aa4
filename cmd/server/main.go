package main

import (
	"log"

	"closetube/internal/config"
	"closetube/internal/handler"
	"closetube/internal/model"
	"closetube/internal/repository"
	"closetube/internal/router"
	"closetube/internal/service"
	"closetube/pkg/logger"
	"closetube/pkg/rabbitmq"
	"closetube/pkg/redis"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// .env is optional outside local development.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, relying on environment")
	}
	logger.InitLogger()
	cfg := config.Load()

	redisClient, err := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Log.Fatalf("cannot connect to Redis: %v", err)
	}
	logger.Log.Info("Redis connected")

	// The broker only carries best-effort enrichment, so its absence
	// degrades the service instead of stopping it.
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.AMQPURL)
	if err != nil {
		logger.Log.WithError(err).Warn("RabbitMQ unavailable, metadata enrichment disabled")
	} else {
		defer rabbitMQConn.Close()
		logger.Log.Info("RabbitMQ connected")
	}

	db, err := gorm.Open(mysql.Open(cfg.MySQLDSN), &gorm.Config{})
	if err != nil {
		logger.Log.Fatalf("cannot connect to database: %v", err)
	}
	logger.Log.Info("database connected")

	if err := db.AutoMigrate(&model.User{}, &model.Group{}, &model.Video{}); err != nil {
		logger.Log.Fatalf("database migration failed: %v", err)
	}
	logger.Log.Info("database migrated")

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db, redisClient)
	groupRepo := repository.NewGroupRepository(db)

	userService := service.NewUserService(userRepo, cfg.JWTSecret)
	catalogService := service.NewCatalogService(videoRepo, groupRepo, rabbitMQConn)

	videoHandler := handler.NewVideoHandler(catalogService)
	groupHandler := handler.NewGroupHandler(catalogService)
	userHandler := handler.NewUserHandler(userService)

	r := router.SetupRouter(cfg.JWTSecret, videoHandler, groupHandler, userHandler)
	logger.Log.Infof("server starting on %s", cfg.HTTPAddr)

	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Log.Fatalf("server failed: %v", err)
	}
}
