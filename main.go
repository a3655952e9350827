package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"fastmeet-service/internal/db"
	"fastmeet-service/internal/fastmeet"
	"fastmeet-service/internal/handlers"
	"fastmeet-service/internal/middleware"
	"fastmeet-service/internal/notifications"
	"fastmeet-service/internal/observability"
	"fastmeet-service/internal/rabbitmq"
	"fastmeet-service/internal/repositories"
	"fastmeet-service/internal/telemetry"
	"fastmeet-service/internal/ws"
)

const serviceName = "fastmeet-service"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.InitTracing(ctx, serviceName, os.Getenv("OTLP_ENDPOINT"))
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown failed: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	amqpURL := os.Getenv("AMQP_URL")
	exchange := getEnv("AMQP_EXCHANGE", "fastmeet.events")

	publisher := rabbitmq.NewPublisher(amqpURL, exchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	if obsPublisher, err := observability.NewAMQPPublisher(amqpURL, getEnv("WS_EVENTS_EXCHANGE", "fastmeet.ws")); err != nil {
		log.Printf("ws event publisher disabled: %v", err)
	} else {
		observability.SetPublisher(obsPublisher)
		defer obsPublisher.Close()
	}

	dispatcher := notifications.NewDispatcher(publisher, getEnv("NOTIFY_ROUTING_KEY", "notifications.user"))
	audit := telemetry.NewAuditEmitter(publisher, getEnv("AUDIT_ROUTING_KEY", "audit.fastmeet"),
		serviceName, getEnv("ENVIRONMENT", "dev"))

	jwtSecret := []byte(getEnv("JWT_SECRET", "dev-secret"))

	meetRepo := repositories.NewMeetRepo(database)
	participationRepo := repositories.NewParticipationRepo(database)
	messageRepo := repositories.NewMeetMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	controller := fastmeet.NewController(meetRepo, participationRepo, userRepo, dispatcher)
	chat := fastmeet.NewChatChannel(meetRepo, messageRepo)
	maps := fastmeet.NewMapService(meetRepo, participationRepo, userRepo)

	hub := ws.NewHub()

	meetHandler := handlers.NewMeetHandler(controller, hub, audit)
	chatHandler := handlers.NewChatHandler(controller, chat, userRepo, hub)
	mapHandler := handlers.NewMapHandler(maps)
	meetWS := ws.NewMeetWebSocketHandler(hub, meetRepo, participationRepo, jwtSecret)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(jwtSecret)

	router.POST("/meets", authMiddleware, meetHandler.CreateMeet)
	router.GET("/meets", authMiddleware, meetHandler.ListMeets)
	router.GET("/meets/:meet_id", authMiddleware, meetHandler.GetMeet)
	router.DELETE("/meets/:meet_id", authMiddleware, meetHandler.DeleteMeet)

	router.POST("/meets/:meet_id/join", authMiddleware, meetHandler.RequestJoin)
	router.DELETE("/meets/:meet_id/join", authMiddleware, meetHandler.CancelJoin)
	router.POST("/meets/:meet_id/leave", authMiddleware, meetHandler.Leave)
	router.POST("/meets/:meet_id/requests/:participation_id/accept", authMiddleware, meetHandler.AcceptRequest)
	router.POST("/meets/:meet_id/requests/:participation_id/decline", authMiddleware, meetHandler.DeclineRequest)

	router.GET("/meets/:meet_id/messages", authMiddleware, chatHandler.ListMessages)
	router.POST("/meets/:meet_id/messages", authMiddleware, chatHandler.PostMessage)

	router.GET("/map/markers", authMiddleware, mapHandler.Markers)
	router.GET("/map/nearby", authMiddleware, mapHandler.Nearby)

	router.GET("/ws/meets/:meet_id", meetWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, getEnv("DEBUG_ROUTES", "") == "1")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
