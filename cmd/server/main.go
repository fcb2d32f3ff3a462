package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusforms/internal/cache"
	"campusforms/internal/config"
	"campusforms/internal/repository"
	"campusforms/internal/service"
	"campusforms/internal/transport/rest"
	"campusforms/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Repositories
	formRepo := repository.NewFormRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	groupRepo := repository.NewGroupRepo(db)

	// Caches
	sessionCache := cache.NewSessionCache(rdb)
	formCache := cache.NewFormCache(rdb)

	// Services
	authSvc := service.NewAuthService(cfg)
	formSvc := service.NewFormService(formRepo, formCache)
	groupSvc := service.NewGroupService(groupRepo)
	submitSvc := service.NewSubmitService(responseRepo, groupSvc, cfg.RedirectDelaySec)
	sessionSvc := service.NewSessionService(sessionCache, formSvc, groupSvc, submitSvc, responseRepo)
	exportSvc := service.NewExportService(responseRepo, formSvc)

	// wsHub implements service.Broadcaster
	groupSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		AuthService:    authSvc,
		FormService:    formSvc,
		SessionService: sessionSvc,
		ExportService:  exportSvc,
		WSHub:          wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET/PUT/DELETE /v1/forms")
		log.Println("  POST /v1/forms/{formId}/sessions")
		log.Println("  GET/PUT/POST /v1/forms/{formId}/session[...]")
		log.Println("  GET /v1/forms/{formId}/responses[/export]")
		log.Println("  WS  /v1/ws/forms/{formId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
