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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cockpityara/internal/assistant"
	"cockpityara/internal/database"
	"cockpityara/internal/middleware"
	"cockpityara/internal/modules/clients"
	"cockpityara/internal/modules/dossier"
	profilemod "cockpityara/internal/modules/profile"
	"cockpityara/internal/modules/session"
	"cockpityara/internal/modules/workshop"
	jwtsvc "cockpityara/internal/pkg/jwt"
	"cockpityara/internal/pkg/pdfrender"
	"cockpityara/internal/repository"
)

func main() {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	localPath := envOrDefault("LOCAL_DATABASE_PATH", "cockpit.db")
	localDB, err := database.ConnectLocal(localPath)
	if err != nil {
		log.Fatal(err)
	}

	localRepo := repository.NewProjectLocalRepository(localDB)
	profileRepo := repository.NewProfileRepository(localDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote store is optional: absent or failing credentials mean a
	// local-only session, resolved once at startup.
	var remoteStore clients.RemoteStore
	var feed clients.ChangeFeed
	var notifier *repository.RemoteNotifier
	if dsn := os.Getenv("REMOTE_DATABASE_URL"); dsn != "" {
		remoteDB, err := database.ConnectRemote(dsn)
		if err != nil {
			log.Printf("remote store unavailable, running local-only: %v", err)
		} else {
			notifier = repository.NewRemoteNotifier(dsn)
			if err := notifier.Start(ctx); err != nil {
				log.Printf("remote change feed unavailable, running local-only: %v", err)
				notifier = nil
			} else {
				remoteStore = repository.NewProjectRemoteRepository(remoteDB, notifier)
				feed = notifier
			}
		}
	}

	hub := clients.NewHub()
	syncService := clients.NewService(localRepo, remoteStore, feed, hub, log.Printf)
	syncService.Start(ctx)

	var gateway assistant.Gateway
	if key := os.Getenv("ASSISTANT_API_KEY"); key != "" {
		gateway = assistant.NewAnthropicGateway(key, os.Getenv("ASSISTANT_MODEL"), log.Printf)
	} else {
		log.Println("No assistant credential configured, chat runs in offline mode")
		gateway = assistant.NewOfflineGateway()
	}

	renderer := pdfrender.New(pdfrender.Options{
		NoSandbox: os.Getenv("CHROME_NO_SANDBOX") == "1",
	})

	j := jwtsvc.New(secret, 24*time.Hour)

	sessionService := session.NewService(profileRepo, j)
	sessionHandler := session.NewHandler(sessionService)

	clientsHandler := clients.NewHandler(syncService)
	wsHandler := clients.NewWSHandler(hub, j, syncService)

	workshopService := workshop.NewService(syncService, gateway, profileRepo, log.Printf)
	workshopHandler := workshop.NewHandler(workshopService, profileRepo)

	profileService := profilemod.NewService(profileRepo)
	profileHandler := profilemod.NewHandler(profileService)

	dossierHandler := dossier.NewHandler(syncService, profileRepo, renderer)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		sessionHandler.RegisterRoutes(v1)
		v1.GET("/ws", wsHandler.HandleWebSocket)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			clientsHandler.RegisterRoutes(protected)
			workshopHandler.RegisterRoutes(protected)
			profileHandler.RegisterRoutes(protected)
			dossierHandler.RegisterRoutes(protected)
		}
	}

	srv := &http.Server{
		Addr:    ":" + envOrDefault("PORT", "8080"),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()
	log.Println("Cockpit Yara API listening on", srv.Addr)

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	syncService.Stop()
	if notifier != nil {
		notifier.Close(shutdownCtx)
	}
	renderer.Close()
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
