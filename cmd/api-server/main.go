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

	"github.com/Nurshot/manga-backend/internal/auth"
	"github.com/Nurshot/manga-backend/internal/catalog"
	"github.com/Nurshot/manga-backend/internal/category"
	"github.com/Nurshot/manga-backend/internal/chapter"
	"github.com/Nurshot/manga-backend/internal/ingest"
	"github.com/Nurshot/manga-backend/internal/notify"
	"github.com/Nurshot/manga-backend/pkg/database"
	"github.com/Nurshot/manga-backend/pkg/utils"
)

func main() {
	utils.LoadDotEnv()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := notify.NewHub()
	router.GET("/ws", notify.WSHandler(hub))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ping": "pong!"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.WSClients,
		})
	})

	// Catalog (public)
	mangaRepo := catalog.NewRepo(db)
	mangaHandler := catalog.NewHandler(mangaRepo)
	mangaHandler.RegisterRoutes(router.Group("/manga"))

	// Categories
	catRepo := category.NewRepo(db)
	catHandler := category.NewHandler(catRepo)
	catHandler.RegisterRoutes(router.Group("/category"))

	// Chapters
	chapterRepo := chapter.NewRepo(db)
	chapterHandler := chapter.NewHandler(chapterRepo)
	chapterHandler.RegisterRoutes(router.Group(""))

	// Ingestion
	stagingCfg := utils.LoadStagingConfig()
	ingestCfg := utils.LoadIngestConfig()

	var factory ingest.StagerFactory
	if stagingCfg.Enabled {
		factory = func() (ingest.Stager, error) {
			return ingest.NewFTPStager(stagingCfg)
		}
		log.Printf("[ingest] staging mode: ftp %s:%d", stagingCfg.Host, stagingCfg.Port)
	} else {
		log.Println("[ingest] staging mode: inline base64")
	}

	ingestor := &ingest.Ingestor{
		Chapters:  chapterRepo,
		NewStager: factory,
		Hub:       hub,
		Opts: ingest.Options{
			AbortChapterOnPageError: ingestCfg.AbortChapterOnPageError,
			ForceReingest:           ingestCfg.ForceReingest,
		},
	}
	ingestHandler := ingest.NewHandler(ingestor, mangaRepo)
	ingestHandler.RegisterRoutes(router.Group("/manga"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}
