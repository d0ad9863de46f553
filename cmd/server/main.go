// Package main runs the VSTEP registration portal HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vstep-portal/backend/config"
	"github.com/vstep-portal/backend/internal/drafts"
	"github.com/vstep-portal/backend/internal/export"
	"github.com/vstep-portal/backend/internal/middleware"
	"github.com/vstep-portal/backend/internal/registrations"
	"github.com/vstep-portal/backend/internal/sessions"
	"github.com/vstep-portal/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// Record store lives for the process lifetime; it resets on restart.
	store := registrations.NewStore()
	if err := registrations.Seed(store); err != nil {
		logger.Fatal("seed store", zap.Error(err))
	}
	ids := registrations.NewIDGenerator()

	sessionMgr := sessions.NewManager(drafts.NewDefaults(cfg.Exam.Date))
	sessionHandler := sessions.NewHandler(
		sessionMgr,
		store,
		ids,
		time.Duration(cfg.Server.SubmitDelayMS)*time.Millisecond,
		logger,
	)

	rasterizer := export.NewChromeRasterizer(
		cfg.Export.RasterScale,
		time.Duration(cfg.Export.ChromeTimeoutSec)*time.Second,
		logger,
	)
	pdfExporter := export.NewPDFExporter(rasterizer, logger)
	registrationHandler := registrations.NewHandler(store, pdfExporter, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Candidate flow: session, draft edits, uploads, submit
	router.POST("/sessions", sessionHandler.Create)
	router.GET("/sessions/:id", sessionHandler.Get)
	router.PATCH("/sessions/:id/draft", sessionHandler.PatchDraft)
	router.POST("/sessions/:id/draft/images/:slot", sessionHandler.UploadImage)
	router.POST("/sessions/:id/draft/reset", sessionHandler.ResetDraft)
	router.POST("/sessions/:id/submit", sessionHandler.Submit)
	router.POST("/sessions/:id/view", sessionHandler.Navigate)

	// Admin listing and artifact exports
	router.GET("/registrations", registrationHandler.List)
	router.GET("/exports/registrations", registrationHandler.ExportSpreadsheet)
	router.GET("/registrations/:id/document", registrationHandler.Document)
	router.GET("/registrations/:id/pdf", registrationHandler.ExportPDF)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
