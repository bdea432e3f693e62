package main

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"goldloan-origination/internal/adapter/backend"
	httpadp "goldloan-origination/internal/adapter/http"
	"goldloan-origination/internal/adapter/mediastore"
	"goldloan-origination/internal/adapter/middleware"
	"goldloan-origination/internal/adapter/renderer"
	"goldloan-origination/internal/adapter/repository/mysql"
	"goldloan-origination/internal/config"
	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/infrastructure/cache"
	"goldloan-origination/internal/infrastructure/db"
	"goldloan-origination/internal/logger"
	"goldloan-origination/internal/usecase/origination"
	"goldloan-origination/internal/usecase/quote"
	"goldloan-origination/internal/usecase/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(true)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.DevLog)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("open mysql")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("open redis")
	}

	client := backend.NewClient(cfg.BackendBaseURL, time.Duration(cfg.HTTPTimeoutSecs)*time.Second, log)
	customers := backend.NewCustomerClient(client)
	loans := backend.NewLoanClient(client)

	var photos downstream.PhotoStore
	if cfg.PhotoStore == "cloudinary" {
		photos, err = mediastore.NewCloudinaryStore(
			cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
			cfg.CloudinaryFolder, log)
		if err != nil {
			log.Fatal().Err(err).Msg("init cloudinary")
		}
	} else {
		photos = backend.NewPhotoClient(client)
	}

	drafts := mysql.NewDraftRepository(gdb)
	verifier := verification.NewUsecase(drafts, customers, log)
	quoter := quote.NewUsecase(drafts, loans, log)
	orig := origination.NewUsecase(drafts, loans, photos, renderer.New(log), verifier,
		origination.Limits{
			MaxPhotosPerItem:  cfg.MaxPhotosPerItem,
			MaxPhotosAllItems: cfg.MaxPhotosAllItems,
		}, log)

	h := httpadp.NewHandler()
	dh := httpadp.NewDraftHandler(orig, verifier, quoter)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	idemTTL := time.Duration(cfg.IdempTTLSecs) * time.Second
	g := e.Group("/drafts", middleware.SessionMiddleware(), middleware.IdempotencyMiddleware(rdb, idemTTL, log))
	g.POST("", dh.Create)
	g.GET("/:draft_id", dh.Get)
	g.PUT("/:draft_id/customer", dh.UpdateCustomer)
	g.POST("/:draft_id/customer/submit", dh.SubmitCustomer)
	g.POST("/:draft_id/otp", dh.SubmitOTP)
	g.POST("/:draft_id/items", dh.AddItem)
	g.PUT("/:draft_id/items/:position", dh.UpdateItem)
	g.DELETE("/:draft_id/items/:position", dh.RemoveItem)
	g.POST("/:draft_id/items/:group/photos", dh.StagePhotos)
	g.PUT("/:draft_id/terms", dh.UpdateTerms)
	g.POST("/:draft_id/submit", dh.Submit)
	g.DELETE("/:draft_id", dh.Cancel)

	addr := ":" + cfg.AppPort
	log.Info().Str("addr", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
