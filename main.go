package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/access"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account"
	accountstore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/account/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/auth"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
	cataloghandler "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog/handler"
	catalogstore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/config"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/platform/database"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/share"
	sharehandler "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/share/handler"
	sharestore "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/share/store"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/status"
	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/trash"
	trashhandler "github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/trash/handler"
)

var goEnv string = "development"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if goEnv != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Info().Str("environment", goEnv).Msg("Starting server")

	config.SetConfig(goEnv)

	db, err := database.NewDB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Stores
	accountStore := accountstore.NewStore(db)
	catalogStore := catalogstore.NewStore(db)
	shareStore := sharestore.NewStore(db)
	trashStore := trash.NewStore(db)

	// Services
	accountService := account.NewService(accountStore)
	if err := accountService.EnsureDefaultAdmin(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure default admin")
	}

	authService := auth.NewService(accountService, auth.Config{
		Secret:         config.Conf.Auth.Secret,
		Issuer:         config.Conf.Auth.Issuer,
		AccessTokenTTL: config.Conf.Auth.AccessTokenTTL,
		RefreshTTL:     config.Conf.Auth.RefreshTokenTTL,
	})

	evaluator := access.NewEvaluator(catalogStore, shareStore)
	shareService := share.NewService(shareStore, accountService, evaluator)

	// One lock set serializes structural creates and delete cascades.
	locks := catalog.NewCollectionLocks()
	catalogService := catalog.NewService(catalogStore, evaluator, shareStore, locks)

	retention := time.Duration(config.Conf.Trash.RetentionDays) * 24 * time.Hour
	trashService := trash.NewService(db, catalogStore, trashStore, evaluator, locks, retention)

	// Router
	mux := http.NewServeMux()
	auth.NewHandler(authService).RegisterRoutes(mux)
	account.NewHandler(accountService).RegisterRoutes(mux)
	config.NewHandler().RegisterRoutes(mux)
	cataloghandler.NewHandler(catalogService, trashService).RegisterRoutes(mux)
	sharehandler.NewHandler(shareService).RegisterRoutes(mux)
	trashhandler.NewHandler(trashService).RegisterRoutes(mux)
	status.NewHandler(db, retention).RegisterRoutes(mux)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Retention reaper
	reaper := trash.NewReaper(trashService, config.Conf.Trash.SweepInterval)
	go reaper.Run(ctx)

	server := &http.Server{
		Addr:    config.Conf.Server.Port,
		Handler: authService.Middleware(mux),
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server is running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
