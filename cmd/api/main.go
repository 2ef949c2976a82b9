package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gestion-bovina/internal/adapters/auth/bcrypthash"
	"gestion-bovina/internal/adapters/auth/jwtauth"
	"gestion-bovina/internal/adapters/storage/memory"
	"gestion-bovina/internal/adapters/storage/postgres"
	"gestion-bovina/internal/adapters/storage/sqlite"
	"gestion-bovina/internal/adapters/storage/sqlstore"
	"gestion-bovina/internal/config"
	"gestion-bovina/internal/domain/animals"
	"gestion-bovina/internal/domain/users"
	"gestion-bovina/internal/platform/logger"
	"gestion-bovina/internal/router"
)

// @title						Gestión Bovina API
// @version					1.0
// @description				Inventario de ganado: registro, consulta, actualización y baja lógica de vacas.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Formato: "Bearer <token>"
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("store close failed", map[string]any{"error": err.Error()})
		}
	}()

	tokens, err := jwtauth.New(cfg.Token.Secret, cfg.Token.TTL)
	if err != nil {
		return err
	}

	usersSvc := users.NewService(st.users, bcrypthash.New(cfg.Security.BcryptCost), tokens)
	animalsSvc := animals.NewService(st.animals)

	srv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: router.NewRouter(router.Options{
			Animals:  animalsSvc,
			Users:    usersSvc,
			Verifier: tokens,
			Logger:   log,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":   srv.Addr,
			"driver": cfg.DB.Driver,
			"env":    cfg.App.Env,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type store struct {
	animals animals.Repository
	users   users.Repository
	close   func() error
}

func openStore(ctx context.Context, dbCfg config.DBConfig) (store, error) {
	var (
		db      *sql.DB
		dialect sqlstore.Dialect
		err     error
	)

	switch dbCfg.Driver {
	case config.DriverPostgres:
		db, err = postgres.Open(ctx, dbCfg.DSN, postgres.DefaultPool)
		dialect = sqlstore.Postgres
	case config.DriverSQLite:
		db, err = sqlite.Open(ctx, dbCfg.DSN)
		dialect = sqlstore.SQLite
	default:
		return store{
			animals: memory.NewAnimalRepo(),
			users:   memory.NewUserRepo(),
			close:   func() error { return nil },
		}, nil
	}
	if err != nil {
		return store{}, err
	}

	if err := sqlstore.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return store{}, err
	}

	return store{
		animals: sqlstore.NewAnimalsRepo(db, dialect),
		users:   sqlstore.NewUsersRepo(db, dialect),
		close:   db.Close,
	}, nil
}
