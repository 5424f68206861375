// Command create-admin seeds the platform administrator. Running it again
// with the same email changes nothing.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/store-rating/internal/auth"
	"github.com/Clark-Hu/store-rating/internal/config"
	"github.com/Clark-Hu/store-rating/internal/logging"
	"github.com/Clark-Hu/store-rating/internal/repository"
	"github.com/Clark-Hu/store-rating/internal/service"
	"github.com/Clark-Hu/store-rating/internal/store"
)

func main() {
	var (
		name     = flag.String("name", "System Administrator", "admin display name")
		email    = flag.String("email", "admin@storerating.com", "admin login email")
		password = flag.String("password", "", "admin password (defaults to $ADMIN_PASSWORD)")
		address  = flag.String("address", "Admin Office", "admin address")
		migrate  = flag.Bool("migrate", true, "apply schema migrations first")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *password == "" {
		logger.Fatal("an admin password is required: pass -password or set ADMIN_PASSWORD")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg.DBURL, store.Options{MaxConns: 2, Logger: logger})
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	defer st.Close()

	if *migrate {
		if err := st.Migrate(); err != nil {
			logger.WithError(err).Fatal("apply migrations")
		}
	}

	svc := service.New(
		repository.New(st),
		auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute),
		auth.NewHasher(cfg.BcryptCost),
		logger,
		service.Options{},
	)

	admin, created, err := svc.EnsureAdmin(ctx, service.CreateUserInput{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Address:  address,
	})
	if err != nil {
		logger.WithError(err).Fatal("create admin")
	}

	entry := logger.WithFields(logrus.Fields{"id": admin.ID, "email": admin.Email})
	if !created {
		entry.Info("admin user already exists")
		return
	}
	entry.Info("admin user created")
}
