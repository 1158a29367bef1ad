// Command createadmin seeds a console admin account from ADMIN_USERNAME,
// ADMIN_EMAIL and ADMIN_PASSWORD, for deployments with registration closed.
package main

import (
	"context"
	"os"
	"time"

	"github.com/Manushivuz/IISPPR-MainSite/internal/admins"
	"github.com/Manushivuz/IISPPR-MainSite/internal/config"
	"github.com/Manushivuz/IISPPR-MainSite/internal/database"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("MONGODB_URI is required to seed an admin")
	}
	seed := cfg.Seed
	if seed.Username == "" || seed.Email == "" || seed.Password == "" {
		logger.Fatalf("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3, func(attempt int, err error) {
		logger.Warnf("attempt %d/3: failed to connect to MongoDB: %v", attempt, err)
	})
	if err != nil {
		logger.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := admins.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("admins"))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warnf("ensure indexes: %v", err)
	}
	a, err := admins.NewService(repo).Register(ctx, admins.RegisterInput{Username: seed.Username, Email: seed.Email, Password: seed.Password})
	if err != nil {
		logger.Fatalf("create admin: %v", err)
	}
	logger.Infof("admin %s (%s) created with id %s", a.Username, a.Email, a.ID.Hex())
}
