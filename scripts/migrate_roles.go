// scripts/migrate_roles.go normalizes role values on existing user documents.
package main

import (
	"context"
	"time"

	"sharebite/internal/config"
	"sharebite/internal/database"
	"sharebite/internal/store"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	cfg := config.Load()

	db, err := database.NewMongoDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("connecting to MongoDB")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := store.NewUserStore(db.Collection(database.UsersCollection))
	modified, err := users.NormalizeRoles(ctx)
	if err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	log.WithField("modified", modified).Info("roles migrated")
}
