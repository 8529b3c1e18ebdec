package db

import (
	"github.com/pkg/errors"

	"github.com/vadimvoyevoda/ai-planner-sub000/internal/profile"
	"github.com/vadimvoyevoda/ai-planner-sub000/store"
	"github.com/vadimvoyevoda/ai-planner-sub000/store/db/postgres"
	"github.com/vadimvoyevoda/ai-planner-sub000/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// PostgreSQL is the reference driver; SQLite serves development and testing.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
