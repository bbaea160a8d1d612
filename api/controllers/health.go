package controllers

import (
	"errors"
	"net/http"

	"github.com/lemarcheci/storefront-backend/api/responses"
	"github.com/lemarcheci/storefront-backend/pkg/db"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/redis"
)

// HealthController answers liveness and readiness probes.
type HealthController struct {
	db    db.Pinger
	cache redis.Pinger
	logg  *logger.Logger
}

func NewHealthController(database db.Pinger, cache redis.Pinger, logg *logger.Logger) (*HealthController, error) {
	if database == nil {
		return nil, errors.New("database pinger is required")
	}
	if cache == nil {
		return nil, errors.New("cache pinger is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &HealthController{db: database, cache: cache, logg: logg}, nil
}

func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

// Ready verifies the backing stores are reachable.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := c.db.Ping(ctx); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
		return
	}
	if err := c.cache.Ping(ctx); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
		return
	}

	responses.WriteSuccess(w, map[string]string{"status": "ready"})
}
