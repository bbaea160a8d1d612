package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/lemarcheci/storefront-backend/api/middleware"
	"github.com/lemarcheci/storefront-backend/api/responses"
	"github.com/lemarcheci/storefront-backend/api/validators"
	"github.com/lemarcheci/storefront-backend/internal/conflict"
	"github.com/lemarcheci/storefront-backend/internal/stores"
	"github.com/lemarcheci/storefront-backend/pkg/enums"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/types"
)

// StoresController serves the store catalog and the per-session selection flow.
type StoresController struct {
	stores stores.Service
	logg   *logger.Logger
}

func NewStoresController(svc stores.Service, logg *logger.Logger) (*StoresController, error) {
	if svc == nil {
		return nil, errors.New("stores service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &StoresController{stores: svc, logg: logg}, nil
}

func (c *StoresController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := c.stores.ListStores(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"stores": rows})
}

func (c *StoresController) GetSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	sel, err := c.stores.GetSelection(ctx, sessionID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, sel)
}

type selectStoreRequest struct {
	Store   string `json:"store" validate:"required"`
	Confirm bool   `json:"confirm"`
}

// PutSelection applies a manual store choice. A declined conflict leaves the
// previous selection in place; the outcome field tells the client which
// happened.
func (c *StoresController) PutSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var body selectStoreRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	code, err := enums.ParseStoreCode(body.Store)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown store code"))
		return
	}

	result, err := c.stores.SelectStore(conflict.WithConfirmation(ctx, body.Confirm), sessionID, code)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}

type locationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

func (c *StoresController) RecordLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var body locationRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	sel, err := c.stores.RecordLocation(ctx, sessionID, types.LatLng{Lat: body.Lat, Lng: body.Lng})
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, sel)
}

type locationErrorRequest struct {
	Code string `json:"code" validate:"required"`
}

func (c *StoresController) RecordLocationError(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var body locationErrorRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	code, err := enums.ParseLocationErrorCode(body.Code)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown location error code"))
		return
	}

	sel, err := c.stores.RecordLocationError(ctx, sessionID, code)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, sel)
}

type detectRequest struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Confirm bool     `json:"confirm"`
}

// Detect ranks stores by distance. Coordinates are optional; without them the
// last recorded location is used.
func (c *StoresController) Detect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := requireSession(ctx)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	var body detectRequest
	if r.ContentLength > 0 {
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, c.logg, w, err)
			return
		}
	}

	var coords *types.LatLng
	if body.Lat != nil || body.Lng != nil {
		if body.Lat == nil || body.Lng == nil {
			responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lat and lng must be provided together"))
			return
		}
		coords = &types.LatLng{Lat: *body.Lat, Lng: *body.Lng}
	}

	result, err := c.stores.DetectNearestStore(conflict.WithConfirmation(ctx, body.Confirm), sessionID, coords)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, result)
}

func requireSession(ctx context.Context) (string, error) {
	sessionID := middleware.SessionIDFromContext(ctx)
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session is required")
	}
	return sessionID, nil
}
