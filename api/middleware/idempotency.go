package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lemarcheci/storefront-backend/api/responses"
	pkgerrors "github.com/lemarcheci/storefront-backend/pkg/errors"
	"github.com/lemarcheci/storefront-backend/pkg/logger"
	"github.com/lemarcheci/storefront-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

type idempotencyRule struct {
	method string
	match  func(path string) bool
	scope  string
}

func matchExact(target string) func(string) bool {
	return func(path string) bool { return path == target }
}

func matchPrefix(prefix string) func(string) bool {
	return func(path string) bool { return strings.HasPrefix(path, prefix) }
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, match: matchExact("/api/v1/cart/items"), scope: "cart_add"},
	{method: http.MethodPost, match: matchExact("/api/v1/checkout/quote"), scope: "checkout_quote"},
}

type idempotencyRecord struct {
	Status      int    `json:"status"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

type responseCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (rc *responseCapture) WriteHeader(code int) {
	rc.status = code
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(p []byte) (int, error) {
	rc.buf.Write(p)
	return rc.ResponseWriter.Write(p)
}

// Idempotency makes retried mutating calls safe. Matched routes require an
// Idempotency-Key header; the first response is stored and replayed for
// repeats, and reusing a key with a different body is a conflict.
func Idempotency(store redis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header is required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sessionID := SessionIDFromContext(r.Context())
			redisKey := store.IdempotencyKey(rule.scope, sessionID+":"+key)
			requestHash := hashRequest(body)

			if raw, getErr := store.Get(r.Context(), redisKey); getErr == nil {
				replayStored(r, w, logg, raw, requestHash)
				return
			} else if getErr != redis.ErrNotFound && logg != nil {
				logg.Warn(logg.WithField(r.Context(), "idempotency_key", key), "idempotency.lookup_failed")
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			record := idempotencyRecord{
				Status:      capture.status,
				Body:        base64.StdEncoding.EncodeToString(capture.buf.Bytes()),
				RequestHash: requestHash,
			}
			encoded, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				return
			}
			if _, setErr := store.SetNX(r.Context(), redisKey, string(encoded), idempotencyTTL); setErr != nil && logg != nil {
				logg.Warn(logg.WithField(r.Context(), "idempotency_key", key), "idempotency.store_failed")
			}
		})
	}
}

func matchRule(r *http.Request) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if r.Method == rule.method && rule.match(r.URL.Path) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func replayStored(r *http.Request, w http.ResponseWriter, logg *logger.Logger, raw, requestHash string) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		responses.WriteError(r.Context(), logg, w,
			pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt idempotency record"))
		return
	}
	if record.RequestHash != requestHash {
		responses.WriteError(r.Context(), logg, w,
			pkgerrors.New(pkgerrors.CodeConflict, "idempotency key reused with a different request body"))
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		responses.WriteError(r.Context(), logg, w,
			pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt idempotency record"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(record.Status)
	w.Write(decoded)
}

func hashRequest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
