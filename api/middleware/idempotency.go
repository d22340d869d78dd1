package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/safariconnector/backend/api/responses"
	pkgerrors "github.com/safariconnector/backend/pkg/errors"
	"github.com/safariconnector/backend/pkg/logger"
	pkgredis "github.com/safariconnector/backend/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour
)

// protectedRoute marks a mutating endpoint that demands an Idempotency-Key.
// A route with an empty suffix matches the pattern exactly; a non-empty
// suffix matches prefix+wildcard+suffix, covering routes with a path param.
type protectedRoute struct {
	method string
	prefix string
	suffix string
	ttl    time.Duration
}

func (p protectedRoute) matches(method, pattern string) bool {
	if method != p.method {
		return false
	}
	if p.suffix == "" {
		return pattern == p.prefix
	}
	return strings.HasPrefix(pattern, p.prefix) && strings.HasSuffix(pattern, p.suffix)
}

// Money-moving endpoints keep their records for a week so a delayed client
// retry still replays instead of double-charging. Everything else gets a day.
var protectedRoutes = []protectedRoute{
	{method: http.MethodPost, prefix: "/api/public/v1/enquiries", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/auth/register", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/notifications/", suffix: "/read", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/notifications/read-all", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/operator/quotes", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/operator/trips", ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/bookings", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/bookings/", suffix: "/payment-proof", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/quotes/", suffix: "/decision", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/v1/operator/bookings/", suffix: "/confirm", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/payments/", suffix: "/verify", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/disbursements", ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, prefix: "/api/admin/v1/disbursements/", suffix: "/mark-paid", ttl: criticalIdempotencyTTL},
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	for _, route := range protectedRoutes {
		if route.matches(method, pattern) {
			return route.ttl, true
		}
	}
	return 0, false
}

// idempotencyRecord is the stored copy of a completed response, replayed
// verbatim when the same key and body come back.
type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

func (rec *idempotencyRecord) writeTo(w http.ResponseWriter) {
	if rec == nil {
		return
	}
	if ct := rec.Headers["Content-Type"]; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(rec.Status)
	if decoded, err := base64.StdEncoding.DecodeString(rec.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

// Idempotency replays stored responses for protected routes. The key is
// scoped per user, operator, method, and path, so two actors sharing an
// Idempotency-Key value never collide.
//
// Routes are matched on the request URL path, not chi's route pattern: the
// middleware runs via Use on a sub-router, where the pattern is still the
// partially-resolved mount ("/api/v1/*") rather than the final route.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	guard := &idempotencyGuard{store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, protected := routeTTL(r.Method, requestPath(r))
			if !protected || guard.store == nil {
				next.ServeHTTP(w, r)
				return
			}
			guard.serve(w, r, next, ttl)
		})
	}
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
}

func (g *idempotencyGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler, ttl time.Duration) {
	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey == "" {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	requestHash := base64.StdEncoding.EncodeToString(sum[:])
	key := g.store.IdempotencyKey(requestScope(r), idempotencyKey)

	if replayed := g.replay(w, r, key, requestHash); replayed {
		return
	}

	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r)
	g.persist(r, key, requestHash, capture, ttl)
}

// replay reports true when the request was fully handled here, whether by
// writing the stored response or an error. A false return means the handler
// should run.
func (g *idempotencyGuard) replay(w http.ResponseWriter, r *http.Request, key, requestHash string) bool {
	stored, err := g.store.Get(r.Context(), key)
	if err != nil && !errors.Is(err, redis.Nil) {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return true
	}
	if stored == "" {
		return false
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return true
	}
	if record.RequestHash != requestHash {
		responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return true
	}
	record.writeTo(w)
	return true
}

// persist stores the captured response best-effort. The response already
// went to the client, so a failed write only costs replay protection.
func (g *idempotencyGuard) persist(r *http.Request, key, requestHash string, capture *responseCapture, ttl time.Duration) {
	status := capture.status
	if status == 0 {
		status = http.StatusOK
	}
	record := idempotencyRecord{
		Status:      status,
		Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
		RequestHash: requestHash,
	}
	if ct := capture.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}

	payload, err := json.Marshal(record)
	if err == nil {
		_, err = g.store.SetNX(r.Context(), key, string(payload), ttl)
	}
	if err != nil && g.logg != nil {
		g.logg.Error(r.Context(), "persist idempotency record", err)
	}
}

func requestScope(r *http.Request) string {
	actor := ActorFromContext(r.Context())
	userID := ""
	if actor.UserID != uuid.Nil {
		userID = actor.UserID.String()
	}
	operatorID := ""
	if actor.OperatorID != nil {
		operatorID = actor.OperatorID.String()
	}
	return strings.Join([]string{userID, operatorID, r.Method, r.URL.Path}, "|")
}

func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	path := r.URL.Path
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
