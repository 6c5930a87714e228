package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"spacerh.dev/internal/audit"
	"spacerh.dev/internal/auth"
	"spacerh.dev/internal/hr"
	"spacerh.dev/internal/obs"
	"spacerh.dev/internal/stream"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the HR service.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	hr         *hr.Service
	lockouts   *auth.LockoutTracker
	stream     *stream.Stream

	tokenTTL   time.Duration
	rateBurst  int
	ratePerSec int
}

// New wires routes and middleware dependencies.
func New(rp ReadyProbe, version string, svc *hr.Service, lockouts *auth.LockoutTracker, events *stream.Stream) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		hr:         svc,
		lockouts:   lockouts,
		stream:     events,
		tokenTTL:   8 * time.Hour,
		rateBurst:  20,
		ratePerSec: 10,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/auth/login", a.handleLogin)
	a.mux.HandleFunc("/auth/signup", a.handleSignup)

	a.mux.HandleFunc("/users/me", a.handleMe)
	a.mux.HandleFunc("/users", a.handleUsersCollection)
	a.mux.HandleFunc("/users/", a.handleUserResource)

	a.mux.HandleFunc("/companies", a.handleCompaniesCollection)
	a.mux.HandleFunc("/companies/", a.handleCompanyResource)

	a.mux.HandleFunc("/daily-requests", a.handleRequestsCollection)
	a.mux.HandleFunc("/daily-requests/assignments", a.handleAssignmentsCollection)
	a.mux.HandleFunc("/daily-requests/assignments/", a.handleAssignmentResource)
	a.mux.HandleFunc("/daily-requests/stats/dashboard", a.handleDashboardStats)
	a.mux.HandleFunc("/daily-requests/stats/attendance", a.handleAttendanceStats)
	a.mux.HandleFunc("/daily-requests/report/payments", a.handlePaymentsReport)
	a.mux.HandleFunc("/daily-requests/events", a.handleEvents)
	a.mux.HandleFunc("/daily-requests/", a.handleRequestResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the middleware-wrapped handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "space-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"detail": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) audit(ctx context.Context, event, resourceType, resourceID string, meta map[string]string) {
	fields := map[string]any{
		"resource_type": resourceType,
		"resource_id":   resourceID,
	}
	for k, v := range meta {
		fields[k] = v
	}
	_ = audit.LogEvent(ctx, event, fields)
}

func (a *API) publish(evt stream.Event) {
	if a.stream != nil {
		a.stream.Publish(evt)
	}
}
