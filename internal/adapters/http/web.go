package web

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"sagra/internal/adapters/http/middleware"
	"sagra/internal/adapters/http/perf"
	"sagra/internal/adapters/markdown"
	athleteStore "sagra/internal/adapters/storage/athlete"
	injuryStore "sagra/internal/adapters/storage/injury"
	outboxStore "sagra/internal/adapters/storage/outbox"
	phaseStore "sagra/internal/adapters/storage/phase"
	progressStore "sagra/internal/adapters/storage/progress"
	"sagra/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AthleteStore  athleteStore.Store
	InjuryStore   injuryStore.Store
	PhaseStore    phaseStore.Store
	ProgressStore progressStore.Store
	OutboxStore   outboxStore.Store
}

// Options configures NewMux. Zero values fall back to development defaults.
type Options struct {
	CSRFKey         []byte // 32 bytes; a random key is generated when unset
	CSRF            middleware.CSRFOptions
	Limiter         *middleware.RateLimiter
	SlowRequestMs   int
	Location        *time.Location // clinic time zone for "today"
	NotifyEmail     string         // staff address for phase notifications; empty disables them
	OutboxProcessor *orchestrators.OutboxProcessor
}

// DefaultRateLimitPerSecond is the per-IP limit used when no limiter is supplied.
const DefaultRateLimitPerSecond = 20

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Outbox processor for manual retries (set by NewMux; nil disables the admin actions)
var outboxProcessor *orchestrators.OutboxProcessor

var notifyEmail string

// location is the clinic's time zone.
var location = time.UTC

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer renders injury notes. Raw HTML in notes is escaped.
var mdRenderer = markdown.NewRenderer()

// clinicNow is the wall clock in the clinic's time zone.
func clinicNow() time.Time {
	return timeNow().In(location)
}

// csrfKeyOrRandom returns key when it is usable, otherwise a per-process random key.
// Production configs are rejected earlier without a valid key.
func csrfKeyOrRandom(key []byte) []byte {
	if len(key) == 32 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate CSRF key: " + err.Error())
	}
	slog.Warn("csrf_random_key", "detail", "tokens will not survive a restart; set SAGRA_CSRF_KEY")
	return key
}

// NewMux wires HTTP handlers for the app.
// PRE: s is fully populated
// POST: Returns the routed handler wrapped in timing, security headers, rate limit and CSRF
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	outboxProcessor = opts.OutboxProcessor
	notifyEmail = opts.NotifyEmail
	location = time.UTC
	if opts.Location != nil {
		location = opts.Location
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(DefaultRateLimitPerSecond, time.Second)
	}

	// Timing -> SecurityHeaders -> RateLimit -> CSRF -> Mux
	return middleware.Chain(mux,
		middleware.Timing(collector, opts.SlowRequestMs),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.CSRF(csrfKeyOrRandom(opts.CSRFKey), opts.CSRF),
	)
}
