package ors

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"zust-route-service/internal/ports"

	"golang.org/x/time/rate"
)

// Client talks to OpenRouteService: optimization (VROOM), directions and snap.
//
// It is stateless apart from its HTTP sessions, its rate limiter and an
// optional snap cache, and is safe for concurrent use. Calls are never retried;
// a failed call fails the current route generation.
type Client struct {
	session            *http.Client
	snapSession        *http.Client
	apiKey             string
	baseURL            string
	maxDurationSeconds int
	snapRadiusMeters   int
	limiter            *rate.Limiter
	snapCache          ports.SnapCache
}

// Options tune a Client. Zero values select the defaults below.
type Options struct {
	BaseURL            string
	Timeout            time.Duration
	SnapTimeout        time.Duration
	MaxDurationSeconds int
	SnapRadiusMeters   int
	// Requests per minute across all endpoints; <= 0 disables limiting.
	RatePerMinute int
	SnapCache     ports.SnapCache
}

const (
	defaultBaseURL            = "https://api.openrouteservice.org"
	defaultTimeout            = 30 * time.Second
	defaultSnapTimeout        = 10 * time.Second
	defaultMaxDurationSeconds = 36000
	defaultSnapRadiusMeters   = 100
)

func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.SnapTimeout <= 0 {
		opts.SnapTimeout = defaultSnapTimeout
	}
	if opts.MaxDurationSeconds <= 0 {
		opts.MaxDurationSeconds = defaultMaxDurationSeconds
	}
	if opts.SnapRadiusMeters <= 0 {
		opts.SnapRadiusMeters = defaultSnapRadiusMeters
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RatePerMinute)/60.0), 1)
	}

	return &Client{
		session:            &http.Client{Timeout: opts.Timeout},
		snapSession:        &http.Client{Timeout: opts.SnapTimeout},
		apiKey:             apiKey,
		baseURL:            strings.TrimRight(opts.BaseURL, "/"),
		maxDurationSeconds: opts.MaxDurationSeconds,
		snapRadiusMeters:   opts.SnapRadiusMeters,
		limiter:            limiter,
		snapCache:          opts.SnapCache,
	}, nil
}
