package handler

import (
	"sync"
	"time"

	"github.com/emzola/shelflog/config"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/emzola/shelflog/service"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// Version is reported by the healthcheck endpoint and published in expvar.
const Version = "1.0.0"

// limiterTTL is how long an idle client's rate limiter is kept.
const limiterTTL = 3 * time.Minute

// Handler defines Handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	mu      sync.Mutex
	cache   *ttlcache.Cache[string, *rate.Limiter]
	service service.Service
}

// New creates a new instance of Handler. cache holds the per-client rate
// limiters; when nil a cache with a three minute TTL is created. Expired
// limiters are only evicted while the cache's Start loop runs.
func New(cfg config.Config, logger *jsonlog.Logger, cache *ttlcache.Cache[string, *rate.Limiter], service service.Service) *Handler {
	if cache == nil {
		cache = NewLimiterCache()
	}
	return &Handler{
		config:  cfg,
		logger:  logger,
		cache:   cache,
		service: service,
	}
}

// NewLimiterCache creates the cache used for per-client rate limiters.
func NewLimiterCache() *ttlcache.Cache[string, *rate.Limiter] {
	return ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](limiterTTL),
	)
}
