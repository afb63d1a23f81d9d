package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/czarnick89/workout-tracker/internal/config"
)

const (
	ThrottleStoreMemory = "memory"
	ThrottleStoreRedis  = "redis"

	msgThrottled = "Request was throttled."
)

// Throttle limits anonymous callers per client IP and authenticated
// callers per user id. A nil *Throttle lets everything through.
type Throttle struct {
	anon *limiter.Limiter
	user *limiter.Limiter
}

// NewThrottle builds both limiters on one store. A redis store that
// cannot be reached falls back to memory.
func NewThrottle(cfg config.ThrottleConfig, logger hclog.Logger) (*Throttle, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	anonRate, err := limiter.NewRateFromFormatted(cfg.AnonRate)
	if err != nil {
		return nil, fmt.Errorf("parse anon rate %q: %w", cfg.AnonRate, err)
	}
	userRate, err := limiter.NewRateFromFormatted(cfg.UserRate)
	if err != nil {
		return nil, fmt.Errorf("parse user rate %q: %w", cfg.UserRate, err)
	}

	var store limiter.Store
	switch cfg.Store {
	case ThrottleStoreRedis:
		store, err = newRedisStore(cfg.RedisURL)
		if err != nil {
			logger.Warn("failed to create redis store for throttling, falling back to memory", "error", err)
			store = memory.NewStore()
		}
	default:
		store = memory.NewStore()
	}

	return &Throttle{
		anon: limiter.New(store, anonRate),
		user: limiter.New(store, userRate),
	}, nil
}

func newRedisStore(url string) (limiter.Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{
		Prefix: "workouts_throttle",
	})
}

// Anon limits requests by client IP. It goes on routes that need no token.
func (t *Throttle) Anon(w errorWriter) gin.HandlerFunc {
	if t == nil {
		return passThrough
	}
	return t.middleware(t.anon, w, func(c *gin.Context) string {
		return "anon:" + c.ClientIP()
	})
}

// User limits requests by the authenticated user. It must run after
// AuthMiddleware; without a user in the context it keys by IP.
func (t *Throttle) User(w errorWriter) gin.HandlerFunc {
	if t == nil {
		return passThrough
	}
	return t.middleware(t.user, w, func(c *gin.Context) string {
		if userID, err := getUserIDFromContext(c); err == nil {
			return "user:" + strconv.FormatUint(uint64(userID), 10)
		}
		return "anon:" + c.ClientIP()
	})
}

func (t *Throttle) middleware(l *limiter.Limiter, w errorWriter, key mgin.KeyGetter) gin.HandlerFunc {
	return mgin.NewMiddleware(l,
		mgin.WithKeyGetter(key),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			throttledRequests.WithLabelValues(routeLabel(c)).Inc()
			w.write(c, &HTTPError{Status: http.StatusTooManyRequests, Detail: msgThrottled})
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			w.write(c, fmt.Errorf("throttle store: %w", err))
		}),
	)
}

func passThrough(c *gin.Context) { c.Next() }
