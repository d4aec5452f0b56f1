package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/ignatzorin/gigwork-backend/internal/interface/http/response"
	"github.com/ignatzorin/gigwork-backend/internal/logger"
)

const (
	defaultRateLimit  = 10
	defaultRatePeriod = time.Minute
)

// RateLimitMiddleware ограничивает частоту запросов к маршруту с одного IP.
// Счётчики у каждого маршрута свои: вход работника не расходует лимит регистрации.
func RateLimitMiddleware(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if period <= 0 {
		period = defaultRatePeriod
	}

	instance := limiter.New(
		memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: "gigwork", CleanUpInterval: period}),
		limiter.Rate{Period: period, Limit: limit},
	)

	return func(c *gin.Context) {
		key := c.ClientIP() + "|" + c.FullPath()
		state, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("rate limit: ошибка хранилища, запрос пропущен")
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(state.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(state.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(state.Reset, 10))

		if state.Reached {
			retryAfter := state.Reset - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.TooManyRequests(c, "слишком много запросов, попробуйте позже")
			return
		}

		c.Next()
	}
}
