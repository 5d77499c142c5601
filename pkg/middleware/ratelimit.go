package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/cyclegate/pkg/apperr"
	"golang.org/x/time/rate"
)

// RateLimit はクライアントIPごとにリクエスト数を制限するGinミドルウェアを返す。
// window期間あたりmax件を上限とするトークンバケットで制限し、
// 超過したリクエストには429のエラーエンベロープを返す。
// maxが0以下の場合は制限を行わない。
func RateLimit(window time.Duration, max int) gin.HandlerFunc {
	if max <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limit := rate.Every(window / time.Duration(max))

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(limit, max)
			limiters[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperr.Envelope{
				ErrorCode: "RATE_LIMIT",
				Message:   "Too many requests, please try again later.",
			})
			return
		}
		c.Next()
	}
}
