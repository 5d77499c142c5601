package middleware

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/cyclegate/pkg/apperr"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時は相関IDとともに詳細をログへ出力し、
// クライアントには内部詳細を含まない汎用の500エンベロープを返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] [%s] %s %s: %v",
					GetRequestID(c), c.Request.Method, c.Request.URL.Path, r)
				status, envelope := apperr.Normalize(fmt.Errorf("panic: %v", r))
				c.AbortWithStatusJSON(status, envelope)
			}
		}()
		c.Next()
	}
}
