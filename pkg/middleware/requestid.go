package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderKeyRequestID はリクエスト相関IDを伝播するHTTPヘッダーキー。
const HeaderKeyRequestID = "X-Request-Id"

// contextKeyRequestID はGinコンテキストに相関IDを格納するキー。
const contextKeyRequestID = "request_id"

// RequestID はリクエストごとに相関IDを割り当てるGinミドルウェアを返す。
// クライアントがX-Request-Idヘッダーを指定した場合はその値をそのまま引き継ぎ、
// 未指定または空の場合は新規UUIDを生成する。
// 割り当てたIDはレスポンスヘッダーに反映し、以降は変更しない。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderKeyRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(HeaderKeyRequestID, id)
		c.Next()
	}
}

// GetRequestID はGinコンテキストから相関IDを取得する。
// RequestIDミドルウェアが事前に適用されている必要がある。
func GetRequestID(c *gin.Context) string {
	v, _ := c.Get(contextKeyRequestID)
	if id, ok := v.(string); ok {
		return id
	}
	return ""
}
