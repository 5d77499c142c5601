package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/cyclegate/pkg/apperr"
	"github.com/nao1215/cyclegate/pkg/auth"
)

// contextKeyPrincipal はGinコンテキストに認証済み主体を格納するキー。
const contextKeyPrincipal = "principal"

// Authenticate はAuthorizationヘッダーのBearerトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストにPrincipalを設定して後続ステージへ進む。
// 失敗した場合は401のエラーエンベロープを返し、後続ステージは実行しない。
func Authenticate(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := a.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(contextKeyPrincipal, principal)
		c.Next()
	}
}

// RequireRoles は指定ロールのいずれかを保持する主体のみを許可するGinミドルウェアを返す。
// rolesが空の場合は認証済みであれば許可する。
// Authenticateミドルウェアが事前に適用されている必要がある。
func RequireRoles(a *auth.Authenticator, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.Authorize(GetPrincipal(c), roles); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// GetPrincipal はGinコンテキストから認証済み主体を取得する。
// 未認証の場合はnilを返す。
func GetPrincipal(c *gin.Context) *auth.Principal {
	v, _ := c.Get(contextKeyPrincipal)
	if p, ok := v.(*auth.Principal); ok {
		return p
	}
	return nil
}

// abortWithError はエラーを正規化してリクエスト処理を打ち切る。
// 500系は内部詳細を相関IDとともにログへ出力する。
func abortWithError(c *gin.Context, err error) {
	status, envelope := apperr.Normalize(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] 内部エラー: %v", GetRequestID(c), err)
	}
	c.AbortWithStatusJSON(status, envelope)
}
