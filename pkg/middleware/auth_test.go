package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/cyclegate/pkg/apperr"
	"github.com/nao1215/cyclegate/pkg/auth"
)

// testSecret はテスト用のJWT署名秘密鍵。
const testSecret = "test-secret-key-for-middleware-tests"

// newTestAuthenticator はテスト用のAuthenticatorを生成する。
func newTestAuthenticator() *auth.Authenticator {
	return auth.NewAuthenticator(testSecret, "cyclestore-api-gateway", "cyclestore-clients", time.Hour)
}

// issueTestToken はテスト用のJWTトークンを発行する。
func issueTestToken(t *testing.T, a *auth.Authenticator, subject string, roles []string) string {
	t.Helper()

	token, err := a.Issue(subject, roles)
	if err != nil {
		t.Fatalf("テスト用トークンの発行に失敗: %v", err)
	}
	return token
}

// decodeEnvelope はレスポンスボディをエラーエンベロープとしてパースする。
func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apperr.Envelope {
	t.Helper()

	var envelope apperr.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v", err)
	}
	return envelope
}

// TestAuthenticate は認証ミドルウェアを検証する。
func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンの場合はPrincipalが設定されハンドラが実行されること", func(t *testing.T) {
		t.Parallel()

		a := newTestAuthenticator()
		router := gin.New()
		router.Use(Authenticate(a))

		var principal *auth.Principal
		router.GET("/test", func(c *gin.Context) {
			principal = GetPrincipal(c)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+issueTestToken(t, a, "admin", []string{"admin"}))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if principal == nil {
			t.Fatal("Principalが設定されていない")
		}
		if principal.Subject != "admin" {
			t.Errorf("Subject = %q, want %q", principal.Subject, "admin")
		}
	})

	t.Run("Authorizationヘッダーが無い場合は401で後続を実行しないこと", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Authenticate(newTestAuthenticator()))

		handlerCalled := false
		router.GET("/test", func(c *gin.Context) {
			handlerCalled = true
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		if handlerCalled {
			t.Error("認証失敗にもかかわらずハンドラが実行された")
		}
		if envelope := decodeEnvelope(t, w); envelope.ErrorCode != "UNAUTHORIZED" {
			t.Errorf("errorCode = %q, want %q", envelope.ErrorCode, "UNAUTHORIZED")
		}
	})

	t.Run("不正なトークンの場合は401が返ること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Authenticate(newTestAuthenticator()))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestRequireRoles はロール認可ミドルウェアを検証する。
func TestRequireRoles(t *testing.T) {
	t.Parallel()

	t.Run("要求ロールを保持する場合はハンドラが実行されること", func(t *testing.T) {
		t.Parallel()

		a := newTestAuthenticator()
		router := gin.New()
		router.Use(Authenticate(a))
		router.Use(RequireRoles(a, "admin"))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+issueTestToken(t, a, "admin", []string{"admin"}))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("要求ロールを保持しない場合は403のFORBIDDENが返ること", func(t *testing.T) {
		t.Parallel()

		a := newTestAuthenticator()
		router := gin.New()
		router.Use(Authenticate(a))
		router.Use(RequireRoles(a, "admin"))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+issueTestToken(t, a, "user1", []string{"user"}))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
		if envelope := decodeEnvelope(t, w); envelope.ErrorCode != "FORBIDDEN" {
			t.Errorf("errorCode = %q, want %q", envelope.ErrorCode, "FORBIDDEN")
		}
	})

	t.Run("Principalが無い場合は403ではなく401が返ること", func(t *testing.T) {
		t.Parallel()

		a := newTestAuthenticator()
		router := gin.New()
		// Authenticateを適用しないままRequireRolesを適用する
		router.Use(RequireRoles(a, "admin"))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("GetPrincipalは未認証の場合nilを返すこと", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if p := GetPrincipal(c); p != nil {
			t.Errorf("GetPrincipal() = %v, want nil", p)
		}
	})
}
