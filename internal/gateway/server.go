package gateway

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/cyclegate/internal/config"
	"github.com/nao1215/cyclegate/pkg/apperr"
	"github.com/nao1215/cyclegate/pkg/auth"
	"github.com/nao1215/cyclegate/pkg/httpclient"
	"github.com/nao1215/cyclegate/pkg/middleware"
)

// Server はAPI GatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービス設定。起動後は読み取り専用。
	cfg *config.Config
	// auth はJWTトークンの発行・検証を行う。
	auth *auth.Authenticator
	// verifier はログイン時の資格情報検証を行う。
	verifier auth.CredentialVerifier
	// registry はダウンストリームサービスへのクライアント群。
	registry *httpclient.Registry
}

// NewServer は新しいGatewayサーバーを生成する。
// パイプラインのステージは固定順で登録する:
// 相関ID → アクセスログ → リカバリ → CORS → レート制限 → (ルート別) 認証 → 認可。
func NewServer(cfg *config.Config) *Server {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS([]string{cfg.CORSOrigin}))
	router.Use(middleware.RateLimit(cfg.RateLimitWindow, cfg.RateLimitMax))

	s := &Server{
		router:   router,
		cfg:      cfg,
		auth:     auth.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiresIn),
		verifier: auth.StaticVerifier{},
		registry: httpclient.NewRegistry(map[httpclient.ServiceName]string{
			httpclient.ServiceBusinessLogic:  cfg.BusinessLogicURL,
			httpclient.ServiceData:           cfg.DataServiceURL,
			httpclient.ServiceNotification:   cfg.NotificationServiceURL,
			httpclient.ServiceMonitoring:     cfg.MonitoringServiceURL,
			httpclient.ServiceTestAutomation: cfg.TestAutomationURL,
		}),
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証不要エンドポイント
	s.router.POST("/auth/login", s.handleLogin())
	s.router.GET("/health", s.handleHealth())

	// 認証必須エンドポイント
	authed := s.router.Group("")
	authed.Use(middleware.Authenticate(s.auth))
	{
		// ユーザー一覧はadminロールのみ
		admin := authed.Group("")
		admin.Use(middleware.RequireRoles(s.auth, "admin"))
		admin.GET("/users", s.handleListUsers())

		authed.POST("/orders", s.handleCreateOrder())
		authed.GET("/inventory", s.handleListInventory())
		authed.POST("/notifications", s.handleSendNotification())
	}

	// 未定義ルートは404エンベロープを返す
	s.router.NoRoute(func(c *gin.Context) {
		status, envelope := apperr.Normalize(apperr.ErrRouteNotFound)
		c.JSON(status, envelope)
	})
}
