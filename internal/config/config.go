// Package config はGatewayサービスの環境変数ベースの設定を提供する。
//
// 設定は起動時に一度だけ構築し、各コンポーネントのコンストラクタに
// 明示的に渡す。グローバルな可変状態としては扱わない。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config はGatewayサービスの設定。起動後は読み取り専用。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `koanf:"port"`
	// JWTSecret はJWT署名用の共有秘密鍵。デフォルト値は持たない。
	JWTSecret string `koanf:"jwt_secret"`
	// JWTIssuer はトークンのiss値。
	JWTIssuer string `koanf:"jwt_issuer"`
	// JWTAudience はトークンのaud値。
	JWTAudience string `koanf:"jwt_audience"`
	// JWTExpiresIn はトークンの有効期間。
	JWTExpiresIn time.Duration `koanf:"jwt_expires_in"`
	// BusinessLogicURL は業務ロジックサービスのベースURL。
	BusinessLogicURL string `koanf:"business_logic_url"`
	// DataServiceURL はデータサービスのベースURL。
	DataServiceURL string `koanf:"data_service_url"`
	// NotificationServiceURL は通知サービスのベースURL。
	NotificationServiceURL string `koanf:"notification_service_url"`
	// MonitoringServiceURL は監視サービスのベースURL。
	MonitoringServiceURL string `koanf:"monitoring_service_url"`
	// TestAutomationURL はテスト自動化サービスのベースURL。
	TestAutomationURL string `koanf:"test_automation_service_url"`
	// RateLimitWindow はレート制限の時間窓。
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	// RateLimitMax は時間窓あたりの最大リクエスト数。
	RateLimitMax int `koanf:"rate_limit_max"`
	// CORSOrigin はCORSで許可するオリジン。"*" は全オリジンを許可する。
	CORSOrigin string `koanf:"cors_origin"`
}

// defaults は未設定の環境変数に適用するデフォルト値。
// JWT_SECRETは意図的にデフォルトを持たない。未設定のまま運用した場合、
// トークン発行はリクエスト単位のCONFIG_ERRORになる。
var defaults = map[string]string{
	"port":                        "3000",
	"jwt_issuer":                  "cyclestore-api-gateway",
	"jwt_audience":                "cyclestore-clients",
	"jwt_expires_in":              "1h",
	"business_logic_url":          "http://business-logic:4000",
	"data_service_url":            "http://data-service:5000",
	"notification_service_url":    "http://notification-service:6000",
	"monitoring_service_url":      "http://monitoring-service:7000",
	"test_automation_service_url": "http://test-automation:8000",
	"rate_limit_window":           "1m",
	"rate_limit_max":              "100",
	"cors_origin":                 "*",
}

// Load は環境変数から設定を読み込む。
// 未設定または空の項目にはデフォルト値を適用する。
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}

	for key, value := range defaults {
		if s, ok := k.Get(key).(string); !k.Exists(key) || (ok && s == "") {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("デフォルト値の適用に失敗: %w", err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("設定のデコードに失敗: %w", err)
	}
	return &cfg, nil
}
