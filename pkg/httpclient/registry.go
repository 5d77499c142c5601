package httpclient

import (
	"context"
	"fmt"
)

// ServiceName はダウンストリームサービスの論理名。
type ServiceName string

// Gatewayが転送先とする固定のダウンストリームサービス群。
const (
	// ServiceBusinessLogic は業務ロジックサービス。
	ServiceBusinessLogic ServiceName = "business-logic"
	// ServiceData はデータサービス。
	ServiceData ServiceName = "data"
	// ServiceNotification は通知サービス。
	ServiceNotification ServiceName = "notification"
	// ServiceMonitoring は監視サービス。
	ServiceMonitoring ServiceName = "monitoring"
	// ServiceTestAutomation はテスト自動化サービス。
	ServiceTestAutomation ServiceName = "test-automation"
)

// Registry は論理サービス名とHTTPクライアントの対応を保持する。
// 起動時に設定から構築され、以降は読み取り専用。実行時に変更しない。
type Registry struct {
	// clients はサービス名ごとのクライアント。
	clients map[ServiceName]*Client
}

// NewRegistry はサービス名とベースURLの対応からRegistryを生成する。
func NewRegistry(baseURLs map[ServiceName]string) *Registry {
	clients := make(map[ServiceName]*Client, len(baseURLs))
	for name, baseURL := range baseURLs {
		clients[name] = New(baseURL)
	}
	return &Registry{clients: clients}
}

// Call は指定サービスにリクエストを送信する。
// 未登録のサービス名が指定された場合はエラーを返す。
func (r *Registry) Call(ctx context.Context, service ServiceName, method, path string, body any) (*Response, error) {
	client, ok := r.clients[service]
	if !ok {
		return nil, fmt.Errorf("未登録のダウンストリームサービス: %s", service)
	}
	return client.Do(ctx, method, path, body)
}
