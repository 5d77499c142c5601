// Package gateway はAPI Gatewayサービスの内部実装を提供する。
//
// JWT認証・ロールベースの認可・リクエストルーティングを担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線として
// 機能する。検証済みリクエストを固定のダウンストリームサービス群へ転送し、
// ダウンストリームの失敗を統一エラーエンベロープに正規化して返す。
package gateway
