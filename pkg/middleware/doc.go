// Package middleware はGatewayのリクエストパイプラインを構成するGinミドルウェアを提供する。
//
// 相関ID割り当て、アクセスログ、パニックリカバリ、CORS、レート制限、
// JWT認証、ロール認可の各ステージを含む。ステージは登録順に実行され、
// 失敗したステージは後続を実行せずに即座にエラーエンベロープを返す。
package middleware
