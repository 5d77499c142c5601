// Package httpclient はダウンストリームサービスへのHTTP通信を行うクライアントを提供する。
//
// サービスごとにベースURLと固定タイムアウトを持つクライアントを起動時に生成し、
// Registryとして読み取り専用で共有する。呼び出しの失敗はタイムアウト・接続失敗・
// HTTPエラーに分類した結果型として返し、例外的な伝播は行わない。
// この層ではリトライを行わない。リトライ方針は呼び出し側の責務。
package httpclient
