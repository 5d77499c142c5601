// Package apperr はGatewayの統一エラーコントラクトを提供する。
//
// 全てのエラーレスポンスは単一のエンベロープ形式に正規化され、
// クライアントには常に完全な形で返される。内部エラーの詳細は
// クライアントには漏らさず、サーバー側のログにのみ記録する。
package apperr

import (
	"errors"
	"net/http"
)

// Envelope はクライアントへ返す統一エラーレスポンス。
// 常に全フィールドを設定してから書き出す。部分構築はしない。
type Envelope struct {
	// ErrorCode はエラー種別を表す列挙文字列。
	ErrorCode string `json:"errorCode"`
	// Message は人間向けのエラー説明。
	Message string `json:"message"`
	// Details は診断用の追加情報。省略可能。
	Details any `json:"details,omitempty"`
}

// エラー分類のセンチネル値。errors.Isで判定する。
var (
	// ErrMissingCredential は認証情報が存在しないことを表す。
	ErrMissingCredential = errors.New("認証情報がありません")
	// ErrInvalidCredential は認証情報の検証に失敗したことを表す。
	ErrInvalidCredential = errors.New("認証情報が無効です")
	// ErrForbidden は認証済みだが権限が不足していることを表す。
	ErrForbidden = errors.New("権限がありません")
	// ErrRouteNotFound は未定義ルートへのアクセスを表す。
	ErrRouteNotFound = errors.New("ルートが見つかりません")
	// ErrConfiguration はサーバー設定の不備を表す。
	// リクエスト単位で失敗させ、プロセスは停止しない。
	ErrConfiguration = errors.New("サーバー設定が不正です")
)

// ValidationError はリクエストボディの検証失敗を表すエラー。
type ValidationError struct {
	// Detail は検証失敗の内容。エンベロープのDetailsとして返される。
	Detail string
}

// Error はエラーメッセージを返す。
func (e *ValidationError) Error() string {
	return "入力検証に失敗: " + e.Detail
}

// Normalize は任意のエラーをHTTPステータスと統一エラーエンベロープに変換する。
// 分類できないエラーは内部詳細を漏らさない汎用の500として扱う。
// 呼び出し側は500を返す前に元のエラーを相関IDとともにログへ出力すること。
func Normalize(err error) (int, Envelope) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, Envelope{
			ErrorCode: "VALIDATION_ERROR",
			Message:   "Input validation failed",
			Details:   ve.Detail,
		}
	case errors.Is(err, ErrMissingCredential):
		return http.StatusUnauthorized, Envelope{
			ErrorCode: "UNAUTHORIZED",
			Message:   "Missing bearer token",
		}
	case errors.Is(err, ErrInvalidCredential):
		return http.StatusUnauthorized, Envelope{
			ErrorCode: "UNAUTHORIZED",
			Message:   "Invalid or expired token",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, Envelope{
			ErrorCode: "FORBIDDEN",
			Message:   "Insufficient privileges",
		}
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound, Envelope{
			ErrorCode: "NOT_FOUND",
			Message:   "Route not found",
		}
	case errors.Is(err, ErrConfiguration):
		return http.StatusInternalServerError, Envelope{
			ErrorCode: "CONFIG_ERROR",
			Message:   "Server configuration error",
		}
	default:
		return http.StatusInternalServerError, Envelope{
			ErrorCode: "INTERNAL_ERROR",
			Message:   "Internal Server Error",
		}
	}
}
