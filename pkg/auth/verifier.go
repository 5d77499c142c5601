package auth

import "context"

// CredentialVerifier はログイン時の資格情報を検証し、付与するロールを返す。
// 本番環境では外部IdPやディレクトリサービスと連携する実装に差し替える。
type CredentialVerifier interface {
	// Verify はユーザー名とパスワードを検証し、付与するロールの一覧を返す。
	Verify(ctx context.Context, username, password string) ([]string, error)
}

// StaticVerifier は開発・デモ用のCredentialVerifier実装。
// 資格情報の照合は行わず、ユーザー名のみからロールを決定する。
type StaticVerifier struct{}

// Verify はユーザー名が "admin" の場合にadminロールを、
// それ以外の場合にuserロールを付与する。パスワードは検証しない。
func (StaticVerifier) Verify(_ context.Context, username, _ string) ([]string, error) {
	if username == "admin" {
		return []string{"admin"}, nil
	}
	return []string{"user"}, nil
}
