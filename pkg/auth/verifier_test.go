package auth

import (
	"context"
	"testing"
)

// TestStaticVerifier はデモ用の資格情報検証を検証する。
func TestStaticVerifier(t *testing.T) {
	t.Parallel()

	t.Run("ユーザー名adminにはadminロールを付与すること", func(t *testing.T) {
		t.Parallel()

		roles, err := StaticVerifier{}.Verify(context.Background(), "admin", "x")
		if err != nil {
			t.Fatalf("Verify()でエラーが発生: %v", err)
		}
		if len(roles) != 1 || roles[0] != "admin" {
			t.Errorf("roles = %v, want [admin]", roles)
		}
	})

	t.Run("admin以外のユーザー名にはuserロールを付与すること", func(t *testing.T) {
		t.Parallel()

		roles, err := StaticVerifier{}.Verify(context.Background(), "alice", "secret")
		if err != nil {
			t.Fatalf("Verify()でエラーが発生: %v", err)
		}
		if len(roles) != 1 || roles[0] != "user" {
			t.Errorf("roles = %v, want [user]", roles)
		}
	})
}
