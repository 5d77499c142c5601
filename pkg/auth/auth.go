// Package auth はJWTトークンの発行・検証とロールベースの認可を提供する。
//
// 署名秘密鍵・発行者・対象者は起動時の設定から与えられ、以降は読み取り専用。
// 認証（authenticate）と認可（authorize）は独立した操作として提供する。
// ルートごとに「認証のみ必須」と「特定ロール必須」を使い分けるため。
package auth

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nao1215/cyclegate/pkg/apperr"
)

// Claims はJWTトークンのクレーム（ペイロード）を表す。
type Claims struct {
	jwt.RegisteredClaims
	// Roles は認可判定に使用するロール名の一覧。
	Roles []string `json:"roles"`
}

// Principal は認証済みリクエストの主体を表す。
// リクエストごとに生成し、レスポンス完了とともに破棄する。永続化しない。
type Principal struct {
	// Subject はユーザーの一意識別子。
	Subject string
	// Roles は主体が保持するロール名の集合。
	Roles []string
	// IssuedAt はトークンの発行日時。
	IssuedAt time.Time
	// ExpiresAt はトークンの有効期限。
	ExpiresAt time.Time
}

// HasAnyRole は主体がrequiredのいずれかのロールを保持するか判定する。
func (p *Principal) HasAnyRole(required []string) bool {
	for _, r := range p.Roles {
		if slices.Contains(required, r) {
			return true
		}
	}
	return false
}

// Authenticator はJWTトークンの発行と検証を行う。
// 全フィールドは起動時に設定され、以降は読み取り専用。
type Authenticator struct {
	// secret はHS256署名用の共有秘密鍵。
	secret string
	// issuer はトークンのiss値。
	issuer string
	// audience はトークンのaud値。
	audience string
	// expiresIn は発行時刻からの有効期間。
	expiresIn time.Duration
}

// NewAuthenticator は新しいAuthenticatorを生成する。
func NewAuthenticator(secret, issuer, audience string, expiresIn time.Duration) *Authenticator {
	return &Authenticator{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		expiresIn: expiresIn,
	}
}

// Issue は主体とロールを埋め込んだJWTトークンを発行する。
// 秘密鍵未設定の場合はapperr.ErrConfigurationを返す。
// この失敗はリクエスト単位であり、プロセスは停止させない。
func (a *Authenticator) Issue(subject string, roles []string) (string, error) {
	if a.secret == "" {
		return "", fmt.Errorf("署名秘密鍵が未設定: %w", apperr.ErrConfiguration)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(a.secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Authenticate はAuthorizationヘッダーの値を検証しPrincipalを返す。
// Bearerトークンが存在しない場合はapperr.ErrMissingCredentialを、
// 署名・発行者・対象者・アルゴリズム・有効期限のいずれかの検証に
// 失敗した場合はapperr.ErrInvalidCredentialを返す。
func (a *Authenticator) Authenticate(rawHeader string) (*Principal, error) {
	tokenString, ok := bearerToken(rawHeader)
	if !ok {
		return nil, fmt.Errorf("Bearerトークンが指定されていません: %w", apperr.ErrMissingCredential)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(a.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("トークン検証に失敗 (%v): %w", err, apperr.ErrInvalidCredential)
	}

	p := &Principal{
		Subject: claims.Subject,
		Roles:   claims.Roles,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Authorize は主体が要求ロールを満たすか判定する。
// requiredRolesが空の場合、認証済みであれば許可する。
// 主体が存在しない場合はErrMissingCredential（401）を返し、
// ロール不足のErrForbidden（403）とは区別する。
func (a *Authenticator) Authorize(p *Principal, requiredRoles []string) error {
	if p == nil {
		return fmt.Errorf("認証されていません: %w", apperr.ErrMissingCredential)
	}
	if len(requiredRoles) == 0 {
		return nil
	}
	if p.HasAnyRole(requiredRoles) {
		return nil
	}
	return fmt.Errorf("ロールが不足 (要求: %v): %w", requiredRoles, apperr.ErrForbidden)
}

// bearerToken はAuthorizationヘッダーの値からBearerトークンを取り出す。
// スキーム名は大文字小文字を区別せず、空白区切りでちょうど2要素であること。
func bearerToken(header string) (string, bool) {
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", false
	}
	return fields[1], true
}
