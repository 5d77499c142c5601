package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// defaultTimeout はダウンストリーム呼び出しの上限時間。
const defaultTimeout = 15 * time.Second

// Kind はダウンストリーム呼び出し失敗の分類。
type Kind int

const (
	// KindTimeout はタイムアウトによる失敗。
	KindTimeout Kind = iota + 1
	// KindConnection はサービスに到達できなかった失敗。
	KindConnection
	// KindHTTP はダウンストリームが2xx以外を返した失敗。
	KindHTTP
)

// Error はダウンストリーム呼び出しの失敗を表す。
// KindHTTPの場合、StatusとBodyにダウンストリームの応答をそのまま保持する。
// 呼び出し側はこれを参照してステータスの対応付けを行う。
type Error struct {
	// Kind は失敗の分類。
	Kind Kind
	// Status はダウンストリームが報告したHTTPステータスコード。KindHTTPのみ有効。
	Status int
	// Body はダウンストリームが返したレスポンスボディ。KindHTTPのみ有効。
	Body []byte
	// err は元のエラー。
	err error
}

// Error はエラーメッセージを返す。
func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("ダウンストリーム呼び出しがタイムアウト: %v", e.err)
	case KindConnection:
		return fmt.Sprintf("ダウンストリームへの接続に失敗: %v", e.err)
	default:
		return fmt.Sprintf("ダウンストリームがHTTPエラーを返却: status=%d, body=%s", e.Status, e.Body)
	}
}

// Unwrap は元のエラーを返す。
func (e *Error) Unwrap() error { return e.err }

// Response はダウンストリームからの成功（2xx）レスポンス。
type Response struct {
	// Status はHTTPステータスコード。
	Status int
	// Body はレスポンスボディ。
	Body []byte
}

// Client は特定のダウンストリームサービスへのHTTPクライアント。
// ベースURLと固定タイムアウトを持ち、起動時に生成して読み取り専用で共有する。
// コネクションプーリングは内部のhttp.Clientに委ねる。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
}

// New は新しいダウンストリーム用HTTPクライアントを生成する。
// baseURLには接続先サービスのベースURL（例: "http://business-logic:4000"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
	}
}

// Do は指定メソッド・パスでJSONリクエストを送信する。
// 2xxレスポンスはResponseとして返す。それ以外の失敗は*Errorとして返し、
// タイムアウト・接続失敗・HTTPエラーを区別する。リトライは行わない。
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, err: err}
		}
		return nil, &Error{Kind: KindConnection, err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindConnection, err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindHTTP, Status: resp.StatusCode, Body: respBody}
	}
	return &Response{Status: resp.StatusCode, Body: respBody}, nil
}

// isTimeout はエラーがタイムアウト起因か判定する。
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
