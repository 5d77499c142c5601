package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/cyclegate/pkg/apperr"
	"github.com/nao1215/cyclegate/pkg/httpclient"
	"github.com/nao1215/cyclegate/pkg/middleware"
)

// loginRequest は POST /auth/login のリクエストボディ。
type loginRequest struct {
	// Username はログインユーザー名。
	Username string `json:"username" binding:"required"`
	// Password はパスワード。検証はCredentialVerifierに委譲する。
	Password string `json:"password" binding:"required"`
}

// createOrderRequest は POST /orders のリクエストボディ。
type createOrderRequest struct {
	// CustomerID は注文者の顧客ID。
	CustomerID string `json:"customerId" binding:"required"`
	// Items は注文明細。1件以上必須。
	Items []any `json:"items" binding:"required,min=1"`
}

// sendNotificationRequest は POST /notifications のリクエストボディ。
type sendNotificationRequest struct {
	// Recipient は通知先のユーザーID。
	Recipient string `json:"recipient" binding:"required"`
	// Message は通知メッセージ本文。
	Message string `json:"message" binding:"required"`
	// Type は通知チャネル。emailまたはsmsのみ。
	Type string `json:"type" binding:"required,oneof=email sms"`
}

// notificationPayload は通知サービスが要求するリクエストスキーマ。
// Gatewayの公開スキーマから固定の対応付けで変換する。
type notificationPayload struct {
	// Type は通知チャネル。
	Type string `json:"type"`
	// Recipients は通知先の一覧。
	Recipients []notificationRecipient `json:"recipients"`
	// TemplateID は通知テンプレートの識別子。
	TemplateID string `json:"templateId"`
	// Parameters はテンプレートに埋め込むパラメータ。
	Parameters notificationParameters `json:"parameters"`
}

// notificationRecipient は通知サービスの宛先表現。
type notificationRecipient struct {
	// RecipientID は宛先の識別子。
	RecipientID string `json:"recipientId"`
	// Type は宛先の種別。Gatewayからは常に "user"。
	Type string `json:"type"`
}

// notificationParameters は通知テンプレートのパラメータ。
type notificationParameters struct {
	// Message はメッセージ本文。
	Message string `json:"message"`
}

// handleLogin はログインしてJWTトークンを発行するハンドラを返す。
// 資格情報の検証はCredentialVerifierに委譲する。
// 署名秘密鍵が未設定の場合は500のCONFIG_ERRORを返す（プロセスは停止しない）。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, &apperr.ValidationError{Detail: err.Error()})
			return
		}

		roles, err := s.verifier.Verify(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			s.respondError(c, fmt.Errorf("資格情報の検証に失敗: %w", apperr.ErrInvalidCredential))
			return
		}

		token, err := s.auth.Issue(req.Username, roles)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// handleHealth は死活監視用の固定レスポンスを返すハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// handleListUsers は顧客一覧を業務ロジックサービスから取得するハンドラを返す。
// adminロールの検証はパイプラインのRequireRolesステージで完了している。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.registry.Call(c.Request.Context(), httpclient.ServiceBusinessLogic, http.MethodGet, "/customers", nil)
		if err != nil {
			s.respondDownstreamError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", resp.Body)
	}
}

// handleCreateOrder は注文作成を業務ロジックサービスへ転送するハンドラを返す。
// ダウンストリームの成功時は201で応答する。
func (s *Server) handleCreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, &apperr.ValidationError{Detail: err.Error()})
			return
		}

		resp, err := s.registry.Call(c.Request.Context(), httpclient.ServiceBusinessLogic, http.MethodPost, "/sales", req)
		if err != nil {
			s.respondDownstreamError(c, err)
			return
		}
		c.Data(http.StatusCreated, "application/json", resp.Body)
	}
}

// handleListInventory は在庫一覧を業務ロジックサービスから取得するハンドラを返す。
func (s *Server) handleListInventory() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.registry.Call(c.Request.Context(), httpclient.ServiceBusinessLogic, http.MethodGet, "/inventory", nil)
		if err != nil {
			s.respondDownstreamError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", resp.Body)
	}
}

// handleSendNotification は通知要求を通知サービスのスキーマに変換して転送するハンドラを返す。
// 変換は固定の対応付けであり、設定による変更はできない。
func (s *Server) handleSendNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendNotificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, &apperr.ValidationError{Detail: err.Error()})
			return
		}

		payload := notificationPayload{
			Type:       req.Type,
			Recipients: []notificationRecipient{{RecipientID: req.Recipient, Type: "user"}},
			TemplateID: "direct-message",
			Parameters: notificationParameters{Message: req.Message},
		}

		resp, err := s.registry.Call(c.Request.Context(), httpclient.ServiceNotification, http.MethodPost, "/notifications", payload)
		if err != nil {
			s.respondDownstreamError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", resp.Body)
	}
}

// respondError はエラーを正規化してレスポンスを返す。
// 500系は内部詳細をクライアントに返さず、相関IDとともにログへ出力する。
func (s *Server) respondError(c *gin.Context, err error) {
	status, envelope := apperr.Normalize(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] 内部エラー: %v", middleware.GetRequestID(c), err)
	}
	c.JSON(status, envelope)
}

// respondDownstreamError はダウンストリーム呼び出しの失敗をクライアント応答に変換する。
// ダウンストリームが報告した400と401はそのまま対応するエラーコードに対応付け、
// それ以外のステータスやタイムアウト・接続失敗は想定外の失敗として
// 汎用の500に正規化する。握り潰しはしない。
func (s *Server) respondDownstreamError(c *gin.Context, err error) {
	var downstreamErr *httpclient.Error
	if errors.As(err, &downstreamErr) && downstreamErr.Kind == httpclient.KindHTTP {
		switch downstreamErr.Status {
		case http.StatusBadRequest:
			c.JSON(http.StatusBadRequest, apperr.Envelope{
				ErrorCode: "INVALID_REQUEST",
				Message:   "Invalid request",
				Details:   downstreamDetails(downstreamErr.Body),
			})
			return
		case http.StatusUnauthorized:
			c.JSON(http.StatusUnauthorized, apperr.Envelope{
				ErrorCode: "UNAUTHORIZED",
				Message:   "Unauthorized",
			})
			return
		}
	}
	s.respondError(c, err)
}

// downstreamDetails はダウンストリームのレスポンスボディを診断情報に変換する。
// JSONとして妥当な場合はそのまま埋め込み、そうでない場合は文字列として扱う。
func downstreamDetails(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
