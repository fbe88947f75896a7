package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tidwall/gjson"

	"github.com/m-mizutani/datamart/pkg/domain/interfaces"
	"github.com/m-mizutani/datamart/pkg/domain/model"
)

const (
	signatureHeader = "X-Registry-Signature"
	deliveryHeader  = "X-Registry-Delivery"

	maxWebhookBody = 1 << 20
)

// WebhookHandler handles dataset registry webhooks
type WebhookHandler struct {
	secret    string
	webhookUC interfaces.WebhookUseCase
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		webhookUC: webhookUC,
	}
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Read payload
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "failed to read request body", goerr.T(model.ErrTagInvalidInput)))
		return
	}
	defer r.Body.Close()

	// Verify signature
	if !h.verifySignature(body, r.Header.Get(signatureHeader)) {
		writeError(w, r, goerr.New("invalid signature", goerr.T(model.ErrTagUnauthorized)))
		return
	}

	if !gjson.ValidBytes(body) {
		writeError(w, r, goerr.New("invalid JSON payload", goerr.T(model.ErrTagInvalidInput)))
		return
	}

	deliveryID := r.Header.Get(deliveryHeader)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}

	fields := gjson.GetManyBytes(body, "event.action", "event.scope", "repo.type", "repo.name")
	event := &model.RegistryEvent{
		ID:         deliveryID,
		Action:     model.RegistryAction(fields[0].String()),
		Scope:      fields[1].String(),
		RepoType:   fields[2].String(),
		RepoName:   fields[3].String(),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	// Process event via UseCase
	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		writeError(w, r, err)
		return
	}

	logger.Debug("Webhook accepted", "delivery_id", deliveryID)
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "success",
	})
}

// verifySignature verifies the webhook signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" || h.secret == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
