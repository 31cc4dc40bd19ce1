package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/uploadhub/internal/service"
)

// Token issues signed bearer tokens for the open API. The endpoint is
// itself unauthenticated: knowing a valid clientId is the only
// precondition, and the returned token is only usable with the matching
// credential's secret on the verifying side.
type Token struct {
	keys *service.APIKeyService
	log  *slog.Logger
}

// NewToken creates the token issuance handler.
func NewToken(keys *service.APIKeyService, log *slog.Logger) *Token {
	return &Token{keys: keys, log: log}
}

func (h *Token) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID string `json:"clientId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(r, w, h.log, err)
		return
	}

	signed, ttl, err := h.keys.IssueToken(r.Context(), req.ClientID)
	if err != nil {
		renderError(r, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}{Token: signed, ExpiresIn: int64(ttl.Seconds())})
}
