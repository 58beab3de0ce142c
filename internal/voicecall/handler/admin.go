package handler

import (
	"errors"
	"net/http"

	"clinic-server/internal/apierrors"
	"clinic-server/internal/store"

	"github.com/gin-gonic/gin"
)

type customPromptRequest struct {
	Prompt string `json:"prompt" binding:"max=4000"`
}

// HandleGetCustomPrompt returns the clinic's prompt customization.
func (h *Handler) HandleGetCustomPrompt(c *gin.Context) {
	prompt, err := h.store.GetCustomPrompt(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

// HandleSetCustomPrompt stores the prompt customization appended to the base
// instructions on every new call.
func (h *Handler) HandleSetCustomPrompt(c *gin.Context) {
	var req customPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}
	if err := h.store.SetClinicSetting(c.Request.Context(), store.SettingCustomPrompt, req.Prompt); err != nil {
		apierrors.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

type serviceTokensRequest struct {
	Token  string `json:"token" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

// HandleSetServiceTokens rotates the OSCAR OAuth1 service tokens. New tokens
// take effect on the next clinic API request.
func (h *Handler) HandleSetServiceTokens(c *gin.Context) {
	var req serviceTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationError(c, err)
		return
	}
	if err := h.store.SaveServiceTokens(c.Request.Context(), req.Token, req.Secret); err != nil {
		apierrors.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// HandleListCalls returns recent call logs, newest first.
func (h *Handler) HandleListCalls(c *gin.Context) {
	logs, err := h.store.GetRecentCallLogs(c.Request.Context(), 50)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"calls": []store.CallLog{}})
			return
		}
		apierrors.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": logs, "active": h.registry.Active()})
}
