package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"backstage/internal/models"

	"github.com/gin-gonic/gin"
)

// AdjustWallet - POST /api/admin/wallets/adjust
// Admin-only manual credit or debit. The adjustment, its ledger entry and the
// audit record land in one atomic unit; the service rejects non-admin actors.
func (h *Handlers) AdjustWallet(c *gin.Context) {
	var req models.AdjustWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.services.Admin.Adjust(c.Request.Context(), actor(c), &req)
	if err != nil {
		slog.Error("Wallet adjustment failed",
			"error", err,
			"wallet_id", req.WalletID,
			"type", req.Type)
		writeError(c, err)
		return
	}

	if h.valkeyClient != nil {
		if entry.RecipientID != nil {
			_ = h.valkeyClient.InvalidateWallets(c.Request.Context(), *entry.RecipientID)
		}
		if entry.PayerID != nil {
			_ = h.valkeyClient.InvalidateWallets(c.Request.Context(), *entry.PayerID)
		}
	}

	c.JSON(http.StatusCreated, entry)
}

// ListAuditLog - GET /api/admin/audit
func (h *Handlers) ListAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := h.services.Admin.ListAuditEntries(c.Request.Context(), actor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	if entries == nil {
		entries = []models.AuditLogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
