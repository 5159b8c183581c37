package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"backstage/internal/models"

	"github.com/gin-gonic/gin"
)

// GetMyWallet - GET /api/wallets/me
// Serves from the snapshot cache when possible; balances change only through
// ledger commits, which invalidate the snapshot.
func (h *Handlers) GetMyWallet(c *gin.Context) {
	ctx := c.Request.Context()
	userID := actor(c).ID

	if h.valkeyClient != nil {
		if wallet, err := h.valkeyClient.GetWallet(ctx, userID); err == nil {
			slog.Debug("Wallet cache hit", "user_id", userID)
			c.JSON(http.StatusOK, wallet)
			return
		}
	}

	wallet, err := h.services.Wallets.GetByUserID(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.valkeyClient != nil {
		if err := h.valkeyClient.SetWallet(ctx, wallet); err != nil {
			slog.Warn("Failed to cache wallet snapshot", "error", err, "user_id", userID)
		}
	}

	c.JSON(http.StatusOK, wallet)
}

// ListWalletTransactions - GET /api/wallets/:id/transactions
// Supports ?type=, ?status= and ?limit= filters. Only the wallet owner or an
// admin may read the ledger.
func (h *Handlers) ListWalletTransactions(c *gin.Context) {
	walletID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wallet ID"})
		return
	}

	var filter models.TransactionFilter
	if raw := c.Query("type"); raw != "" {
		t := models.TransactionType(raw)
		filter.Type = &t
	}
	if raw := c.Query("status"); raw != "" {
		s := models.TransactionStatus(raw)
		filter.Status = &s
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := h.services.Wallets.ListTransactions(c.Request.Context(), actor(c), walletID, filter)
	if err != nil {
		slog.Error("Failed to list transactions", "error", err, "wallet_id", walletID)
		writeError(c, err)
		return
	}

	if entries == nil {
		entries = []models.Transaction{}
	}
	c.JSON(http.StatusOK, entries)
}
