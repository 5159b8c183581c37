// Package cache provides a Valkey-backed read cache for wallet snapshots.
// Wallets are the hottest read path and their balances change only through
// ledger commits, so a short TTL plus invalidation on commit keeps the cache
// honest. The cache is optional: a nil client degrades to plain reads.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backstage/internal/config"
	"backstage/internal/models"

	"github.com/redis/go-redis/v9"
)

type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyClient connects to Valkey using the given config. Returns nil
// without error when caching is disabled.
func NewValkeyClient(cfg config.CacheConfig) (*ValkeyClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{client: rdb, ttl: cfg.TTL}, nil
}

func walletKey(userID int64) string {
	return fmt.Sprintf("wallet:user:%d", userID)
}

// GetWallet returns the cached snapshot for a user, or an error on miss.
func (v *ValkeyClient) GetWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	if v == nil {
		return nil, redis.Nil
	}

	raw, err := v.client.Get(ctx, walletKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var wallet models.Wallet
	if err := json.Unmarshal([]byte(raw), &wallet); err != nil {
		return nil, fmt.Errorf("invalid wallet snapshot in cache: %w", err)
	}
	return &wallet, nil
}

// SetWallet stores a snapshot with the configured TTL. Best effort.
func (v *ValkeyClient) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	if v == nil {
		return nil
	}

	raw, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	return v.client.Set(ctx, walletKey(wallet.UserID), raw, v.ttl).Err()
}

// InvalidateWallets drops snapshots for the given users. Called after a
// ledger commit lands so stale balances never outlive the unit that changed
// them.
func (v *ValkeyClient) InvalidateWallets(ctx context.Context, userIDs ...int64) error {
	if v == nil || len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = walletKey(id)
	}
	return v.client.Del(ctx, keys...).Err()
}

func (v *ValkeyClient) Close() error {
	if v == nil {
		return nil
	}
	return v.client.Close()
}
