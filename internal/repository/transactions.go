package repository

import (
	"context"
	"database/sql"
	"fmt"

	"backstage/internal/database"
	"backstage/internal/errors"
	"backstage/internal/models"
)

type TransactionRepository struct {
	q database.Querier
}

func NewTransactionRepository(q database.Querier) *TransactionRepository {
	return &TransactionRepository{q: q}
}

const transactionColumns = `id, reference, type, status, amount, platform_fee, net_amount,
		payer_id, recipient_id, related_booking_id, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.Reference,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.PlatformFee,
		&t.NetAmount,
		&t.PayerID,
		&t.RecipientID,
		&t.RelatedBookingID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Insert appends one immutable ledger entry. There is no update or delete;
// corrections are made with compensating entries.
func (r *TransactionRepository) Insert(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (reference, type, status, amount, platform_fee, net_amount,
		                          payer_id, recipient_id, related_booking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.q.QueryRowContext(ctx, query,
		tx.Reference,
		tx.Type,
		tx.Status,
		tx.Amount,
		tx.PlatformFee,
		tx.NetAmount,
		tx.PayerID,
		tx.RecipientID,
		tx.RelatedBookingID,
	).Scan(&tx.ID, &tx.CreatedAt)

	if uniqueViolation(err) == constraintTxReference {
		return &errors.DuplicateReferenceError{Reference: tx.Reference}
	}
	return err
}

func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`

	tx, err := scanTransaction(r.q.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, &errors.NotFoundError{Entity: "transaction", ID: 0}
	}
	return tx, err
}

// ListByWallet returns entries where the wallet's owner is payer or
// recipient, newest first.
func (r *TransactionRepository) ListByWallet(ctx context.Context, userID int64, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (payer_id = $1 OR recipient_id = $1)`
	args := []any{userID}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}
