package repository

import (
	"context"
	"database/sql"
	"errors"
	"storefront-service/internal/entity"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db}
}

// TransitionOutcome classifies what a guarded status update did.
type TransitionOutcome int

const (
	// TransitionApplied: the payment moved from pending to the new status.
	TransitionApplied TransitionOutcome = iota
	// TransitionRepeated: the payment was already in the requested status;
	// a retried callback, accepted as a no-op.
	TransitionRepeated
	// TransitionRefused: the payment is in a different terminal status;
	// the current status wins.
	TransitionRefused
)

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *entity.Payment) (*entity.Payment, error) {
	query := `INSERT INTO payments (order_id, method, status, transaction_id) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, payment.OrderID, payment.Method, payment.Status, payment.TransactionID)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	payment.ID = int(id)
	return payment, nil
}

func (r *PaymentRepository) GetPaymentByOrderID(ctx context.Context, orderID int) (*entity.Payment, error) {
	query := `SELECT id, order_id, method, status, transaction_id, created_at, updated_at FROM payments WHERE order_id = ?`

	payment := &entity.Payment{}
	var tranID sql.NullString
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&payment.ID, &payment.OrderID, &payment.Method, &payment.Status, &tranID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	payment.TransactionID = tranID.String

	return payment, nil
}

// TransitionStatus moves a payment out of pending with a guarded update,
// so concurrent callbacks for the same order converge on one terminal
// status. A callback for an order with no payment row records one with the
// reported status.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, orderID int, tranID, newStatus string) (TransitionOutcome, error) {
	query := `UPDATE payments SET status = ?, transaction_id = ? WHERE order_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, newStatus, tranID, orderID, entity.PaymentStatusPending)
	if err != nil {
		return TransitionRefused, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return TransitionRefused, err
	}
	if affected > 0 {
		return TransitionApplied, nil
	}

	// Nothing pending: either no payment row, a retry of the same
	// outcome, or a conflicting terminal status.
	current, err := r.GetPaymentByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_, err = r.CreatePayment(ctx, &entity.Payment{
				OrderID:       orderID,
				Method:        "bkash",
				Status:        newStatus,
				TransactionID: tranID,
			})
			if err != nil {
				return TransitionRefused, err
			}
			return TransitionApplied, nil
		}
		return TransitionRefused, err
	}

	if current.Status == newStatus {
		return TransitionRepeated, nil
	}
	return TransitionRefused, nil
}
