package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock) {
	t.Helper()
	t.Setenv("ENV", "test")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	svc := NewOrderService(*orderRepo, *paymentRepo, "http://localhost:8081", nil, nil)
	return svc, mock
}

func orderColumns() []string {
	return []string{"id", "user_id", "full_name", "phone", "address_line", "city", "area", "postal_code", "country", "status", "created_at", "updated_at"}
}

func orderRow(rows *sqlmock.Rows, id, userID int, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(id, userID, "Rahim Uddin", "01711111111", "House 7, Road 3", "Dhaka", "Banani", "1213", "Bangladesh", entity.OrderStatusPlaced, createdAt, createdAt)
}

func emptyItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "unit_price", "quantity"})
}

func TestGetOrderStatus_Owner(t *testing.T) {
	svc, mock := newOrderService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? AND user_id = ?")).
		WithArgs(42, 7).
		WillReturnRows(orderRow(sqlmock.NewRows(orderColumns()), 42, 7, testTime))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = ?")).
		WithArgs(42).
		WillReturnRows(emptyItemRows().AddRow(1, 42, 5, "Silver Ring", 1200.0, 2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE order_id = ?")).
		WithArgs(42).
		WillReturnRows(paymentRows(42, entity.PaymentStatusSuccess, "T-1"))

	status, err := svc.GetOrderStatus(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, 42, status.Order.ID)
	require.Len(t, status.Order.Items, 1)
	assert.Equal(t, "Silver Ring", status.Order.Items[0].ProductName)
	require.NotNil(t, status.Payment)
	assert.Equal(t, entity.PaymentStatusSuccess, status.Payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderStatus_OtherUserLooksMissing(t *testing.T) {
	svc, mock := newOrderService(t)

	// user 8 does not own order 42: the scoped query returns no rows
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? AND user_id = ?")).
		WithArgs(42, 8).
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	_, err := svc.GetOrderStatus(context.Background(), 42, 8)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestGetOrderStatus_UnknownOrder(t *testing.T) {
	svc, mock := newOrderService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? AND user_id = ?")).
		WithArgs(99999, 7).
		WillReturnRows(sqlmock.NewRows(orderColumns()))

	_, err := svc.GetOrderStatus(context.Background(), 99999, 7)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestGetOrderStatus_NoSession(t *testing.T) {
	svc, _ := newOrderService(t)

	_, err := svc.GetOrderStatus(context.Background(), 42, 0)
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestGetOrderStatus_PaymentNotYetRecorded(t *testing.T) {
	svc, mock := newOrderService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? AND user_id = ?")).
		WithArgs(42, 7).
		WillReturnRows(orderRow(sqlmock.NewRows(orderColumns()), 42, 7, testTime))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = ?")).
		WithArgs(42).
		WillReturnRows(emptyItemRows())
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE order_id = ?")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "method", "status", "transaction_id", "created_at", "updated_at"}))

	status, err := svc.GetOrderStatus(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Nil(t, status.Payment)
}

func TestGetOrderStatus_StorageFailure(t *testing.T) {
	svc, mock := newOrderService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ? AND user_id = ?")).
		WillReturnError(assert.AnError)

	_, err := svc.GetOrderStatus(context.Background(), 42, 7)
	assert.ErrorIs(t, err, entity.ErrStorage)
	assert.NotErrorIs(t, err, entity.ErrNotFound)
}

func TestGetOrdersForUser_NewestFirst(t *testing.T) {
	svc, mock := newOrderService(t)

	rows := sqlmock.NewRows(orderColumns())
	orderRow(rows, 43, 7, testTime.Add(time.Hour))
	orderRow(rows, 42, 7, testTime)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC")).
		WithArgs(7).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = ?")).
		WithArgs(43).
		WillReturnRows(emptyItemRows().AddRow(2, 43, 6, "Gold Chain", 5400.0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id = ?")).
		WithArgs(42).
		WillReturnRows(emptyItemRows().AddRow(1, 42, 5, "Silver Ring", 1200.0, 2))

	orders, err := svc.GetOrdersForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 43, orders[0].ID)
	assert.Equal(t, 42, orders[1].ID)
	assert.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))
	assert.Equal(t, "Gold Chain", orders[0].Items[0].ProductName)
}

func TestGetOrdersForUser_NoSession(t *testing.T) {
	svc, _ := newOrderService(t)

	orders, err := svc.GetOrdersForUser(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestGetOrdersForUser_StorageFailure(t *testing.T) {
	svc, mock := newOrderService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE user_id = ?")).
		WillReturnError(assert.AnError)

	_, err := svc.GetOrdersForUser(context.Background(), 7)
	assert.ErrorIs(t, err, entity.ErrStorage)
}

func TestCreateOrder_SnapshotsProductsAndCreatesPendingPayment(t *testing.T) {
	svc, mock := newOrderService(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(7, "Rahim Uddin", "01711111111", "House 7, Road 3", "Dhaka", "Banani", "1213", "Bangladesh", entity.OrderStatusPlaced).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(int64(42), 5, "test-product", 100.0, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(42, "bkash", entity.PaymentStatusPending, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := 7
	order := &entity.Order{
		UserID:      &userID,
		FullName:    "Rahim Uddin",
		Phone:       "01711111111",
		AddressLine: "House 7, Road 3",
		City:        "Dhaka",
		Area:        "Banani",
		PostalCode:  "1213",
		Country:     "Bangladesh",
		Items:       []entity.OrderItem{{ProductID: 5, Quantity: 2}},
	}

	created, payment, err := svc.CreateOrder(context.Background(), order, "", "key-1")
	require.NoError(t, err)
	assert.Equal(t, 42, created.ID)
	assert.Equal(t, "test-product", created.Items[0].ProductName)
	assert.Equal(t, 100.0, created.Items[0].UnitPrice)
	assert.Equal(t, entity.PaymentStatusPending, payment.Status)
	assert.Equal(t, 42, payment.OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_RejectsEmptyItems(t *testing.T) {
	svc, _ := newOrderService(t)

	_, _, err := svc.CreateOrder(context.Background(), &entity.Order{}, "", "key-2")
	assert.Error(t, err)
}
