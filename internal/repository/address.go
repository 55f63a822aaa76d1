package repository

import (
	"context"
	"database/sql"
	"storefront-service/internal/entity"
)

type AddressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) *AddressRepository {
	return &AddressRepository{db}
}

// GetFirstByUserID returns the user's lowest-id address, the documented
// tiebreak when several exist.
func (r *AddressRepository) GetFirstByUserID(ctx context.Context, userID int) (*entity.CustomerAddress, error) {
	query := `SELECT id, user_id, full_name, phone, address_line, city, area, postal_code, country, created_at FROM customer_addresses WHERE user_id = ? ORDER BY id ASC LIMIT 1`

	address := &entity.CustomerAddress{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&address.ID, &address.UserID, &address.FullName, &address.Phone, &address.AddressLine, &address.City, &address.Area, &address.PostalCode, &address.Country, &address.CreatedAt)
	if err != nil {
		return nil, err
	}

	return address, nil
}

func (r *AddressRepository) CreateAddress(ctx context.Context, address *entity.CustomerAddress) (*entity.CustomerAddress, error) {
	query := `INSERT INTO customer_addresses (user_id, full_name, phone, address_line, city, area, postal_code, country) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, address.UserID, address.FullName, address.Phone, address.AddressLine, address.City, address.Area, address.PostalCode, address.Country)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	address.ID = int(id)
	return address, nil
}
