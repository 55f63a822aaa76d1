package entity

import "time"

type Order struct {
	ID          int         `json:"id"`
	UserID      *int        `json:"user_id"` // nil for guest checkout
	FullName    string      `json:"full_name"`
	Phone       string      `json:"phone"`
	AddressLine string      `json:"address_line"`
	City        string      `json:"city"`
	Area        string      `json:"area"`
	PostalCode  string      `json:"postal_code"`
	Country     string      `json:"country"`
	Status      string      `json:"status"` // e.g., "placed"
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"order_id"`
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

// OrderStatus is the polled status view: the order plus its payment.
// Payment is nil when the order exists but no payment has been recorded.
type OrderStatus struct {
	Order   *Order   `json:"order"`
	Payment *Payment `json:"payment"`
}

const OrderStatusPlaced = "placed"

/*
Mysql Tables

CREATE TABLE orders (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NULL,
	full_name VARCHAR(100) NOT NULL,
	phone VARCHAR(30) NOT NULL,
	address_line VARCHAR(255) NOT NULL,
	city VARCHAR(100) NOT NULL,
	area VARCHAR(100) NOT NULL,
	postal_code VARCHAR(20) NOT NULL,
	country VARCHAR(100) NOT NULL,
	status VARCHAR(20) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
);

CREATE TABLE order_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL,
	product_id INT NOT NULL,
	product_name VARCHAR(255) NOT NULL,
	unit_price DOUBLE NOT NULL,
	quantity INT NOT NULL,
	FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
);

*/
