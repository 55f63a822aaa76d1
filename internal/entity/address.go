package entity

import "time"

type CustomerAddress struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	AddressLine string    `json:"address_line"`
	City        string    `json:"city"`
	Area        string    `json:"area"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"created_at"`
}

/*
Mysql Table

CREATE TABLE customer_addresses (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	full_name VARCHAR(100) NOT NULL,
	phone VARCHAR(30) NOT NULL,
	address_line VARCHAR(255) NOT NULL,
	city VARCHAR(100) NOT NULL,
	area VARCHAR(100) NOT NULL,
	postal_code VARCHAR(20) NOT NULL,
	country VARCHAR(100) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

*/
