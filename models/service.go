package models

import "time"

// Service is a catalog line item (transport, meals, library...) purchasable
// by any student. Deleting it never touches snapshots already copied into
// payment records.
type Service struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Price       float64   `json:"price" gorm:"type:numeric(12,2)"`
	Description string    `json:"description"`
	IsRequired  bool      `json:"isRequired"`
	CreatedAt   time.Time `json:"createdAt"`
}
