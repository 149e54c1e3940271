package models

import (
	"time"

	"gorm.io/datatypes"
)

// RegistrationFee is a one-time enrollment charge attached to a class
// (the required "inscription" plus optional annex fees like uniforms).
type RegistrationFee struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	IsRequired bool    `json:"isRequired"`
}

// ClassFeeConfig is the fee configuration for one class: at most one row per
// classId. ClassName is a denormalized copy refreshed on every monthly-fee
// write.
type ClassFeeConfig struct {
	ID               string                                `json:"id" gorm:"primaryKey"`
	ClassID          string                                `json:"classId" gorm:"uniqueIndex;not null"`
	ClassName        string                                `json:"className"`
	MonthlyFee       float64                               `json:"monthlyFee" gorm:"type:numeric(12,2)"`
	RegistrationFees datatypes.JSONSlice[RegistrationFee] `json:"registrationFees"`
	CreatedAt        time.Time                             `json:"createdAt"`
}

func (ClassFeeConfig) TableName() string { return "class_fees" }

// Clone returns a copy whose registration-fee list does not share backing
// storage with the receiver.
func (c ClassFeeConfig) Clone() ClassFeeConfig {
	out := c
	out.RegistrationFees = append(datatypes.JSONSlice[RegistrationFee]{}, c.RegistrationFees...)
	return out
}
