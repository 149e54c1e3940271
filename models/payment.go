package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentServiceLine is a snapshot of a catalog service at the time it was
// added to a payment record. Later catalog edits or deletions do not flow
// back into it.
type PaymentServiceLine struct {
	ServiceID   string  `json:"serviceId"`
	ServiceName string  `json:"serviceName"`
	Price       float64 `json:"price"`
	IsPaid      bool    `json:"isPaid"`
}

// AdditionalFee is an ad-hoc one-off charge attached directly to a payment
// record, bypassing the service catalog.
type AdditionalFee struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	IsPaid bool    `json:"isPaid"`
}

// StudentPayment is the materialized ledger line for one student in one
// calendar month. MonthlyFee is a permanent snapshot of the class fee taken
// at creation; TotalAmount/RemainingAmount/IsPaid are derived and must be
// recomputed after every mutation (see Recalculate).
type StudentPayment struct {
	ID              string                                   `json:"id" gorm:"primaryKey"`
	StudentID       string                                   `json:"studentId" gorm:"index:idx_student_payments_student_month,unique,priority:1;not null"`
	Month           string                                   `json:"month" gorm:"index:idx_student_payments_student_month,unique,priority:2;not null"` // "YYYY-MM"
	Year            int                                      `json:"year"`
	ClassID         string                                   `json:"classId" gorm:"index"`
	MonthlyFee      float64                                  `json:"monthlyFee" gorm:"type:numeric(12,2)"`
	Services        datatypes.JSONSlice[PaymentServiceLine] `json:"services"`
	AdditionalFees  datatypes.JSONSlice[AdditionalFee]      `json:"additionalFees"`
	TotalAmount     float64                                  `json:"totalAmount" gorm:"type:numeric(12,2)"`
	PaidAmount      float64                                  `json:"paidAmount" gorm:"type:numeric(12,2)"`
	RemainingAmount float64                                  `json:"remainingAmount" gorm:"type:numeric(12,2)"`
	IsPaid          bool                                     `json:"isPaid"`
	PaymentDate     *time.Time                               `json:"paymentDate,omitempty"`
	CreatedAt       time.Time                                `json:"createdAt"`
}

func (StudentPayment) TableName() string { return "student_payments" }

// Recalculate rederives the dependent fields from the snapshot amounts.
// Invariants: TotalAmount = MonthlyFee + Σ services + Σ additional fees,
// RemainingAmount = TotalAmount - PaidAmount, IsPaid = RemainingAmount <= 0.
func (p *StudentPayment) Recalculate() {
	total := p.MonthlyFee
	for _, s := range p.Services {
		total += s.Price
	}
	for _, f := range p.AdditionalFees {
		total += f.Amount
	}
	p.TotalAmount = total
	p.RemainingAmount = p.TotalAmount - p.PaidAmount
	p.IsPaid = p.RemainingAmount <= 0
}

// Clone returns a copy whose line-item lists do not share backing storage
// with the receiver.
func (p StudentPayment) Clone() StudentPayment {
	out := p
	out.Services = append(datatypes.JSONSlice[PaymentServiceLine]{}, p.Services...)
	out.AdditionalFees = append(datatypes.JSONSlice[AdditionalFee]{}, p.AdditionalFees...)
	if p.PaymentDate != nil {
		d := *p.PaymentDate
		out.PaymentDate = &d
	}
	return out
}

// SalaryItem is a named amount on a teacher payment (bonus or deduction).
type SalaryItem struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// TeacherPayment mirrors StudentPayment for staff salaries. Only the data
// shape is wired; there is no management surface for it yet.
type TeacherPayment struct {
	ID          string                            `json:"id" gorm:"primaryKey"`
	TeacherID   string                            `json:"teacherId" gorm:"index;not null"`
	Month       string                            `json:"month"` // "YYYY-MM"
	Year        int                               `json:"year"`
	Salary      float64                           `json:"salary" gorm:"type:numeric(12,2)"`
	Bonuses     datatypes.JSONSlice[SalaryItem]  `json:"bonuses"`
	Deductions  datatypes.JSONSlice[SalaryItem]  `json:"deductions"`
	TotalAmount float64                           `json:"totalAmount" gorm:"type:numeric(12,2)"`
	IsPaid      bool                              `json:"isPaid"`
	PaymentDate *time.Time                        `json:"paymentDate,omitempty"`
	CreatedAt   time.Time                         `json:"createdAt"`
}
