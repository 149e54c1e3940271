package controllers

import (
	"github.com/gofiber/fiber/v2"

	"scolarite-backend/middlewares"
	"scolarite-backend/stores"
	"scolarite-backend/utils"
)

// PaymentController exposes the student payment ledger.
type PaymentController struct {
	Ledger *stores.PaymentLedger
}

type CreatePaymentInput struct {
	StudentID string `json:"studentId" validate:"required"`
	ClassID   string `json:"classId" validate:"required"`
	Month     string `json:"month" validate:"required,datetime=2006-01"`
}

// CreatePayment materializes the (student, month) record, or returns the
// existing one. Creation is upsert-or-fetch, never a duplicate.
func (ct *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var input CreatePaymentInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	p, err := ct.Ledger.CreateStudentPayment(input.StudentID, input.ClassID, input.Month)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// ListPayments returns one class's records for one month, insertion-ordered.
func (ct *PaymentController) ListPayments(c *fiber.Ctx) error {
	classID := c.Query("classId")
	month := c.Query("month")
	if classID == "" || month == "" {
		return fiber.NewError(fiber.StatusBadRequest, "classId and month query parameters are required")
	}
	return c.JSON(ct.Ledger.GetPaymentsByClassAndMonth(classID, month))
}

func (ct *PaymentController) GetPayment(c *fiber.Ctx) error {
	p, ok := ct.Ledger.GetPayment(c.Params("id"))
	if !ok {
		return fiber.ErrNotFound
	}
	return c.JSON(p)
}

type UpdatePaymentInput struct {
	MonthlyFee *float64 `json:"monthlyFee" validate:"omitempty,gte=0"`
	PaidAmount *float64 `json:"paidAmount" validate:"omitempty,gte=0"`
}

// UpdatePayment overwrites the given fields; totals are recomputed by the
// ledger regardless of which fields changed.
func (ct *PaymentController) UpdatePayment(c *fiber.Ctx) error {
	var input UpdatePaymentInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	id := c.Params("id")
	if err := ct.Ledger.UpdateStudentPayment(id, stores.PaymentPatch{
		MonthlyFee: input.MonthlyFee,
		PaidAmount: input.PaidAmount,
	}); err != nil {
		return err
	}
	p, _ := ct.Ledger.GetPayment(id)
	return c.JSON(p)
}

type AddServiceInput struct {
	ServiceID string `json:"serviceId" validate:"required"`
}

func (ct *PaymentController) AddServiceToPayment(c *fiber.Ctx) error {
	var input AddServiceInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	id := c.Params("id")
	if err := ct.Ledger.AddServiceToPayment(id, input.ServiceID); err != nil {
		return err
	}
	p, _ := ct.Ledger.GetPayment(id)
	return c.JSON(p)
}

type AdditionalFeeInput struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

func (ct *PaymentController) AddAdditionalFee(c *fiber.Ctx) error {
	var input AdditionalFeeInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	id := c.Params("id")
	if _, err := ct.Ledger.AddAdditionalFee(id, input.Name, input.Amount); err != nil {
		return err
	}
	p, _ := ct.Ledger.GetPayment(id)
	return c.JSON(p)
}

type ReceiptInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// RecordReceipt adds cash received against the record. Partial amounts and
// overpayment are both accepted.
func (ct *PaymentController) RecordReceipt(c *fiber.Ctx) error {
	var input ReceiptInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	p, err := ct.Ledger.RecordPayment(c.Params("id"), input.Amount)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"payment":            p,
		"remainingFormatted": utils.FormatXOF(p.RemainingAmount),
	})
}
