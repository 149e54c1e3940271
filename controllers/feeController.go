package controllers

import (
	"github.com/gofiber/fiber/v2"

	"scolarite-backend/middlewares"
	"scolarite-backend/models"
	"scolarite-backend/stores"
	"scolarite-backend/utils"
)

// FeeController exposes the per-class fee configuration: monthly fee and
// registration ("inscription") fees.
type FeeController struct {
	Fees *stores.FeeConfigStore
}

type MonthlyFeeInput struct {
	ClassName  string  `json:"className" validate:"required"`
	MonthlyFee float64 `json:"monthlyFee" validate:"gte=0"`
}

func (ct *FeeController) SetMonthlyFee(c *fiber.Ctx) error {
	var input MonthlyFeeInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	classID := c.Params("classId")
	if err := ct.Fees.SetClassMonthlyFee(classID, input.ClassName, input.MonthlyFee); err != nil {
		return err
	}
	cf, _ := ct.Fees.GetClassFees(classID)
	return c.JSON(cf)
}

type RegistrationFeeInput struct {
	Name       string  `json:"name" validate:"required"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	IsRequired bool    `json:"isRequired"`
}

// AddRegistrationFee appends a registration fee. A class without a fee
// config is left untouched (the documented precondition: set the monthly
// fee first), signalled with a 409 so the UI can prompt for it.
func (ct *FeeController) AddRegistrationFee(c *fiber.Ctx) error {
	var input RegistrationFeeInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	classID := c.Params("classId")
	id, err := ct.Fees.AddRegistrationFee(classID, models.RegistrationFee{
		Name:       input.Name,
		Amount:     input.Amount,
		IsRequired: input.IsRequired,
	})
	if err != nil {
		return err
	}
	if id == "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "class has no fee configuration yet, set the monthly fee first",
		})
	}
	cf, _ := ct.Fees.GetClassFees(classID)
	return c.Status(fiber.StatusCreated).JSON(cf)
}

func (ct *FeeController) RemoveRegistrationFee(c *fiber.Ctx) error {
	classID := c.Params("classId")
	if err := ct.Fees.RemoveRegistrationFee(classID, c.Params("feeId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (ct *FeeController) GetClassFees(c *fiber.Ctx) error {
	cf, ok := ct.Fees.GetClassFees(c.Params("classId"))
	if !ok {
		return c.JSON(fiber.Map{})
	}
	return c.JSON(cf)
}

func (ct *FeeController) ListClassFees(c *fiber.Ctx) error {
	return c.JSON(ct.Fees.ListClassFees())
}
