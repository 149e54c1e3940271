package controllers

import (
	"github.com/gofiber/fiber/v2"

	"scolarite-backend/middlewares"
	"scolarite-backend/models"
	"scolarite-backend/stores"
	"scolarite-backend/utils"
)

// ServiceController exposes the optional-services catalog.
type ServiceController struct {
	Fees *stores.FeeConfigStore
}

type ServiceInput struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	IsRequired  bool    `json:"isRequired"`
}

func (ct *ServiceController) CreateService(c *fiber.Ctx) error {
	var input ServiceInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	id, err := ct.Fees.AddService(models.Service{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		IsRequired:  input.IsRequired,
	})
	if err != nil {
		return err
	}
	svc, _ := ct.Fees.GetService(id)
	return c.Status(fiber.StatusCreated).JSON(svc)
}

func (ct *ServiceController) GetServices(c *fiber.Ctx) error {
	return c.JSON(ct.Fees.ListServices())
}

type ServiceUpdateInput struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Description *string  `json:"description"`
	IsRequired  *bool    `json:"isRequired"`
}

// UpdateService merges only the provided fields. An unknown id answers 200
// with no effect, matching the store's no-op contract.
func (ct *ServiceController) UpdateService(c *fiber.Ctx) error {
	var input ServiceUpdateInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	id := c.Params("id")
	if err := ct.Fees.UpdateService(id, stores.ServicePatch{
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		IsRequired:  input.IsRequired,
	}); err != nil {
		return err
	}
	if svc, ok := ct.Fees.GetService(id); ok {
		return c.JSON(svc)
	}
	return c.JSON(fiber.Map{"message": "no such service, nothing updated"})
}

func (ct *ServiceController) DeleteService(c *fiber.Ctx) error {
	if err := ct.Fees.DeleteService(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
