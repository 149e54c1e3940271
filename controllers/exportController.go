package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"scolarite-backend/database"
	"scolarite-backend/stores"
)

// ExportController moves full database snapshots in and out of the app.
// After an import every store cache is reloaded from storage.
type ExportController struct {
	Gateway *database.Gateway
	Fees    *stores.FeeConfigStore
	Ledger  *stores.PaymentLedger
	Roster  *stores.RosterStore
}

func (ct *ExportController) ExportJSON(c *fiber.Ctx) error {
	dump, err := ct.Gateway.ExportJSON()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="scolarite-%s.json"`, time.Now().Format("2006-01-02")))
	return c.JSON(dump)
}

func (ct *ExportController) ExportSQL(c *fiber.Ctx) error {
	script, err := ct.Gateway.ExportSQL()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/sql")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="scolarite-%s.sql"`, time.Now().Format("2006-01-02")))
	return c.Send(script)
}

func (ct *ExportController) ImportJSON(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "request body is empty")
	}
	if err := ct.Gateway.ImportJSON(c.Body()); err != nil {
		return err
	}
	if err := ct.reload(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "import completed"})
}

func (ct *ExportController) ImportSQL(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "request body is empty")
	}
	if err := ct.Gateway.ImportSQL(c.Body()); err != nil {
		return err
	}
	if err := ct.reload(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "import completed"})
}

func (ct *ExportController) reload() error {
	if err := ct.Fees.Load(); err != nil {
		return err
	}
	if err := ct.Ledger.Load(); err != nil {
		return err
	}
	return ct.Roster.Load()
}
