package controllers

import (
	"github.com/gofiber/fiber/v2"

	"scolarite-backend/stores"
)

// RosterController serves the read-only class and student lists that the
// payment screens are built on.
type RosterController struct {
	Roster *stores.RosterStore
}

func (ct *RosterController) GetClasses(c *fiber.Ctx) error {
	return c.JSON(ct.Roster.GetClasses())
}

func (ct *RosterController) GetStudentsByClass(c *fiber.Ctx) error {
	return c.JSON(ct.Roster.GetStudentsByClass(c.Params("classId")))
}
