package routes

import (
	"github.com/gofiber/fiber/v2"

	"scolarite-backend/controllers"
	"scolarite-backend/middlewares"
)

// Controllers bundles every handler set the router needs.
type Controllers struct {
	Services *controllers.ServiceController
	Fees     *controllers.FeeController
	Payments *controllers.PaymentController
	Roster   *controllers.RosterController
	Export   *controllers.ExportController
}

// Register wires all HTTP routes.
func Register(app *fiber.App, ct Controllers) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Idempotency guard covers every mutating endpoint
	api.Use(middlewares.Idempotency())

	// Roster (read-only)
	api.Get("/classes", ct.Roster.GetClasses)
	api.Get("/class/:classId/students", ct.Roster.GetStudentsByClass)

	// Service catalog
	api.Post("/service", ct.Services.CreateService)
	api.Get("/services", ct.Services.GetServices)
	api.Put("/service/:id", ct.Services.UpdateService)
	api.Delete("/service/:id", ct.Services.DeleteService)

	// Class fee configuration
	api.Get("/class-fees", ct.Fees.ListClassFees)
	api.Get("/class/:classId/fees", ct.Fees.GetClassFees)
	api.Put("/class/:classId/monthly-fee", ct.Fees.SetMonthlyFee)
	api.Post("/class/:classId/registration-fee", ct.Fees.AddRegistrationFee)
	api.Delete("/class/:classId/registration-fee/:feeId", ct.Fees.RemoveRegistrationFee)

	// Student payments
	api.Post("/payment", ct.Payments.CreatePayment)
	api.Get("/payments", ct.Payments.ListPayments)
	api.Get("/payment/:id", ct.Payments.GetPayment)
	api.Put("/payment/:id", ct.Payments.UpdatePayment)
	api.Post("/payment/:id/service", ct.Payments.AddServiceToPayment)
	api.Post("/payment/:id/fee", ct.Payments.AddAdditionalFee)
	api.Post("/payment/:id/receipt", ct.Payments.RecordReceipt)

	// Export / import
	api.Get("/export", ct.Export.ExportJSON)
	api.Get("/export/sql", ct.Export.ExportSQL)
	api.Post("/import", ct.Export.ImportJSON)
	api.Post("/import/sql", ct.Export.ImportSQL)
}
