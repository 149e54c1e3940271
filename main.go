package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"scolarite-backend/controllers"
	"scolarite-backend/database"
	"scolarite-backend/middlewares"
	"scolarite-backend/routes"
	"scolarite-backend/stores"
	"scolarite-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// ---- Storage backend (chosen once, never branched on again)
	store, err := database.Open(database.Config{
		Backend:      env("STORAGE_BACKEND", database.BackendSQLite),
		SQLitePath:   env("SQLITE_PATH", "data/scolarite.db"),
		SnapshotPath: env("SNAPSHOT_PATH", "data/snapshot.json"),
		DataDir:      env("DATA_DIR", "data/flat"),
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := store.Initialize(); err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(store); err != nil {
		log.Fatal(err)
	}

	// One-time migration from the old one-file-per-collection layout.
	if dir := os.Getenv("LEGACY_DATA_DIR"); dir != "" {
		if err := database.ImportLegacyFlat(store, dir); err != nil {
			log.Fatal(err)
		}
	}

	// ---- Domain stores
	fees := stores.NewFeeConfigStore(store)
	ledger := stores.NewPaymentLedger(store, fees)
	roster := stores.NewRosterStore(store)
	for _, load := range []func() error{fees.Load, ledger.Load, roster.Load} {
		if err := load(); err != nil {
			log.Fatal(err)
		}
	}

	// ---- Limits (configurable via env)
	// Fiber default BodyLimit is 4 * 1024 * 1024 bytes if unset.
	bodyLimitBytes := utils.ParseIntDefault(os.Getenv("BODY_LIMIT_BYTES"), 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = utils.ParseIntDefault(os.Getenv("BODY_LIMIT_MB"), 4) * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	// ---- CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: env("ALLOWED_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// ---- Global rate limiter
	rlMax := utils.ParseIntDefault(os.Getenv("RATE_LIMIT_MAX"), 60)
	rlWindow := time.Duration(utils.ParseIntDefault(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 60)) * time.Second
	app.Use(limiter.New(limiter.Config{
		Max:        rlMax,
		Expiration: rlWindow,
	}))

	// ---- Routes
	routes.Register(app, routes.Controllers{
		Services: &controllers.ServiceController{Fees: fees},
		Fees:     &controllers.FeeController{Fees: fees},
		Payments: &controllers.PaymentController{Ledger: ledger},
		Roster:   &controllers.RosterController{Roster: roster},
		Export: &controllers.ExportController{
			Gateway: database.NewGateway(store),
			Fees:    fees,
			Ledger:  ledger,
			Roster:  roster,
		},
	})

	// ---- Start
	port := env("PORT", "8080")
	fmt.Println("API server starting on port", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
