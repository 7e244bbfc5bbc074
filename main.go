package main

import (
	"log"
	"time"

	"certchain/config"
	authControllers "certchain/controllers/auth"
	certificateControllers "certchain/controllers/certificate"
	institutionControllers "certchain/controllers/institution"
	"certchain/database"
	"certchain/ledger"
	"certchain/lifecycle"
	"certchain/routers/authRoutes"
	"certchain/routers/certificateRoutes"
	"certchain/routers/institutionRoutes"
	"certchain/utils"
	"certchain/verification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	anchors := buildLedgerClient(cfg)

	lifecycleService := lifecycle.New(db.Db, anchors)
	verificationService := verification.New(db.Db, anchors)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app, authControllers.New(db, cfg))
	institutionRoutes.SetupInstitutionRoutes(app, institutionControllers.New(db), cfg.JWTKey)
	certificateRoutes.SetupCertificateRoutes(app, certificateControllers.New(db, lifecycleService, verificationService, anchors, cfg), cfg.JWTKey)

	if anchors != nil && anchors.CanSign() {
		scheduler, err := utils.StartAnchorScheduler(lifecycleService, cfg.AnchorRetrySchedule)
		if err != nil {
			log.Fatalf("Failed to start anchor scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// buildLedgerClient constructs the anchor client when a ledger endpoint is
// configured. A missing signing key still allows verification lookups;
// anchoring itself stays disabled.
func buildLedgerClient(cfg *config.Config) *ledger.Client {
	if cfg.LedgerAPIURL == "" {
		return nil
	}

	ledgerCfg := ledger.Config{
		BaseURL:       cfg.LedgerAPIURL,
		APIToken:      cfg.LedgerAPIToken,
		SenderAddress: cfg.LedgerSenderAddress,
		MaxRounds:     cfg.LedgerMaxRounds,
		RoundWait:     time.Second,
	}

	if cfg.LedgerSigningKey != "" {
		key, err := ledger.ParseSigningKey(cfg.LedgerSigningKey)
		if err != nil {
			log.Fatalf("Invalid LEDGER_SIGNING_KEY: %v", err)
		}
		ledgerCfg.SigningKey = key
	}

	return ledger.NewClient(ledgerCfg)
}
