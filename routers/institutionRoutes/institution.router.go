package institutionRoutes

import (
	institutionControllers "certchain/controllers/institution"
	"certchain/middleware"
	institutionValidators "certchain/validators/institution"

	"github.com/gofiber/fiber/v2"
)

func SetupInstitutionRoutes(app *fiber.App, ctl *institutionControllers.Controller, jwtKey string) {
	group := app.Group("/institutions")

	group.Get("/", ctl.List)
	group.Post("/", middleware.RequireAuth(jwtKey), institutionValidators.Create(), ctl.Create)
}
