package institutionController

import (
	"certchain/database"
	"certchain/middleware"
	"certchain/models"

	"github.com/gofiber/fiber/v2"
)

// Controller manages the institution registry
type Controller struct {
	Db *database.Database
}

func New(db *database.Database) *Controller {
	return &Controller{Db: db}
}

// Create registers a new institution. Admin only.
func (ctl *Controller) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ctl.Db.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != models.RoleAdmin {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	reqData, ok := c.Locals("validatedInstitution").(*struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Website string `json:"website"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	institution := models.Institution{
		Name:    reqData.Name,
		Country: reqData.Country,
		Website: reqData.Website,
	}

	if err := ctl.Db.Db.Create(&institution).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create institution!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Institution created successfully!", institution)
}

// List returns all registered institutions
func (ctl *Controller) List(c *fiber.Ctx) error {
	var institutions []models.Institution
	if err := ctl.Db.Db.Where("is_deleted = ?", false).Order("name asc").Find(&institutions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch institutions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Institutions fetched successfully!", fiber.Map{
		"institutions": institutions,
		"total":        len(institutions),
	})
}
