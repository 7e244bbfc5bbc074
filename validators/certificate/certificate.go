package certificateValidator

import (
	"strconv"
	"strings"

	"certchain/middleware"

	"github.com/gofiber/fiber/v2"
)

func SubmitRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			InstitutionID uint   `json:"institution_id"`
			StudentName   string `json:"student_name"`
			CourseName    string `json:"course_name"`
			Category      string `json:"category"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.InstitutionID == 0 {
			errors["institution_id"] = "Institution is required!"
		}
		if strings.TrimSpace(reqData.StudentName) == "" {
			errors["student_name"] = "Student name is required!"
		}
		if strings.TrimSpace(reqData.CourseName) == "" {
			errors["course_name"] = "Course name is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRequest", reqData)
		return c.Next()
	}
}

// RequestID validates the :request_id path parameter
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("request_id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request id!", nil)
		}

		c.Locals("requestID", uint(id))
		return c.Next()
	}
}

// RejectRequest validates the :request_id parameter and the rejection reason
func RejectRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("request_id"))
		if err != nil || id < 1 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request id!", nil)
		}

		reqData := new(struct {
			Reason string `json:"reason"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Reason) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"reason": "Rejection reason is required!",
			})
		}

		c.Locals("requestID", uint(id))
		c.Locals("rejectionReason", reqData.Reason)
		return c.Next()
	}
}

// CredentialID validates the :credential_id path parameter
func CredentialID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Params("credential_id"))
		if id == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid credential id!", nil)
		}

		c.Locals("credentialID", id)
		return c.Next()
	}
}
