package certificateController

import (
	"errors"

	"certchain/config"
	"certchain/database"
	"certchain/ledger"
	"certchain/lifecycle"
	"certchain/middleware"
	"certchain/models"
	"certchain/utils"
	"certchain/verification"

	"github.com/gofiber/fiber/v2"
)

// Controller exposes the certificate lifecycle and verification services
// over HTTP
type Controller struct {
	Db        *database.Database
	Lifecycle *lifecycle.Service
	Verifier  *verification.Service
	Anchors   *ledger.Client
	Cfg       *config.Config
}

func New(db *database.Database, lc *lifecycle.Service, vs *verification.Service, anchors *ledger.Client, cfg *config.Config) *Controller {
	return &Controller{Db: db, Lifecycle: lc, Verifier: vs, Anchors: anchors, Cfg: cfg}
}

func (ctl *Controller) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, errors.New("missing user id")
	}
	var user models.User
	if err := ctl.Db.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// lifecycleError maps service errors onto HTTP responses so callers can
// tell bad input (422), racing with another actor (409) and missing
// authority (403) apart.
func lifecycleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, err.Error(), nil)
	case errors.Is(err, lifecycle.ErrConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
	case errors.Is(err, lifecycle.ErrValidation):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, err.Error(), nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
}

// SubmitRequest submits a new certificate request for the current student
func (ctl *Controller) SubmitRequest(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedRequest").(*struct {
		InstitutionID uint   `json:"institution_id"`
		StudentName   string `json:"student_name"`
		CourseName    string `json:"course_name"`
		Category      string `json:"category"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	request, err := ctl.Lifecycle.SubmitRequest(user, lifecycle.SubmitInput{
		InstitutionID: reqData.InstitutionID,
		StudentName:   reqData.StudentName,
		CourseName:    reqData.CourseName,
		Category:      reqData.Category,
	})
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate request submitted successfully!", request)
}

// MyRequests lists the current student's certificate requests
func (ctl *Controller) MyRequests(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var requests []models.CertificateRequest
	if err := ctl.Db.Db.Where("user_id = ?", user.ID).Order("requested_at desc").Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Requests fetched successfully!", fiber.Map{
		"requests": requests,
		"total":    len(requests),
	})
}

// MyCertificates lists the current student's issued certificates
func (ctl *Controller) MyCertificates(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var certificates []models.Certificate
	if err := ctl.Db.Db.Where("user_id = ?", user.ID).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"total":        len(certificates),
	})
}

// PendingRequests lists PENDING requests addressed to the approver's
// institution. Admins see every pending request.
func (ctl *Controller) PendingRequests(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	query := ctl.Db.Db.Where("status = ?", models.RequestPending)
	switch {
	case user.Role == models.RoleAdmin:
	case user.Role == models.RoleInstitution && user.InstitutionID != nil:
		query = query.Where("institution_id = ?", *user.InstitutionID)
	default:
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied!", nil)
	}

	var requests []models.CertificateRequest
	if err := query.Order("requested_at asc").Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch pending requests!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending requests fetched successfully!", fiber.Map{
		"requests": requests,
		"total":    len(requests),
	})
}

// ApproveRequest approves a pending request and issues the certificate
func (ctl *Controller) ApproveRequest(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	requestID := c.Locals("requestID").(uint)

	certificate, err := ctl.Lifecycle.Approve(c.Context(), user, requestID)
	if err != nil {
		return lifecycleError(c, err)
	}

	// Notify the student asynchronously, failure only logs
	var student models.User
	if err := ctl.Db.Db.Where("id = ?", certificate.UserID).First(&student).Error; err == nil {
		go utils.SendCertificateIssuedEmail(ctl.Cfg, student.Email, student.Name, certificate.CredentialID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate approved and issued successfully!", certificate)
}

// RejectRequest rejects a pending request
func (ctl *Controller) RejectRequest(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	requestID := c.Locals("requestID").(uint)
	reason := c.Locals("rejectionReason").(string)

	request, err := ctl.Lifecycle.Reject(user, requestID, reason)
	if err != nil {
		return lifecycleError(c, err)
	}

	var student models.User
	if err := ctl.Db.Db.Where("id = ?", request.UserID).First(&student).Error; err == nil {
		go utils.SendRequestRejectedEmail(ctl.Cfg, student.Email, student.Name, request.CourseName, reason)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate request rejected.", request)
}

// RevokeCertificate revokes an active certificate
func (ctl *Controller) RevokeCertificate(c *fiber.Ctx) error {
	user, err := ctl.currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	credentialID := c.Locals("credentialID").(string)

	certificate, err := ctl.Lifecycle.Revoke(user, credentialID)
	if err != nil {
		return lifecycleError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate revoked.", certificate)
}

// AnchorInfo is the public lookup of an on-chain anchor asset. The asset id
// arrives as a decimal string and is converted through the ledger's bounded
// parser, so an out-of-range value is a client error instead of a silent
// truncation.
func (ctl *Controller) AnchorInfo(c *fiber.Ctx) error {
	if ctl.Anchors == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Ledger is not configured!", nil)
	}

	assetID, err := ledger.ParseAssetID(c.Params("asset_id"))
	if err != nil {
		if errors.Is(err, ledger.ErrAssetIDOverflow) {
			return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Asset id out of range!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid asset id!", nil)
	}

	info, err := ctl.Anchors.LookupAsset(c.Context(), assetID)
	if err != nil {
		if errors.Is(err, ledger.ErrAssetNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Asset not found on the ledger!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Ledger lookup failed!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Anchor fetched successfully!", info)
}

// Verify is the public verification endpoint. The identifier may be a
// credential id or a fingerprint digest.
func (ctl *Controller) Verify(c *fiber.Ctx) error {
	identifier := c.Locals("credentialID").(string)

	result, err := ctl.Verifier.Verify(c.Context(), identifier)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification completed.", result)
}
