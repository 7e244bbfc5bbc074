package certificateRoutes

import (
	certificateControllers "certchain/controllers/certificate"
	"certchain/middleware"
	certificateValidators "certchain/validators/certificate"

	"github.com/gofiber/fiber/v2"
)

func SetupCertificateRoutes(app *fiber.App, ctl *certificateControllers.Controller, jwtKey string) {
	auth := middleware.RequireAuth(jwtKey)

	// Student endpoints
	certGroup := app.Group("/certificates")
	certGroup.Post("/request", auth, certificateValidators.SubmitRequest(), ctl.SubmitRequest)
	certGroup.Get("/requests", auth, ctl.MyRequests)
	certGroup.Get("/mine", auth, ctl.MyCertificates)

	// Approver endpoints
	reviewGroup := app.Group("/review")
	reviewGroup.Get("/pending", auth, ctl.PendingRequests)
	reviewGroup.Post("/:request_id/approve", auth, certificateValidators.RequestID(), ctl.ApproveRequest)
	reviewGroup.Post("/:request_id/reject", auth, certificateValidators.RejectRequest(), ctl.RejectRequest)

	// Revocation
	certGroup.Post("/:credential_id/revoke", auth, certificateValidators.CredentialID(), ctl.RevokeCertificate)

	// Public verification, no auth
	app.Get("/verify/:credential_id", certificateValidators.CredentialID(), ctl.Verify)
	app.Get("/anchors/:asset_id", ctl.AnchorInfo)
}
