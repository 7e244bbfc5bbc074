// Package lifecycle is the state machine for certificate requests and issued
// certificates.
//
// Requests move PENDING -> APPROVED or PENDING -> REJECTED, exactly once.
// Certificates move ACTIVE -> REVOKED, exactly once. Both transitions are
// enforced with a compare-and-set on the status column, so a raced second
// actor observes a conflict instead of a double transition.
//
// The local store is the source of truth. Ledger anchoring runs after the
// approval transaction commits and never blocks or rolls back issuance.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"certchain/credential"
	"certchain/fingerprint"
	"certchain/ledger"
	"certchain/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced request or certificate does not exist.
	ErrNotFound = errors.New("lifecycle: not found")
	// ErrConflict means the transition raced with another actor or the
	// record already left the required state.
	ErrConflict = errors.New("lifecycle: state conflict")
	// ErrUnauthorized means the actor's role or institution does not allow
	// the transition.
	ErrUnauthorized = errors.New("lifecycle: not authorized")
	// ErrValidation means the input violates a precondition.
	ErrValidation = errors.New("lifecycle: validation failed")
)

// Service orchestrates the fingerprint engine, credential id generator and
// ledger anchor client around the store. Anchors may be nil when no ledger is
// configured.
type Service struct {
	db      *gorm.DB
	anchors *ledger.Client
}

func New(db *gorm.DB, anchors *ledger.Client) *Service {
	return &Service{db: db, anchors: anchors}
}

// CanManage is the single authorization predicate for every state
// transition: admins manage everything, institution approvers manage their
// own institution, nobody else manages anything.
func CanManage(actor *models.User, institutionID uint) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleInstitution &&
		actor.InstitutionID != nil &&
		*actor.InstitutionID == institutionID
}

// SubmitInput carries the student-provided request details.
type SubmitInput struct {
	InstitutionID uint
	StudentName   string
	CourseName    string
	Category      string
}

// SubmitRequest creates a PENDING certificate request.
func (s *Service) SubmitRequest(actor *models.User, in SubmitInput) (*models.CertificateRequest, error) {
	if actor.Role != models.RoleStudent {
		return nil, fmt.Errorf("%w: only students submit certificate requests", ErrUnauthorized)
	}
	if in.StudentName == "" || in.CourseName == "" {
		return nil, fmt.Errorf("%w: student name and course name are required", ErrValidation)
	}

	var institution models.Institution
	if err := s.db.Where("id = ? AND is_deleted = ?", in.InstitutionID, false).First(&institution).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: institution %d does not exist", ErrValidation, in.InstitutionID)
		}
		return nil, err
	}

	request := models.CertificateRequest{
		UserID:        actor.ID,
		InstitutionID: in.InstitutionID,
		StudentName:   in.StudentName,
		CourseName:    in.CourseName,
		Category:      in.Category,
		Status:        models.RequestPending,
		RequestedAt:   time.Now(),
	}
	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// Approve transitions a PENDING request to APPROVED and issues the
// certificate in the same local transaction. Anchoring runs after commit; a
// failure there leaves a valid, ACTIVE, unanchored certificate.
func (s *Service) Approve(ctx context.Context, actor *models.User, requestID uint) (*models.Certificate, error) {
	var request models.CertificateRequest
	if err := s.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		return nil, err
	}

	if !CanManage(actor, request.InstitutionID) {
		return nil, fmt.Errorf("%w: approver is not responsible for institution %d", ErrUnauthorized, request.InstitutionID)
	}

	var institution models.Institution
	if err := s.db.Where("id = ?", request.InstitutionID).First(&institution).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	payload := fingerprint.Payload{
		StudentName:     request.StudentName,
		InstitutionName: institution.Name,
		CourseName:      request.CourseName,
		IssueDate:       now.UTC().Format("2006-01-02"),
	}
	if request.Category != "" {
		payload.Metadata = map[string]string{"category": request.Category}
	}

	canonical, err := payload.Canonical()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	digest := fingerprint.FromCanonical(canonical)
	credentialID := credential.NewID()

	certificate := models.Certificate{
		RequestID:     request.ID,
		UserID:        request.UserID,
		InstitutionID: request.InstitutionID,
		CredentialID:  credentialID,
		Fingerprint:   digest,
		Payload:       string(canonical),
		Status:        models.CertificateActive,
		IssuedAt:      now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Compare-and-set on PENDING: at most one approval wins, a raced
		// second attempt updates zero rows.
		res := tx.Model(&models.CertificateRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Updates(map[string]interface{}{
				"status":      models.RequestApproved,
				"reviewed_at": now,
				"reviewed_by": actor.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: request %d is not pending", ErrConflict, request.ID)
		}
		return tx.Create(&certificate).Error
	})
	if err != nil {
		return nil, err
	}

	// Local issuance is durable at this point. Anchoring is best effort and
	// must not undo it.
	s.anchorCertificate(ctx, &certificate)

	return &certificate, nil
}

// anchorCertificate attempts to anchor an issued certificate and records the
// asset reference. The ledger fields are write-once: the update is guarded on
// the tx id still being empty.
func (s *Service) anchorCertificate(ctx context.Context, cert *models.Certificate) {
	if s.anchors == nil || !s.anchors.CanSign() {
		return
	}

	result, err := s.anchors.Anchor(ctx, cert.CredentialID, cert.Fingerprint)
	if err != nil {
		log.Printf("Anchoring failed for %s, certificate stays unanchored: %v", cert.CredentialID, err)
		return
	}

	res := s.db.Model(&models.Certificate{}).
		Where("id = ? AND ledger_tx_id = ''", cert.ID).
		Updates(map[string]interface{}{
			"ledger_asset_id": result.AssetID,
			"ledger_tx_id":    result.TxID,
		})
	if res.Error != nil {
		log.Printf("Failed to record anchor for %s: %v", cert.CredentialID, res.Error)
		return
	}
	if res.RowsAffected > 0 {
		cert.LedgerAssetID = &result.AssetID
		cert.LedgerTxID = result.TxID
	}
}

// Reject transitions a PENDING request to REJECTED. Re-rejecting an already
// decided request is a conflict, not a no-op.
func (s *Service) Reject(actor *models.User, requestID uint, reason string) (*models.CertificateRequest, error) {
	var request models.CertificateRequest
	if err := s.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		return nil, err
	}

	if !CanManage(actor, request.InstitutionID) {
		return nil, fmt.Errorf("%w: approver is not responsible for institution %d", ErrUnauthorized, request.InstitutionID)
	}

	now := time.Now()
	res := s.db.Model(&models.CertificateRequest{}).
		Where("id = ? AND status = ?", request.ID, models.RequestPending).
		Updates(map[string]interface{}{
			"status":           models.RequestRejected,
			"rejection_reason": reason,
			"reviewed_at":      now,
			"reviewed_by":      actor.ID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: request %d is not pending", ErrConflict, request.ID)
	}

	if err := s.db.Where("id = ?", request.ID).First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// Revoke transitions an ACTIVE certificate to REVOKED. Revocation is local
// only and permanent; the ledger asset is left untouched because the ledger
// has no revocation primitive, which is why verification always consults the
// local status first.
func (s *Service) Revoke(actor *models.User, credentialID string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := s.db.Where("credential_id = ?", credentialID).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: certificate %s", ErrNotFound, credentialID)
		}
		return nil, err
	}

	if !CanManage(actor, cert.InstitutionID) {
		return nil, fmt.Errorf("%w: actor is not responsible for institution %d", ErrUnauthorized, cert.InstitutionID)
	}

	now := time.Now()
	res := s.db.Model(&models.Certificate{}).
		Where("id = ? AND status = ?", cert.ID, models.CertificateActive).
		Updates(map[string]interface{}{
			"status":     models.CertificateRevoked,
			"revoked_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: certificate %s is not active", ErrConflict, credentialID)
	}

	if err := s.db.Where("id = ?", cert.ID).First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// RetryUnanchored attempts to anchor ACTIVE certificates that have no ledger
// reference yet. Called periodically by the scheduler; each certificate's
// ledger fields are still written at most once.
func (s *Service) RetryUnanchored(ctx context.Context, limit int) {
	if s.anchors == nil || !s.anchors.CanSign() {
		return
	}

	var certs []models.Certificate
	err := s.db.Where("status = ? AND ledger_tx_id = ''", models.CertificateActive).
		Order("issued_at asc").
		Limit(limit).
		Find(&certs).Error
	if err != nil {
		log.Printf("Anchor retry pass failed to list certificates: %v", err)
		return
	}

	for i := range certs {
		s.anchorCertificate(ctx, &certs[i])
	}
}
