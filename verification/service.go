// Package verification reconstructs the validity of a certificate from the
// local record, optionally cross-checked against the ledger. The local
// status is authoritative: the chain check augments a valid result, it never
// overrides an invalid one.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"certchain/fingerprint"
	"certchain/ledger"
	"certchain/models"

	"gorm.io/gorm"
)

// Reason values for invalid results.
const (
	ReasonNotFound            = "NOT_FOUND"
	ReasonRevoked             = "REVOKED"
	ReasonFingerprintMismatch = "FINGERPRINT_MISMATCH"
)

// Summary is the certificate detail disclosed on a valid result. Invalid
// results never carry it, so revoked or nonexistent certificates cannot be
// probed for subject details.
type Summary struct {
	CredentialID string `json:"credential_id"`
	Subject      string `json:"subject"`
	Institution  string `json:"institution"`
	Course       string `json:"course"`
	IssueDate    string `json:"issue_date"`
	Status       string `json:"status"`
}

// Result is the verification outcome shape consumed by callers.
type Result struct {
	Valid          bool     `json:"valid"`
	ChainConfirmed bool     `json:"chain_confirmed"`
	Reason         string   `json:"reason,omitempty"`
	Certificate    *Summary `json:"certificate,omitempty"`
}

// Service reads persisted certificates and optionally re-queries the ledger.
// Anchors may be nil when no ledger is configured.
type Service struct {
	db      *gorm.DB
	anchors *ledger.Client
}

func New(db *gorm.DB, anchors *ledger.Client) *Service {
	return &Service{db: db, anchors: anchors}
}

// Verify resolves an identifier, which may be a credential id or a full
// fingerprint digest, into a verification result.
func (s *Service) Verify(ctx context.Context, identifier string) (*Result, error) {
	var cert models.Certificate
	err := s.db.Where("credential_id = ? OR fingerprint = ?", identifier, identifier).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Result{Valid: false, Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	// The stored payload must still hash to the stored digest; a mismatch
	// means the local record was tampered with.
	if fingerprint.FromCanonical([]byte(cert.Payload)) != cert.Fingerprint {
		return &Result{Valid: false, Reason: ReasonFingerprintMismatch}, nil
	}

	// Local authoritative status wins and short-circuits, the ledger is not
	// consulted for a revoked certificate.
	if cert.Status != models.CertificateActive {
		return &Result{Valid: false, Reason: ReasonRevoked}, nil
	}

	result := &Result{
		Valid:       true,
		Certificate: summarize(&cert),
	}

	if cert.LedgerAssetID != nil && s.anchors != nil {
		check, err := s.anchors.VerifyAnchor(ctx, *cert.LedgerAssetID, cert.Fingerprint)
		if err != nil {
			// Inconclusive: unreachable ledger or malformed response is
			// reported as unconfirmed, never as invalid.
			log.Printf("Chain check inconclusive for %s: %v", cert.CredentialID, err)
		} else {
			result.ChainConfirmed = check.Confirmed
		}
	}

	return result, nil
}

func summarize(cert *models.Certificate) *Summary {
	var payload fingerprint.Payload
	// Payload integrity was already re-checked against the digest.
	_ = json.Unmarshal([]byte(cert.Payload), &payload)

	return &Summary{
		CredentialID: cert.CredentialID,
		Subject:      payload.StudentName,
		Institution:  payload.InstitutionName,
		Course:       payload.CourseName,
		IssueDate:    payload.IssueDate,
		Status:       cert.Status,
	}
}
