package models

import (
	"time"

	"gorm.io/gorm"
)

// Request and certificate lifecycle states. REJECTED and REVOKED are
// terminal.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestRejected = "REJECTED"

	CertificateActive  = "ACTIVE"
	CertificateRevoked = "REVOKED"
)

// CertificateRequest represents a student's request for a certificate.
// Status is mutated exactly once, by a compare-and-set on PENDING; rows are
// never physically deleted.
type CertificateRequest struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	InstitutionID   uint       `json:"institution_id" gorm:"index;not null"`
	StudentName     string     `json:"student_name" gorm:"not null"`
	CourseName      string     `json:"course_name" gorm:"not null"`
	Category        string     `json:"category"` // free-text classification tag
	Status          string     `json:"status" gorm:"default:'PENDING';index"`
	RejectionReason string     `json:"rejection_reason"`
	RequestedAt     time.Time  `json:"requested_at"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *uint      `json:"reviewed_by"`
}

// Certificate is the locally authoritative record of an issued certificate.
// Payload keeps the exact canonical JSON that was hashed, so the fingerprint
// can always be recomputed. The ledger fields are write-once and stay empty
// when anchoring failed or was not configured.
type Certificate struct {
	gorm.Model
	RequestID     uint       `json:"request_id" gorm:"uniqueIndex;not null"`
	UserID        uint       `json:"user_id" gorm:"index;not null"`
	InstitutionID uint       `json:"institution_id" gorm:"index;not null"`
	CredentialID  string     `json:"credential_id" gorm:"uniqueIndex;not null"`
	Fingerprint   string     `json:"fingerprint" gorm:"size:64;index;not null"`
	Payload       string     `json:"payload" gorm:"type:text;not null"`
	Status        string     `json:"status" gorm:"default:'ACTIVE'"`
	IssuedAt      time.Time  `json:"issued_at"`
	RevokedAt     *time.Time `json:"revoked_at"`
	LedgerAssetID *uint64    `json:"ledger_asset_id"`
	LedgerTxID    string     `json:"ledger_tx_id"`
}
