// Package fingerprint computes the tamper-evident digest of a certificate.
//
// The digest is SHA-256 over a canonical JSON serialization of the payload.
// Canonical means: a fixed field set with documented defaults, and keys
// sorted lexicographically at every nesting level, so field order never
// affects the output. The exact field set and defaulting rules are part of
// the hash contract and must not change without a versioning scheme.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingField is returned when a required payload field is empty.
var ErrMissingField = errors.New("fingerprint: missing required field")

// Payload is the fixed set of certificate fields covered by the digest.
// ExpiryDate defaults to the empty string and Metadata to an empty mapping
// when absent.
type Payload struct {
	StudentName     string            `json:"studentName"`
	InstitutionName string            `json:"institutionName"`
	CourseName      string            `json:"courseName"`
	IssueDate       string            `json:"issueDate"`
	ExpiryDate      string            `json:"expiryDate"`
	Metadata        map[string]string `json:"metadata"`
}

// Canonical returns the deterministic serialization of p. Marshaling goes
// through a map so encoding/json emits keys in sorted order at every level.
func (p Payload) Canonical() ([]byte, error) {
	if p.StudentName == "" {
		return nil, fmt.Errorf("%w: studentName", ErrMissingField)
	}
	if p.InstitutionName == "" {
		return nil, fmt.Errorf("%w: institutionName", ErrMissingField)
	}
	if p.CourseName == "" {
		return nil, fmt.Errorf("%w: courseName", ErrMissingField)
	}
	if p.IssueDate == "" {
		return nil, fmt.Errorf("%w: issueDate", ErrMissingField)
	}

	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	return json.Marshal(map[string]interface{}{
		"studentName":     p.StudentName,
		"institutionName": p.InstitutionName,
		"courseName":      p.CourseName,
		"issueDate":       p.IssueDate,
		"expiryDate":      p.ExpiryDate,
		"metadata":        metadata,
	})
}

// Compute returns the lowercase hex SHA-256 digest of the canonical payload.
func Compute(p Payload) (string, error) {
	canonical, err := p.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// FromCanonical hashes an already-serialized canonical payload. Used to
// re-check a stored record against its recorded fingerprint.
func FromCanonical(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// Short parses the first 8 hex characters of a digest as a base-16 integer.
// It is lossy and never authoritative; only the full digest is used for
// equality checks. The ledger client uses it where the anchoring protocol
// needs a compact numeric tag.
func Short(digest string) (uint64, error) {
	if len(digest) < 8 {
		return 0, fmt.Errorf("fingerprint: digest too short: %q", digest)
	}
	v, err := strconv.ParseUint(digest[:8], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("fingerprint: invalid digest prefix: %w", err)
	}
	return v, nil
}
