package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"certchain/fingerprint"
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrAssetNotFound)
}

// Note is the payload embedded in the anchoring transaction. It carries the
// FULL digest; the short tag on the asset is only a compact numeric label and
// is never used for equality checks.
type Note struct {
	CredentialID string `json:"credential_id"`
	Fingerprint  string `json:"fingerprint"`
}

// AnchorResult references the on-chain asset after a confirmed anchoring.
type AnchorResult struct {
	AssetID uint64
	TxID    string
}

// AnchorCheck is the outcome of an on-chain cross-check.
type AnchorCheck struct {
	Confirmed bool
	Owner     string
	Metadata  map[string]string
}

type assetCreateTxn struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	AssetName string `json:"assetName"`
	UnitTag   uint64 `json:"unitTag"`
	Total     uint64 `json:"total"`
	Note      []byte `json:"note"`
}

type txnEnvelope struct {
	Txn    json.RawMessage `json:"txn"`
	Sig    string          `json:"sig"`
	Sender string          `json:"sender"`
}

// Anchor creates a one-unit asset whose note holds the credential id and the
// full fingerprint digest, signs it, submits it, and waits a bounded number
// of rounds for confirmation. Any error return is recoverable per the
// lifecycle contract: the certificate is issued without ledger backing.
func (c *Client) Anchor(ctx context.Context, credentialID, digest string) (*AnchorResult, error) {
	if !c.CanSign() {
		return nil, ErrNoSigningIdentity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	note, err := json.Marshal(Note{CredentialID: credentialID, Fingerprint: digest})
	if err != nil {
		return nil, fmt.Errorf("ledger: encode note: %w", err)
	}

	tag, err := fingerprint.Short(digest)
	if err != nil {
		return nil, fmt.Errorf("ledger: derive unit tag: %w", err)
	}

	txnBytes, err := json.Marshal(assetCreateTxn{
		Type:      "acfg",
		Sender:    c.cfg.SenderAddress,
		AssetName: credentialID,
		UnitTag:   tag,
		Total:     1,
		Note:      note,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: encode transaction: %w", err)
	}

	sig := ed25519.Sign(c.cfg.SigningKey, txnBytes)
	envelope, err := json.Marshal(txnEnvelope{
		Txn:    txnBytes,
		Sig:    base64.StdEncoding.EncodeToString(sig),
		Sender: c.cfg.SenderAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: encode envelope: %w", err)
	}

	txID, err := c.SubmitTransaction(ctx, envelope)
	if err != nil {
		return nil, err
	}

	receipt, err := c.WaitForConfirmation(ctx, txID, c.cfg.MaxRounds)
	if err != nil {
		return nil, err
	}
	if receipt.AssetIndex == 0 {
		return nil, fmt.Errorf("%w: confirmed tx %s carries no asset index", ErrMalformedResponse, txID)
	}

	return &AnchorResult{AssetID: receipt.AssetIndex, TxID: txID}, nil
}

// VerifyAnchor looks up the asset and compares the note's recorded digest
// against the expected one byte for byte. Asset-not-found is a conclusive
// negative (Confirmed=false, nil error); any other error means the check is
// inconclusive and the caller must not report the certificate as invalid.
func (c *Client) VerifyAnchor(ctx context.Context, assetID uint64, expected string) (*AnchorCheck, error) {
	info, err := c.LookupAsset(ctx, assetID)
	if err != nil {
		if isNotFound(err) {
			return &AnchorCheck{Confirmed: false}, nil
		}
		return nil, err
	}

	var note Note
	if err := json.Unmarshal(info.Note, &note); err != nil {
		return nil, fmt.Errorf("%w: unreadable note on asset %d", ErrMalformedResponse, assetID)
	}

	return &AnchorCheck{
		Confirmed: note.Fingerprint == expected,
		Owner:     info.Creator,
		Metadata: map[string]string{
			"credential_id": note.CredentialID,
			"fingerprint":   note.Fingerprint,
		},
	}, nil
}
