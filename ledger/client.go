// Package ledger is the anchoring adapter for the external distributed
// ledger. The node is an opaque JSON/REST RPC surface: submit a signed
// transaction, wait a bounded number of confirmation rounds, look up an
// asset. The package only decides how those results are interpreted; the
// ledger's own guarantees are out of scope.
package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrNoSigningIdentity means anchoring is not configured. Callers treat
	// it like any other anchoring failure: issue without ledger backing.
	ErrNoSigningIdentity = errors.New("ledger: no signing identity configured")
	// ErrSubmitRejected means the node refused the transaction.
	ErrSubmitRejected = errors.New("ledger: transaction rejected")
	// ErrConfirmationTimeout means the bounded confirmation wait elapsed.
	ErrConfirmationTimeout = errors.New("ledger: confirmation wait exceeded")
	// ErrMalformedResponse means the node answered with something this
	// client cannot interpret. Verification treats it as inconclusive,
	// never as invalid.
	ErrMalformedResponse = errors.New("ledger: malformed node response")
	// ErrAssetNotFound means the asset id does not exist on the ledger.
	ErrAssetNotFound = errors.New("ledger: asset not found")
	// ErrAssetIDOverflow means an identifier does not fit the ledger's
	// fixed-width asset id.
	ErrAssetIDOverflow = errors.New("ledger: asset id out of range")
)

// Config for the ledger node connection and signing identity.
type Config struct {
	BaseURL       string
	APIToken      string
	SenderAddress string
	SigningKey    ed25519.PrivateKey // nil when anchoring is not configured
	MaxRounds     int                // confirmation rounds waited before giving up
	RoundWait     time.Duration      // pause between confirmation polls
}

// Client talks to a single ledger node with a single signing identity.
type Client struct {
	cfg  Config
	http *resty.Client

	// Anchor submissions from one identity must not interleave, the node
	// orders them by sender sequence.
	mu sync.Mutex
}

// NewClient builds a client. The connection is not tested here; every call
// carries its own context and bounded retries.
func NewClient(cfg Config) *Client {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 10
	}
	if cfg.RoundWait <= 0 {
		cfg.RoundWait = time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	if cfg.APIToken != "" {
		httpClient.SetHeader("X-API-Token", cfg.APIToken)
	}

	return &Client{cfg: cfg, http: httpClient}
}

// CanSign reports whether a signing identity is configured.
func (c *Client) CanSign() bool {
	return len(c.cfg.SigningKey) > 0
}

// ParseSigningKey decodes a hex-encoded 32-byte ed25519 seed.
func ParseSigningKey(hexSeed string) (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(hexSeed)
	if err != nil {
		return nil, fmt.Errorf("ledger: invalid signing key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ledger: signing key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// ParseAssetID converts a decimal asset identifier into the ledger's
// fixed-width form, refusing values that do not fit instead of silently
// truncating them.
func ParseAssetID(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrAssetIDOverflow, s)
		}
		return 0, fmt.Errorf("ledger: invalid asset id %q: %w", s, err)
	}
	return v, nil
}

type submitResponse struct {
	TxID string `json:"txId"`
}

// SubmitTransaction posts a signed transaction envelope to the node and
// returns the transaction id.
func (c *Client) SubmitTransaction(ctx context.Context, raw []byte) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(raw).
		Post("/v2/transactions")
	if err != nil {
		return "", fmt.Errorf("ledger: submit failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("%w: status %d: %s", ErrSubmitRejected, resp.StatusCode(), resp.String())
	}

	var out submitResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil || out.TxID == "" {
		return "", fmt.Errorf("%w: %s", ErrMalformedResponse, resp.String())
	}
	return out.TxID, nil
}

// Receipt describes a confirmed transaction.
type Receipt struct {
	TxID           string `json:"txId"`
	ConfirmedRound uint64 `json:"confirmedRound"`
	AssetIndex     uint64 `json:"assetIndex"`
}

// WaitForConfirmation polls the node until the transaction is included in a
// block or maxRounds polls have elapsed. The wait is bounded; exceeding it
// returns ErrConfirmationTimeout and the operation is abandoned.
func (c *Client) WaitForConfirmation(ctx context.Context, txID string, maxRounds int) (*Receipt, error) {
	for round := 0; round < maxRounds; round++ {
		resp, err := c.http.R().
			SetContext(ctx).
			Get("/v2/transactions/pending/" + txID)
		if err == nil && resp.StatusCode() == 200 {
			var receipt Receipt
			if jsonErr := json.Unmarshal(resp.Body(), &receipt); jsonErr == nil && receipt.ConfirmedRound > 0 {
				receipt.TxID = txID
				return &receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.RoundWait):
		}
	}
	return nil, fmt.Errorf("%w: tx %s after %d rounds", ErrConfirmationTimeout, txID, maxRounds)
}

// AssetInfo is the node's view of an anchored asset.
type AssetInfo struct {
	Index     uint64 `json:"index"`
	Creator   string `json:"creator"`
	AssetName string `json:"assetName"`
	UnitTag   uint64 `json:"unitTag"`
	Note      []byte `json:"note"`
}

// LookupAsset fetches an asset by id. A 404 maps to ErrAssetNotFound; an
// unreadable body maps to ErrMalformedResponse.
func (c *Client) LookupAsset(ctx context.Context, assetID uint64) (*AssetInfo, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/v2/assets/" + strconv.FormatUint(assetID, 10))
	if err != nil {
		return nil, fmt.Errorf("ledger: asset lookup failed: %w", err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("%w: %d", ErrAssetNotFound, assetID)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("ledger: asset lookup status %d: %s", resp.StatusCode(), resp.String())
	}

	var info AssetInfo
	if err := json.Unmarshal(resp.Body(), &info); err != nil || info.Index == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, resp.String())
	}
	return &info, nil
}
