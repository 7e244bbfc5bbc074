package ledger

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = "0101010101010101010101010101010101010101010101010101010101010101"

func testClient(t *testing.T, url string, withKey bool) *Client {
	t.Helper()

	cfg := Config{
		BaseURL:       url,
		SenderAddress: "SENDER7XYZ",
		MaxRounds:     3,
		RoundWait:     10 * time.Millisecond,
	}
	if withKey {
		key, err := ParseSigningKey(testSeed)
		require.NoError(t, err)
		cfg.SigningKey = key
	}
	return NewClient(cfg)
}

func TestAnchorHappyPath(t *testing.T) {
	var submitted txnEnvelope

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/transactions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		_, _ = w.Write([]byte(`{"txId":"TX123"}`))
	})
	mux.HandleFunc("/v2/transactions/pending/TX123", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"confirmedRound":7,"assetIndex":4242}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(t, server.URL, true)
	digest := "deadbeef00000000000000000000000000000000000000000000000000000000"

	result, err := client.Anchor(context.Background(), "CERT-TEST-1", digest)
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), result.AssetID)
	assert.Equal(t, "TX123", result.TxID)

	// The envelope must carry a valid signature over the transaction bytes
	require.NotEmpty(t, submitted.Txn)
	sig, err := base64.StdEncoding.DecodeString(submitted.Sig)
	require.NoError(t, err)
	key, _ := ParseSigningKey(testSeed)
	assert.True(t, ed25519.Verify(key.Public().(ed25519.PublicKey), submitted.Txn, sig))

	// The note must embed the credential id and the FULL digest
	var txn assetCreateTxn
	require.NoError(t, json.Unmarshal(submitted.Txn, &txn))
	var note Note
	require.NoError(t, json.Unmarshal(txn.Note, &note))
	assert.Equal(t, "CERT-TEST-1", note.CredentialID)
	assert.Equal(t, digest, note.Fingerprint)
	assert.Equal(t, uint64(0xdeadbeef), txn.UnitTag)
}

func TestAnchorWithoutSigningIdentity(t *testing.T) {
	client := testClient(t, "http://localhost:1", false)

	_, err := client.Anchor(context.Background(), "CERT-TEST-2", strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, ErrNoSigningIdentity)
}

func TestAnchorConfirmationTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/transactions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"txId":"TXSLOW"}`))
	})
	mux.HandleFunc("/v2/transactions/pending/TXSLOW", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"confirmedRound":0}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(t, server.URL, true)

	_, err := client.Anchor(context.Background(), "CERT-TEST-3", strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, ErrConfirmationTimeout)
}

func TestAnchorSubmitRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/transactions", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad txn", http.StatusBadRequest)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(t, server.URL, true)

	_, err := client.Anchor(context.Background(), "CERT-TEST-4", strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, ErrSubmitRejected)
}

func assetServer(t *testing.T, note Note) *httptest.Server {
	t.Helper()

	noteBytes, err := json.Marshal(note)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/assets/4242", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(AssetInfo{
			Index:     4242,
			Creator:   "SENDER7XYZ",
			AssetName: note.CredentialID,
			Note:      noteBytes,
		})
	})
	return httptest.NewServer(mux)
}

func TestVerifyAnchorMatch(t *testing.T) {
	digest := strings.Repeat("cd", 32)
	server := assetServer(t, Note{CredentialID: "CERT-TEST-5", Fingerprint: digest})
	defer server.Close()

	client := testClient(t, server.URL, false)

	check, err := client.VerifyAnchor(context.Background(), 4242, digest)
	require.NoError(t, err)
	assert.True(t, check.Confirmed)
	assert.Equal(t, "SENDER7XYZ", check.Owner)
	assert.Equal(t, digest, check.Metadata["fingerprint"])
}

func TestVerifyAnchorDigestMismatch(t *testing.T) {
	server := assetServer(t, Note{CredentialID: "CERT-TEST-6", Fingerprint: strings.Repeat("cd", 32)})
	defer server.Close()

	client := testClient(t, server.URL, false)

	check, err := client.VerifyAnchor(context.Background(), 4242, strings.Repeat("ef", 32))
	require.NoError(t, err)
	assert.False(t, check.Confirmed)
}

func TestVerifyAnchorAssetNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := testClient(t, server.URL, false)

	check, err := client.VerifyAnchor(context.Background(), 999, strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.False(t, check.Confirmed)
}

func TestVerifyAnchorMalformedNote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/assets/4242", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(AssetInfo{Index: 4242, Note: []byte("not json")})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := testClient(t, server.URL, false)

	_, err := client.VerifyAnchor(context.Background(), 4242, strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseAssetID(t *testing.T) {
	v, err := ParseAssetID("4242")
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), v)

	// One past MaxUint64
	_, err = ParseAssetID("18446744073709551616")
	assert.ErrorIs(t, err, ErrAssetIDOverflow)

	_, err = ParseAssetID("not-a-number")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAssetIDOverflow)
}

func TestParseSigningKey(t *testing.T) {
	key, err := ParseSigningKey(testSeed)
	require.NoError(t, err)
	assert.Len(t, key, ed25519.PrivateKeySize)

	_, err = ParseSigningKey("abcd")
	assert.Error(t, err)

	_, err = ParseSigningKey("zz")
	assert.Error(t, err)
}
