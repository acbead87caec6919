package tlspin

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFingerprint(t *testing.T) {
	sum := sha256.Sum256([]byte("cert"))
	plain := hex.EncodeToString(sum[:])

	colons := make([]string, 0, len(sum))
	for _, b := range sum {
		colons = append(colons, strings.ToUpper(hex.EncodeToString([]byte{b})))
	}

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "lower hex", in: plain},
		{name: "upper hex", in: strings.ToUpper(plain)},
		{name: "colon separated", in: strings.Join(colons, ":")},
		{name: "odd length", in: plain[:len(plain)-1], wantErr: true},
		{name: "not hex", in: "zz" + plain[2:], wantErr: true},
		{name: "too short", in: plain[:32], wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, err := ParseFingerprint(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFingerprint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Fingerprint(sum), fp)
		})
	}
}

func TestFingerprintString(t *testing.T) {
	fp := Fingerprint(sha256.Sum256([]byte("cert")))
	parsed, err := ParseFingerprint(fp.String())
	require.NoError(t, err)
	assert.Equal(t, fp, parsed)
}

func TestClient_PinnedCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pinned"))
	}))
	defer srv.Close()

	c := NewClient(Fingerprint(sha256.Sum256(srv.Certificate().Raw)), 5*time.Second)
	defer c.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pinned", string(body))
}

func TestClient_RejectsOtherCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request must not reach the server")
	}))
	defer srv.Close()

	c := NewClient(Fingerprint(sha256.Sum256([]byte("some other certificate"))), 5*time.Second)
	defer c.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = c.Do(req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFingerprintMismatch)
}

func TestClient_WrapRoundTripper(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var calls int
	count := func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return next.RoundTrip(r)
		})
	}

	c := NewClient(Fingerprint(sha256.Sum256(srv.Certificate().Raw)), 5*time.Second, count)
	defer c.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 1, calls)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
