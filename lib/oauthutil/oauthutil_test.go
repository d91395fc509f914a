package oauthutil

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenServer returns a server which hands out access tokens and
// counts the requests for them
func tokenServer(t *testing.T, requests *int32) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"secret-token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// apiServer returns a server which records the Authorization header
func apiServer(t *testing.T, auth *string) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func serviceAccountJSON(t *testing.T, tokenURL string) []byte {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"client_email":   "bot@project.iam.gserviceaccount.com",
		"private_key_id": "1",
		"private_key":    string(keyPEM),
		"token_uri":      tokenURL,
	})
	require.NoError(t, err)
	return data
}

func TestNewClientServiceAccount(t *testing.T) {
	var requests int32
	tokens := tokenServer(t, &requests)
	var auth string
	api := apiServer(t, &auth)

	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, serviceAccountJSON(t, tokens.URL), 0600))

	client, err := NewClient(context.Background(), &Credentials{ServiceAccountFile: path, Impersonate: "tutor@example.com"}, nil, "scope")
	require.NoError(t, err)
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "Bearer secret-token", auth)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestNewClientTokenFile(t *testing.T) {
	var requests int32
	tokens := tokenServer(t, &requests)
	var auth string
	api := apiServer(t, &auth)

	data, err := json.Marshal(map[string]string{
		"type":          "authorized_user",
		"client_id":     "id",
		"client_secret": "secret",
		"refresh_token": "refresh",
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, data, 0600))

	// point the token exchange at the test server
	base := &http.Client{Transport: rewriteTransport{target: tokens.URL}}
	client, err := NewClient(context.Background(), &Credentials{TokenFile: path}, base, "scope")
	require.NoError(t, err)
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "Bearer secret-token", auth)
}

func TestNewClientErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewClient(context.Background(), &Credentials{ServiceAccountFile: filepath.Join(dir, "missing.json")}, nil)
	assert.Error(t, err)
	_, err = NewClient(context.Background(), &Credentials{ServiceAccountCredentials: "not json"}, nil)
	assert.Error(t, err)
	_, err = NewClient(context.Background(), &Credentials{TokenFile: filepath.Join(dir, "missing.json")}, nil)
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	client := &http.Client{}
	ctx := Context(context.Background(), client)
	assert.Equal(t, client, ctx.Value(oauth2.HTTPClient))
}

// rewriteTransport sends requests for the Google token endpoint to
// target
type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != "oauth2.googleapis.com" {
		return http.DefaultTransport.RoundTrip(req)
	}
	newReq, err := http.NewRequestWithContext(req.Context(), req.Method, rt.target, req.Body)
	if err != nil {
		return nil, err
	}
	newReq.Header = req.Header
	return http.DefaultTransport.RoundTrip(newReq)
}
