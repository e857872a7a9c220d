package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVault serves payload for every read at path and rejects other tokens.
func fakeVault(t *testing.T, path string, payload map[string]any) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/"+path {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Vault-Token") != "dev-token" {
			http.Error(w, "permission denied", http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": payload})
	}))
	t.Cleanup(server.Close)

	t.Setenv("VAULT_ADDR", server.URL)
	t.Setenv("VAULT_TOKEN", "dev-token")
}

func TestResolveVault(t *testing.T) {
	kv2 := map[string]any{"data": map[string]any{"mysql_password": "s3cret", "port": 3306}}
	kv1 := map[string]any{"mysql_password": "flat"}

	tests := []struct {
		name    string
		payload map[string]any
		path    string
		ref     string
		want    string
		wantErr string
	}{
		{"kv v2", kv2, "secret/data/my2lite", "secret/data/my2lite#mysql_password", "s3cret", ""},
		{"kv v1", kv1, "kv/my2lite", "kv/my2lite#mysql_password", "flat", ""},
		{"missing key", kv2, "secret/data/my2lite", "secret/data/my2lite#nope", "", `key "nope" not found`},
		{"not a string", kv2, "secret/data/my2lite", "secret/data/my2lite#port", "", "is not a string"},
		{"no secret", kv2, "secret/data/my2lite", "secret/data/other#k", "", "other"},
		{"no separator", kv2, "secret/data/my2lite", "secret/data/my2lite", "", "expected format path#key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeVault(t, tt.path, tt.payload)

			got, err := resolveVault(tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveVault_RequiresEnv(t *testing.T) {
	t.Setenv("VAULT_ADDR", "")
	t.Setenv("VAULT_TOKEN", "")
	_, err := resolveVault("secret/data/my2lite#k")
	assert.ErrorContains(t, err, "VAULT_ADDR")

	t.Setenv("VAULT_ADDR", "http://127.0.0.1:8200")
	_, err = resolveVault("secret/data/my2lite#k")
	assert.ErrorContains(t, err, "VAULT_TOKEN")
}

func TestResolveValue_VaultReference(t *testing.T) {
	fakeVault(t, "secret/data/my2lite", map[string]any{"data": map[string]any{"mysql_password": "hunter2"}})

	got, err := ResolveValue("${VAULT:secret/data/my2lite#mysql_password}")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}
