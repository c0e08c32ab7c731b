package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL:      server.URL,
		Endpoint:     "/web/api/v2.1/unified-assets",
		Token:        "test-token",
		UserAgent:    "sentinelmcp-test",
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		wantErr      string
		wantBaseURL  string
		wantEndpoint string
	}{
		{
			name:         "normalizes trailing and leading slashes",
			cfg:          Config{BaseURL: "https://console.example.com///", Endpoint: "web/api/v2.1/unified-assets/"},
			wantBaseURL:  "https://console.example.com",
			wantEndpoint: "/web/api/v2.1/unified-assets",
		},
		{
			name:    "rejects plain http",
			cfg:     Config{BaseURL: "http://console.example.com", Endpoint: "/x"},
			wantErr: "HTTPS",
		},
		{
			name:    "rejects empty base URL",
			cfg:     Config{Endpoint: "/x"},
			wantErr: "base URL",
		},
		{
			name:    "rejects empty endpoint",
			cfg:     Config{BaseURL: "https://console.example.com"},
			wantErr: "endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBaseURL, tt.cfg.BaseURL)
			assert.Equal(t, tt.wantEndpoint, tt.cfg.Endpoint)
		})
	}
}

func TestClient_List(t *testing.T) {
	t.Run("plain listing hits the base endpoint", func(t *testing.T) {
		var gotPath, gotQuery, gotAuth string
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			gotAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, `{
				"data": [{"id": "i1", "name": "web-prod-01", "resourceType": "Linux Server"}],
				"pagination": {"totalCount": 1, "limit": 50, "skip": 0}
			}`)
		})

		resp, err := client.List(context.Background(), 50, 0, "")
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "web-prod-01", resp.Data[0].Name)
		require.NotNil(t, resp.Pagination)
		require.NotNil(t, resp.Pagination.TotalCount)
		assert.Equal(t, 1, *resp.Pagination.TotalCount)

		assert.Equal(t, "/web/api/v2.1/unified-assets", gotPath)
		assert.Equal(t, "limit=50&skip=0", gotQuery)
		assert.Equal(t, "Bearer test-token", gotAuth)
	})

	t.Run("surface listing uses the surface path", func(t *testing.T) {
		var gotPath string
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			writeJSON(w, http.StatusOK, `{"data": []}`)
		})

		resp, err := client.List(context.Background(), 10, 20, SurfaceNetworkDiscovery)
		require.NoError(t, err)
		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
		assert.Equal(t, "/web/api/v2.1/unified-assets/surface/network_discovery", gotPath)
	})

	t.Run("transient statuses are retried", func(t *testing.T) {
		calls := 0
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				writeJSON(w, http.StatusServiceUnavailable, `{"message": "upstream draining"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"data": []}`)
		})

		_, err := client.List(context.Background(), 50, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted retries surface as a network error", func(t *testing.T) {
		calls := 0
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			writeJSON(w, http.StatusBadGateway, `{"error": "bad gateway"}`)
		})

		_, err := client.List(context.Background(), 50, 0, "")
		require.Error(t, err)
		assert.Equal(t, 3, calls)

		var netErr *graphql.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Contains(t, netErr.Message, "after 3 attempts")

		var apiErr *graphql.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, "bad gateway", apiErr.Message)
	})

	t.Run("500 is not retried", func(t *testing.T) {
		calls := 0
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			writeJSON(w, http.StatusInternalServerError, `{"message": "boom"}`)
		})

		_, err := client.List(context.Background(), 50, 0, "")
		require.Error(t, err)
		assert.Equal(t, 1, calls)

		var apiErr *graphql.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	})

	t.Run("auth failures are not retried", func(t *testing.T) {
		calls := 0
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			writeJSON(w, http.StatusUnauthorized, `{"message": "token expired"}`)
		})

		_, err := client.List(context.Background(), 50, 0, "")
		var authErr *graphql.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		assert.Equal(t, "token expired", authErr.Message)
		assert.Equal(t, 1, calls)
	})
}

func TestClient_Search(t *testing.T) {
	t.Run("filters and pagination share one filter object", func(t *testing.T) {
		var gotMethod string
		var gotBody map[string]any
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			writeJSON(w, http.StatusOK, `{
				"data": [{"id": "i2", "assetStatus": "Active"}],
				"pagination": {"totalCount": 1, "limit": 25, "skip": 0}
			}`)
		})

		resp, err := client.Search(context.Background(), map[string]any{
			"resourceType":   []string{"Windows Server"},
			"name__contains": []string{"prod"},
		}, 25, 0)
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Active", resp.Data[0].AssetStatus)

		assert.Equal(t, http.MethodPost, gotMethod)
		filterObj, ok := gotBody["filter"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{"Windows Server"}, filterObj["resourceType"])
		assert.Equal(t, []any{"prod"}, filterObj["name__contains"])
		assert.Equal(t, float64(25), filterObj["limit"])
		assert.Equal(t, float64(0), filterObj["skip"])
	})

	t.Run("empty filters still carry pagination", func(t *testing.T) {
		var gotBody map[string]any
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			writeJSON(w, http.StatusOK, `{"data": []}`)
		})

		_, err := client.Search(context.Background(), nil, 50, 100)
		require.NoError(t, err)

		filterObj, ok := gotBody["filter"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(50), filterObj["limit"])
		assert.Equal(t, float64(100), filterObj["skip"])
	})
}

func TestClient_Get(t *testing.T) {
	t.Run("found item comes back typed", func(t *testing.T) {
		var gotBody map[string]any
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			writeJSON(w, http.StatusOK, `{
				"data": [{"id": "i3", "name": "dc-01", "surfaces": ["ENDPOINT", "IDENTITY"]}],
				"pagination": {"totalCount": 1, "limit": 1, "skip": 0}
			}`)
		})

		item, err := client.Get(context.Background(), "i3")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "dc-01", item.Name)
		assert.Equal(t, []string{"ENDPOINT", "IDENTITY"}, item.Surfaces)

		filterObj, ok := gotBody["filter"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{"i3"}, filterObj["id__in"])
		assert.Equal(t, float64(1), filterObj["limit"])
	})

	t.Run("empty result means nil without error", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"data": []}`)
		})

		item, err := client.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("backend 404 also means nil", func(t *testing.T) {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"message": "not found"}`)
		})

		item, err := client.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func TestParseSurface(t *testing.T) {
	for _, surface := range Surfaces {
		parsed, err := ParseSurface(string(surface))
		require.NoError(t, err)
		assert.Equal(t, surface, parsed)
	}

	parsed, err := ParseSurface("")
	require.NoError(t, err)
	assert.Equal(t, Surface(""), parsed)

	_, err = ParseSurface("SPACE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NETWORK_DISCOVERY")
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"message key", `{"message": "bad filter"}`, "bad filter"},
		{"error key", `{"error": "nope"}`, "nope"},
		{"detail key", `{"detail": "denied"}`, "denied"},
		{"description key", `{"description": "slow down"}`, "slow down"},
		{"non-JSON body", `upstream exploded`, "upstream exploded"},
		{"empty body", ``, "no error details provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage([]byte(tt.raw)))
		})
	}
}
