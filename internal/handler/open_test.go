package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadhub/pkg/token"
)

func doRequest(t *testing.T, method, url string, headers map[string]string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, buf)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Error.Code
}

func TestOpenAPI_GetAppInfo(t *testing.T) {
	t.Parallel()

	srv := newTestServer(seededStore())
	defer srv.Close()

	t.Run("valid api key resolves app and user", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo",
			map[string]string{"api-key": seedAPIKey}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			App  struct{ ID string }
			User struct{ ID string }
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, seedAppID, body.App.ID)
		assert.Equal(t, seedUserID, body.User.ID)
	})

	t.Run("wrong api key", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo",
			map[string]string{"api-key": "wrong"}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", errorCode(t, raw))
	})

	t.Run("no credential", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo", nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", errorCode(t, raw))
	})
}

func TestOpenAPI_SignedTokenFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(seededStore())
	defer srv.Close()

	t.Run("issued token authenticates", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodPost, srv.URL+"/api/generate-token", nil,
			map[string]string{"clientId": seedClientID})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var issued struct {
			Token     string `json:"token"`
			ExpiresIn int64  `json:"expiresIn"`
		}
		require.NoError(t, json.Unmarshal(raw, &issued))
		require.NotEmpty(t, issued.Token)
		assert.EqualValues(t, 3600, issued.ExpiresIn)

		claims, err := token.Verify(issued.Token, seedAPIKey)
		require.NoError(t, err)
		assert.Equal(t, seedClientID, claims.ClientID)

		resp, raw = doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo",
			map[string]string{"signed-token": issued.Token}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			App struct{ ID string }
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, seedAppID, body.App.ID)
	})

	t.Run("unknown client id", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodPost, srv.URL+"/api/generate-token", nil,
			map[string]string{"clientId": "deadbeef"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", errorCode(t, raw))
	})

	t.Run("tampered token", func(t *testing.T) {
		signed, err := token.Issue(seedClientID, "not-the-secret", 0)
		require.NoError(t, err)

		resp, raw := doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo",
			map[string]string{"signed-token": signed}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", errorCode(t, raw))
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo",
			map[string]string{"signed-token": "not.a.jwt"}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("api key wins over signed token", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo",
			map[string]string{"api-key": "wrong", "signed-token": "ignored"}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestOpenAPI_FileLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(seededStore())
	defer srv.Close()

	creds := map[string]string{"api-key": seedAPIKey}

	resp, raw := doRequest(t, http.MethodPost, srv.URL+"/api/open/saveFile", creds,
		map[string]string{
			"name": "photo.png",
			"path": "https://bucket.s3.amazonaws.com/2024-05-01/photo.png",
			"type": "image/png",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var saved struct {
		ID   string `json:"id"`
		Path string `json:"path"`
		App  struct{ ID string }
	}
	require.NoError(t, json.Unmarshal(raw, &saved))
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "/2024-05-01/photo.png", saved.Path)
	assert.Equal(t, seedAppID, saved.App.ID)

	resp, raw = doRequest(t, http.MethodGet, srv.URL+"/api/open/getFiles", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Files []struct{ ID string }
		Total int64
		Page  int
		Limit int
	}
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list.Files, 1)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)

	resp, _ = doRequest(t, http.MethodDelete, srv.URL+"/api/open/deleteFile/"+saved.ID, creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = doRequest(t, http.MethodGet, srv.URL+"/api/open/getFiles", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Empty(t, list.Files)

	resp, raw = doRequest(t, http.MethodDelete, srv.URL+"/api/open/deleteFile/"+saved.ID, creds, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, raw))
}

func TestOpenAPI_CreatePresignedURL(t *testing.T) {
	t.Parallel()

	srv := newTestServer(seededStore())
	defer srv.Close()

	creds := map[string]string{"api-key": seedAPIKey}

	t.Run("issues signed put url against fallback", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodPost, srv.URL+"/api/open/createPresignedUrl", creds,
			map[string]any{"filename": "a b.png", "contentType": "image/png", "size": 10})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			URL    string `json:"url"`
			Method string `json:"method"`
			Key    string `json:"key"`
			App    struct{ ID string }
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, http.MethodPut, body.Method)
		assert.Contains(t, body.Key, "/a_b.png")
		assert.Contains(t, body.URL, "X-Amz-Expires=60")
		assert.Equal(t, seedAppID, body.App.ID)
	})

	t.Run("rejects missing metadata", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodPost, srv.URL+"/api/open/createPresignedUrl", creds,
			map[string]any{"filename": "a.png"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "bad_request", errorCode(t, raw))
	})

	t.Run("unknown explicit storage id", func(t *testing.T) {
		resp, raw := doRequest(t, http.MethodPost, srv.URL+"/api/open/createPresignedUrl", creds,
			map[string]any{"filename": "a.png", "contentType": "image/png", "size": 10, "storageId": 404})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "not_found", errorCode(t, raw))
	})
}

func TestOpenAPI_CORS(t *testing.T) {
	t.Parallel()

	srv := newTestServer(seededStore())
	defer srv.Close()

	t.Run("preflight allows any origin and credential headers", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/open/getFiles", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://third-party.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "api-key")
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "signed-token")
		assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodDelete)
	})

	t.Run("actual response carries allow origin", func(t *testing.T) {
		resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/open/getAppInfo",
			map[string]string{"api-key": seedAPIKey, "Origin": "https://third-party.example"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(seededStore())
	defer srv.Close()

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/health/live", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := doRequest(t, http.MethodGet, srv.URL+"/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body.Status)
}
