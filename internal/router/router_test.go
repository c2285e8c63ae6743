package router

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/coursetrack/internal/content"
	"github.com/patric-chuzhbe/coursetrack/internal/db/memorystorage"
	"github.com/patric-chuzhbe/coursetrack/internal/logger"
	"github.com/patric-chuzhbe/coursetrack/internal/mockstorage"
	"github.com/patric-chuzhbe/coursetrack/internal/models"
	"github.com/patric-chuzhbe/coursetrack/internal/service"
)

type initOption func(*initOptions)

type initOptions struct {
	mockStorage *mockstorage.StorageMock
}

func withMockStorage(db *mockstorage.StorageMock) initOption {
	return func(options *initOptions) {
		options.mockStorage = db
	}
}

func setupTestRouter(t *testing.T, optionsProto ...initOption) *httptest.Server {
	t.Helper()

	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := logger.Init("debug")
	require.NoError(t, err)

	contentRoot := t.TempDir()
	episodesDir := filepath.Join(contentRoot, "episodes")
	require.NoError(t, os.MkdirAll(episodesDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(episodesDir, "EP01-introduction.md"),
		[]byte("# Episode one"),
		0644,
	))
	deepDir := filepath.Join(contentRoot, "deep-learning", "EP01")
	require.NoError(t, os.MkdirAll(deepDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(deepDir, "basics.md"), []byte("deep basics"), 0644))

	var theService *service.Service
	if options.mockStorage != nil {
		theService = service.New(options.mockStorage)
	} else {
		db, err := memorystorage.New()
		require.NoError(t, err)
		theService = service.New(db)
	}

	theRouter := New(theService, content.New(contentRoot))

	server := httptest.NewServer(theRouter)
	t.Cleanup(server.Close)

	return server
}

func registerTestUser(t *testing.T, server *httptest.Server, username, password string) {
	t.Helper()

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"username": username, "password": password}).
		Post(server.URL + "/api/auth")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestPostAPIAuth(t *testing.T) {
	server := setupTestRouter(t)

	type tExpectedResponse struct {
		code     int
		username string
		message  string
	}
	testCases := []struct {
		name             string
		body             string
		expectedResponse tExpectedResponse
	}{
		{
			name: "registration",
			body: `{"username":"alice","password":"p1"}`,
			expectedResponse: tExpectedResponse{
				code:     http.StatusOK,
				username: "alice",
				message:  "registration successful",
			},
		},
		{
			name: "login_with_the_same_credentials",
			body: `{"username":"alice","password":"p1"}`,
			expectedResponse: tExpectedResponse{
				code:     http.StatusOK,
				username: "alice",
				message:  "login successful",
			},
		},
		{
			name: "wrong_password",
			body: `{"username":"alice","password":"oops"}`,
			expectedResponse: tExpectedResponse{
				code: http.StatusUnauthorized,
			},
		},
		{
			name: "missing_password",
			body: `{"username":"alice"}`,
			expectedResponse: tExpectedResponse{
				code: http.StatusBadRequest,
			},
		},
		{
			name: "missing_username",
			body: `{"password":"p1"}`,
			expectedResponse: tExpectedResponse{
				code: http.StatusBadRequest,
			},
		},
		{
			name: "malformed_JSON",
			body: `{username:`,
			expectedResponse: tExpectedResponse{
				code: http.StatusBadRequest,
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := resty.New().R().
				SetHeader("Content-Type", "application/json").
				SetBody(testCase.body).
				Post(server.URL + "/api/auth")
			require.NoError(t, err)

			assert.Equal(t, testCase.expectedResponse.code, resp.StatusCode(), "Response code didn't match expected value")

			if testCase.expectedResponse.code == http.StatusOK {
				var authResponse models.AuthResponse
				require.NoError(t, json.Unmarshal(resp.Body(), &authResponse))
				assert.True(t, authResponse.Success)
				assert.Equal(t, testCase.expectedResponse.username, authResponse.Username)
				assert.Equal(t, testCase.expectedResponse.message, authResponse.Message)
				assert.JSONEq(t, `{"completedEpisodes":[],"currentEpisode":1}`, string(authResponse.Data))
			} else {
				var errorResponse models.ErrorResponse
				require.NoError(t, json.Unmarshal(resp.Body(), &errorResponse))
				assert.NotEmpty(t, errorResponse.Error)
			}
		})
	}

	t.Run("unsupported_method_get", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/auth")
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode())
	})
}

// The raw username is sanitized before the record is created, so the
// progress of "álice!!" lives under the identifier "lice".
func TestAuthSanitizesUsernameEndToEnd(t *testing.T) {
	server := setupTestRouter(t)

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"username":"álice!!","password":"p1"}`).
		Post(server.URL + "/api/auth")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var authResponse models.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &authResponse))
	assert.Equal(t, "lice", authResponse.Username)

	resp, err = resty.New().R().Get(server.URL + "/api/progress/lice")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var progressResponse models.ProgressResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &progressResponse))
	assert.True(t, progressResponse.Success)
	assert.JSONEq(t, `{"completedEpisodes":[],"currentEpisode":1}`, string(progressResponse.Progress))
}

func TestProgressEndpoints(t *testing.T) {
	server := setupTestRouter(t)
	registerTestUser(t, server, "alice", "p1")

	t.Run("unknown user", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/progress/nobody")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())

		resp, err = resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(`{"progress":{}}`).
			Post(server.URL + "/api/progress/nobody")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	})

	t.Run("save then get returns exactly the value just set", func(t *testing.T) {
		newProgress := `{"completedEpisodes":[1,2,3],"currentEpisode":4,"streak":9}`

		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(fmt.Sprintf(`{"progress":%s}`, newProgress)).
			Post(server.URL + "/api/progress/alice")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())

		var saveResponse models.SaveResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &saveResponse))
		assert.True(t, saveResponse.Success)

		resp, err = resty.New().R().Get(server.URL + "/api/progress/alice")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		var progressResponse models.ProgressResponse
		require.NoError(t, json.Unmarshal(resp.Body(), &progressResponse))
		assert.JSONEq(t, newProgress, string(progressResponse.Progress))
	})

	t.Run("path username is sanitized", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/progress/a!l@ice")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
	})
}

func TestNotesEndpoints(t *testing.T) {
	server := setupTestRouter(t)
	registerTestUser(t, server, "alice", "p1")

	saveNote := func(t *testing.T, episodeID, noteType, noteContent string) *resty.Response {
		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]string{
				"episodeId": episodeID,
				"noteType":  noteType,
				"content":   noteContent,
			}).
			Post(server.URL + "/api/notes/alice")
		require.NoError(t, err)
		return resp
	}

	t.Run("unknown user", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/notes/nobody")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	})

	t.Run("sibling note types are preserved", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, saveNote(t, "3", "reflection", "hello").StatusCode())
		assert.Equal(t, http.StatusOK, saveNote(t, "3", "summary", "world").StatusCode())

		resp, err := resty.New().R().Get(server.URL + "/api/notes/alice/3")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		var notesResponse struct {
			Success bool                         `json:"success"`
			Notes   map[string]map[string]string `json:"notes"`
		}
		require.NoError(t, json.Unmarshal(resp.Body(), &notesResponse))
		assert.True(t, notesResponse.Success)
		assert.Equal(t, "hello", notesResponse.Notes["reflection"]["content"])
		assert.Equal(t, "world", notesResponse.Notes["summary"]["content"])
	})

	t.Run("full mapping without episode id", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, saveNote(t, "5", "reflection", "later").StatusCode())

		resp, err := resty.New().R().Get(server.URL + "/api/notes/alice")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		var notesResponse struct {
			Success bool                       `json:"success"`
			Notes   map[string]json.RawMessage `json:"notes"`
		}
		require.NoError(t, json.Unmarshal(resp.Body(), &notesResponse))
		assert.Len(t, notesResponse.Notes, 2)
	})

	t.Run("absent episode yields empty mapping", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/notes/alice/42")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.JSONEq(t, `{"success":true,"notes":{}}`, string(resp.Body()))
	})

	t.Run("missing required fields", func(t *testing.T) {
		resp, err := resty.New().R().
			SetHeader("Content-Type", "application/json").
			SetBody(`{"content":"orphan"}`).
			Post(server.URL + "/api/notes/alice")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})
}

func TestGetAPIHealth(t *testing.T) {
	server := setupTestRouter(t)

	resp, err := resty.New().R().Get(server.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var healthResponse models.HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &healthResponse))
	assert.Equal(t, "ok", healthResponse.Status)
	assert.False(t, healthResponse.Time.IsZero())
}

func TestGetAPIContent(t *testing.T) {
	server := setupTestRouter(t)

	t.Run("episode file", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/content/episode/1")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.JSONEq(t, `{"success":true,"content":"# Episode one"}`, string(resp.Body()))
	})

	t.Run("supplement file", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/content/deep-learning/1/basics")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.JSONEq(t, `{"success":true,"content":"deep basics"}`, string(resp.Body()))
	})

	t.Run("supplement listing", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/content/deep-learning/1")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
		assert.JSONEq(t, `{"success":true,"files":["basics"]}`, string(resp.Body()))
	})

	t.Run("unknown episode", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/content/episode/99")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	})

	t.Run("unknown kind", func(t *testing.T) {
		resp, err := resty.New().R().Get(server.URL + "/api/content/secrets/1")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	})
}

func TestStorageFailureGivesInternalError(t *testing.T) {
	db := new(mockstorage.StorageMock)
	server := setupTestRouter(t, withMockStorage(db))

	db.On("Load", mock.Anything, "alice").
		Return(nil, errors.New("db error"))

	resp, err := resty.New().R().Get(server.URL + "/api/progress/alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.JSONEq(t, `{"error":"internal error"}`, string(resp.Body()))
}

func TestPostAPIAuthForGzip(t *testing.T) {
	server := setupTestRouter(t)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"username":"alice","password":"p1"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Content-Encoding", "gzip").
		SetHeader("Accept-Encoding", "gzip").
		SetBody(buf.Bytes()).
		Post(server.URL + "/api/auth")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	var authResponse models.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body(), &authResponse))
	assert.True(t, authResponse.Success)
	assert.Equal(t, "alice", authResponse.Username)
}
