package peertube_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gemeindemedia/sermonpress/internal/publish"
	"github.com/gemeindemedia/sermonpress/internal/publish/peertube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstance struct {
	server *httptest.Server

	tokenRequests  int
	uploadedFields map[string]string
	uploadedFile   []byte
	rejectLogin    bool
	failUploads    bool
}

func newFakeInstance(t *testing.T) *fakeInstance {
	instance := &fakeInstance{}
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/users/token", func(w http.ResponseWriter, r *http.Request) {
		instance.tokenRequests++
		require.NoError(t, r.ParseForm())

		if instance.rejectLogin || r.PostFormValue("password") != "hunter2" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}

		assert.Equal(t, "uploader", r.PostFormValue("username"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token-123","token_type":"Bearer","expires_in":86400}`))
	})

	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"videoChannels":[{"id":42,"displayName":"Main"},{"id":77,"displayName":"Other"}]}`))
	})

	mux.HandleFunc("/api/v1/videos/upload", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		if instance.failUploads {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("quota exceeded"))
			return
		}
		require.NoError(t, r.ParseMultipartForm(1<<20))

		instance.uploadedFields = make(map[string]string)
		for key, values := range r.MultipartForm.Value {
			instance.uploadedFields[key] = values[0]
		}

		file, _, err := r.FormFile("videofile")
		require.NoError(t, err)
		defer file.Close()
		content := make([]byte, 64)
		n, _ := file.Read(content)
		instance.uploadedFile = content[:n]

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"video": map[string]any{"id": 9, "uuid": "aaaa-bbbb-cccc"},
		})
	})

	instance.server = httptest.NewServer(mux)
	t.Cleanup(instance.server.Close)
	return instance
}

func (instance *fakeInstance) config() peertube.Config {
	return peertube.Config{
		URL:          instance.server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Username:     "Uploader",
		Password:     "hunter2",
	}
}

func tempVideoFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "2023-05-07_Gnade_Mueller.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0644))
	return path
}

func Test_Connect_ResolvesDefaultChannel(t *testing.T) {
	instance := newFakeInstance(t)

	client := peertube.New(instance.config(), time.Second*5)
	err := client.Connect(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, instance.tokenRequests)
}

func Test_Connect_RejectedCredentialsReportedAsAuthFailure(t *testing.T) {
	instance := newFakeInstance(t)
	instance.rejectLogin = true

	client := peertube.New(instance.config(), time.Second*5)
	err := client.Connect(context.Background())

	assert.ErrorIs(t, err, publish.ErrAuth)
}

func Test_Upload_PublicVideoReturnsWatchURL(t *testing.T) {
	instance := newFakeInstance(t)

	client := peertube.New(instance.config(), time.Second*5)
	require.NoError(t, client.Connect(context.Background()))

	watchURL, err := client.Upload(context.Background(), publish.UploadRequest{
		Path:        tempVideoFile(t),
		DisplayName: "Gnade // Mueller // Gottesdienst am 07.05.2023",
		Language:    "de",
		Privacy:     publish.PrivacyPublic,
	})

	require.NoError(t, err)
	assert.Equal(t, instance.server.URL+"/videos/watch/aaaa-bbbb-cccc", watchURL)
	assert.Equal(t, "Gnade // Mueller // Gottesdienst am 07.05.2023", instance.uploadedFields["name"])
	assert.Equal(t, "42", instance.uploadedFields["channelId"])
	assert.Equal(t, "1", instance.uploadedFields["privacy"])
	assert.Equal(t, "de", instance.uploadedFields["language"])
	assert.NotContains(t, instance.uploadedFields, "videoPasswords[0]")
	assert.Equal(t, []byte("not really a video"), instance.uploadedFile)
}

func Test_Upload_PasswordProtectedVideoCarriesPassword(t *testing.T) {
	instance := newFakeInstance(t)

	client := peertube.New(instance.config(), time.Second*5)
	require.NoError(t, client.Connect(context.Background()))

	_, err := client.Upload(context.Background(), publish.UploadRequest{
		Path:        tempVideoFile(t),
		DisplayName: "Taufe am 07.05.2023",
		Language:    "de",
		Privacy:     publish.PrivacyPasswordProtected,
		Password:    "taufe07052023",
	})

	require.NoError(t, err)
	assert.Equal(t, "5", instance.uploadedFields["privacy"])
	assert.Equal(t, "taufe07052023", instance.uploadedFields["videoPasswords[0]"])
}

func Test_Upload_WithoutConnectFails(t *testing.T) {
	t.Parallel()

	client := peertube.New(peertube.Config{URL: "http://localhost:1"}, time.Second)
	_, err := client.Upload(context.Background(), publish.UploadRequest{Path: "nope.mp4"})

	assert.ErrorIs(t, err, publish.ErrAuth)
}

func Test_Upload_ServerErrorSurfacedAsRequestError(t *testing.T) {
	instance := newFakeInstance(t)
	instance.failUploads = true

	client := peertube.New(instance.config(), time.Second*5)
	require.NoError(t, client.Connect(context.Background()))

	_, err := client.Upload(context.Background(), publish.UploadRequest{
		Path:        tempVideoFile(t),
		DisplayName: "irrelevant",
		Privacy:     publish.PrivacyPublic,
	})

	var requestError *peertube.RequestError
	require.ErrorAs(t, err, &requestError)
	assert.Equal(t, http.StatusInternalServerError, requestError.StatusCode)
	assert.NotErrorIs(t, err, publish.ErrAuth)
}
