// Package peertube implements the video host adapter against the
// PeerTube REST API. Authentication uses the resource-owner password
// grant that PeerTube instances expose to their own clients; see
// https://docs.joinpeertube.org/api-rest-reference.html for details.
package peertube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gemeindemedia/sermonpress/internal/publish"
	"github.com/gemeindemedia/sermonpress/pkg/logger"
	"golang.org/x/oauth2"
)

var log = logger.Get("PeerTube")

const (
	tokenPathTemplate    = "%s/api/v1/users/token"
	userInfoPathTemplate = "%s/api/v1/users/me"
	uploadPathTemplate   = "%s/api/v1/videos/upload"
	watchURLTemplate     = "%s/videos/watch/%s"
)

// PeerTube wire values for the privacy setting of an uploaded video.
const (
	privacyPublic            = 1
	privacyPasswordProtected = 5
)

type (
	Config struct {
		URL          string `json:"url" env:"PEERTUBE_URL" validate:"required,url"`
		ClientID     string `json:"client_id" env:"PEERTUBE_CLIENT_ID" validate:"required"`
		ClientSecret string `json:"client_secret" env:"PEERTUBE_CLIENT_SECRET" validate:"required"`
		Username     string `json:"username" env:"PEERTUBE_USERNAME" validate:"required"`
		Password     string `json:"password" env:"PEERTUBE_PASSWORD" validate:"required"`
	}

	// Client is the authenticated handle on a PeerTube instance. It
	// must be connected (Connect) before videos can be uploaded; the
	// OAuth token and the default upload channel are resolved once and
	// reused for every upload of the run.
	Client struct {
		config    Config
		timeout   time.Duration
		http      *http.Client
		channelID int
	}

	userInfoResponse struct {
		VideoChannels []struct {
			ID          int    `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"videoChannels"`
	}

	uploadResponse struct {
		Video struct {
			ID   int    `json:"id"`
			UUID string `json:"uuid"`
		} `json:"video"`
	}
)

// RequestError describes a non-success response from the PeerTube API.
type RequestError struct {
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("peertube request failed (status %d): %s", e.StatusCode, e.Detail)
}

func New(config Config, timeout time.Duration) *Client {
	return &Client{
		config:  config,
		timeout: timeout,
	}
}

// Connect performs the OAuth2 password grant against the instance and
// resolves the account's default video channel. A credential rejection
// is reported as publish.ErrAuth, which the caller treats as fatal for
// the rest of the run.
func (client *Client) Connect(ctx context.Context) error {
	baseURL := client.baseURL()
	oauthConfig := &oauth2.Config{
		ClientID:     client.config.ClientID,
		ClientSecret: client.config.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  fmt.Sprintf(tokenPathTemplate, baseURL),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: client.timeout})

	// PeerTube stores usernames lowercased, regardless of how the
	// account was registered.
	username := strings.ToLower(client.config.Username)
	token, err := oauthConfig.PasswordCredentialsToken(ctx, username, client.config.Password)
	if err != nil {
		return fmt.Errorf("%w: %s", publish.ErrAuth, err.Error())
	}

	client.http = oauthConfig.Client(ctx, token)

	channelID, err := client.defaultChannel(ctx)
	if err != nil {
		return err
	}

	client.channelID = channelID
	log.Emit(logger.SUCCESS, "Authenticated against %s (default channel %d)\n", baseURL, channelID)
	return nil
}

// Upload sends the video at the requests path to the instance using a
// streaming multipart POST, and returns the public watch URL on success.
func (client *Client) Upload(ctx context.Context, request publish.UploadRequest) (string, error) {
	if client.http == nil {
		return "", fmt.Errorf("%w: client is not connected", publish.ErrAuth)
	}

	file, err := os.Open(request.Path)
	if err != nil {
		return "", fmt.Errorf("cannot open video file for upload: %w", err)
	}
	defer file.Close()

	fields := [][2]string{
		{"name", request.DisplayName},
		{"channelId", strconv.Itoa(client.channelID)},
		{"language", request.Language},
		{"commentsEnabled", "1"},
		{"nsfw", "0"},
	}

	switch request.Privacy {
	case publish.PrivacyPasswordProtected:
		fields = append(fields,
			[2]string{"privacy", strconv.Itoa(privacyPasswordProtected)},
			[2]string{"videoPasswords[0]", request.Password},
		)
	default:
		fields = append(fields, [2]string{"privacy", strconv.Itoa(privacyPublic)})
	}

	bodyReader, bodyWriter := io.Pipe()
	form := multipart.NewWriter(bodyWriter)
	go func() {
		err := writeUploadForm(form, fields, file, filepath.Base(request.Path))
		bodyWriter.CloseWithError(err)
	}()

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(uploadPathTemplate, client.baseURL()), bodyReader)
	if err != nil {
		return "", err
	}
	httpRequest.Header.Set("Content-Type", form.FormDataContentType())

	response, err := client.http.Do(httpRequest)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if err := checkResponse(response); err != nil {
		return "", err
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(response.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("malformed upload response: %w", err)
	}

	watchURL := fmt.Sprintf(watchURLTemplate, client.baseURL(), uploaded.Video.UUID)
	log.Emit(logger.SUCCESS, "Video %s uploaded: %s\n", request.Path, watchURL)
	return watchURL, nil
}

// defaultChannel resolves the first video channel of the authenticated
// account, which is the channel new accounts are created with.
func (client *Client) defaultChannel(ctx context.Context) (int, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(userInfoPathTemplate, client.baseURL()), nil)
	if err != nil {
		return 0, err
	}

	response, err := client.http.Do(httpRequest)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	if err := checkResponse(response); err != nil {
		return 0, err
	}

	var info userInfoResponse
	if err := json.NewDecoder(response.Body).Decode(&info); err != nil {
		return 0, fmt.Errorf("malformed user info response: %w", err)
	}

	if len(info.VideoChannels) == 0 {
		return 0, &RequestError{StatusCode: http.StatusOK, Detail: "authenticated user has no video channels"}
	}

	return info.VideoChannels[0].ID, nil
}

func (client *Client) baseURL() string {
	return strings.TrimRight(client.config.URL, "/")
}

func writeUploadForm(form *multipart.Writer, fields [][2]string, file *os.File, filename string) error {
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return err
		}
	}

	part, err := createVideoPart(form, filename)
	if err != nil {
		return err
	}

	if _, err := io.Copy(part, file); err != nil {
		return err
	}

	return form.Close()
}

// createVideoPart adds the 'videofile' part with the correct mime type
// for the file's extension, rather than the generic octet-stream the
// multipart package would declare by default.
func createVideoPart(form *multipart.Writer, filename string) (io.Writer, error) {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="videofile"; filename="%s"`, filename))

	if mimeType := mime.TypeByExtension(filepath.Ext(filename)); mimeType != "" {
		header.Set("Content-Type", mimeType)
	}

	return form.CreatePart(header)
}

// checkResponse classifies a non-2xx response; credential problems are
// wrapped in publish.ErrAuth so the driver can abort the run.
func checkResponse(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(response.Body, 2048))
	if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", publish.ErrAuth, strings.TrimSpace(string(detail)))
	}

	return &RequestError{StatusCode: response.StatusCode, Detail: strings.TrimSpace(string(detail))}
}
