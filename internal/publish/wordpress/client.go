// Package wordpress implements the CMS adapter over the WordPress
// XML-RPC API ('wp.uploadFile' for media, 'wp.newPost' for posts). It
// also provides the alternative local-copy audio hosting strategy for
// teams that serve the audio files from the same machine.
package wordpress

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gemeindemedia/sermonpress/internal/publish"
	"github.com/gemeindemedia/sermonpress/pkg/logger"
	"github.com/kolo/xmlrpc"
)

var log = logger.Get("WordPress")

const xmlrpcEndpoint = "/xmlrpc.php"

// WordPress uses blog ID 0 for single-site installations.
const blogID = 0

type (
	Config struct {
		URL      string `json:"url" env:"WORDPRESS_URL" validate:"required,url"`
		User     string `json:"user" env:"WORDPRESS_USER" validate:"required"`
		Password string `json:"password" env:"WORDPRESS_PASSWORD" validate:"required"`
	}

	// Client talks to a single WordPress installation. The XML-RPC
	// transport has no notion of a session; credentials accompany
	// every call.
	Client struct {
		config Config
		rpc    *xmlrpc.Client
	}

	mediaPayload struct {
		Name      string `xmlrpc:"name"`
		Type      string `xmlrpc:"type"`
		Bits      []byte `xmlrpc:"bits"`
		Overwrite bool   `xmlrpc:"overwrite"`
	}

	mediaResponse struct {
		ID   string `xmlrpc:"id"`
		File string `xmlrpc:"file"`
		URL  string `xmlrpc:"url"`
		Type string `xmlrpc:"type"`
	}

	postPayload struct {
		Type       string              `xmlrpc:"post_type"`
		Status     string              `xmlrpc:"post_status"`
		Title      string              `xmlrpc:"post_title"`
		Content    string              `xmlrpc:"post_content"`
		Date       time.Time           `xmlrpc:"post_date"`
		TermsNames map[string][]string `xmlrpc:"terms_names"`
	}
)

func New(config Config) (*Client, error) {
	rpc, err := xmlrpc.NewClient(strings.TrimRight(config.URL, "/")+xmlrpcEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot construct XML-RPC client: %w", err)
	}

	return &Client{config: config, rpc: rpc}, nil
}

// Publish uploads the file at the given path to the WordPress media
// library and returns the hosted URL. The XML-RPC library encodes the
// file contents as base64, so the whole file is read into memory; the
// audio files this pipeline produces are small enough for that.
//
// The context is accepted for interface symmetry but the underlying
// XML-RPC transport does not support cancellation.
func (client *Client) Publish(_ context.Context, path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read media file for upload: %w", err)
	}

	payload := mediaPayload{
		Name:      filepath.Base(path),
		Type:      mime.TypeByExtension(filepath.Ext(path)),
		Bits:      contents,
		Overwrite: false,
	}

	var uploaded mediaResponse
	args := []interface{}{blogID, client.config.User, client.config.Password, payload}
	if err := client.rpc.Call("wp.uploadFile", args, &uploaded); err != nil {
		return "", classifyFault(err)
	}

	log.Emit(logger.SUCCESS, "Media %s uploaded: %s\n", path, uploaded.URL)
	return uploaded.URL, nil
}

// Create publishes the draft as a new post and returns its ID.
func (client *Client) Create(_ context.Context, draft publish.PostDraft) (string, error) {
	payload := postPayload{
		Type:    "post",
		Status:  "publish",
		Title:   draft.Title,
		Content: draft.Body,
		Date:    draft.PublishedAt,
	}

	if draft.Category != "" {
		payload.TermsNames = map[string][]string{"category": {draft.Category}}
	}

	var postID string
	args := []interface{}{blogID, client.config.User, client.config.Password, payload}
	if err := client.rpc.Call("wp.newPost", args, &postID); err != nil {
		return "", classifyFault(err)
	}

	log.Emit(logger.SUCCESS, "Post %q created with ID %s\n", draft.Title, postID)
	return postID, nil
}

// classifyFault maps the WordPress fault for bad credentials (403) on
// to publish.ErrAuth; everything else passes through untouched.
func classifyFault(err error) error {
	var fault xmlrpc.FaultError
	if errors.As(err, &fault) && fault.Code == 403 {
		return fmt.Errorf("%w: %s", publish.ErrAuth, fault.String)
	}

	return err
}
