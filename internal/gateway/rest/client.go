// Package rest implements the api.Gateway interface against the remote
// store's REST boundary.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
	"golang.org/x/oauth2"

	"tasksync/internal/api"
	"tasksync/internal/config"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// AuthTimeout is the timeout for the token exchange.
	AuthTimeout = 30 * time.Second

	connectTimeout      = 5 * time.Second
	tlsHandshakeTimeout = 5 * time.Second
)

// see https://medium.com/@nate510/don-t-use-go-s-default-http-client-4804cb19f779
func defaultHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: connectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: tlsHandshakeTimeout,
	}
	return &http.Client{
		Transport: transport,
	}
}

// Client implements api.Gateway against the remote store's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	credential func() string
}

// New creates a new REST gateway for the configured remote store.
func New(cfg *config.Config) *Client {
	return NewWithHTTPClient(cfg.ServerURL, defaultHTTPClient())
}

// NewWithHTTPClient creates a gateway with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		credential: func() string { return "" },
	}
}

// SetCredentialSource sets the callback that yields the current bearer
// credential. The gateway reads it at call time and never stores it.
func (c *Client) SetCredentialSource(source func() string) {
	c.credential = source
}

// Authenticate implements api.Gateway using the store's OAuth2 password
// grant: a form-encoded POST to /token returning {access_token, token_type}.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, AuthTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	token, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			msg := detailMessage(retrieveErr.Body)
			if msg == "" {
				msg = "incorrect username or password"
			}
			return "", api.NewError(api.KindUnauthorized, "authenticate", msg, err)
		}
		return "", api.NewError(api.KindTransportFailure, "authenticate", "", err)
	}
	if token.AccessToken == "" {
		return "", api.NewError(api.KindMalformed, "authenticate", "token response missing access_token", nil)
	}
	return token.AccessToken, nil
}

// Register implements api.Gateway.
func (c *Client) Register(ctx context.Context, username, password string) (api.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var profile api.Profile
	if err := call(ctx, c, http.MethodPost, "/users/", "register", body, &profile); err != nil {
		return api.Profile{}, err
	}
	return profile, nil
}

// FetchProfile implements api.Gateway.
func (c *Client) FetchProfile(ctx context.Context) (api.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var profile api.Profile
	if err := call(ctx, c, http.MethodGet, "/users/me", "fetch-profile", nil, &profile); err != nil {
		return api.Profile{}, err
	}
	return profile, nil
}

// UpdateProfile implements api.Gateway.
func (c *Client) UpdateProfile(ctx context.Context, patch api.ProfilePatch) (api.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var profile api.Profile
	if err := call(ctx, c, http.MethodPut, "/users/me", "update-profile", patch, &profile); err != nil {
		return api.Profile{}, err
	}
	return profile, nil
}

// ListItems implements api.Gateway. All failures are absorbed into an empty
// list: reading the task list must never fail the caller.
func (c *Client) ListItems(ctx context.Context) ([]api.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var items []api.Item
	if err := call(ctx, c, http.MethodGet, "/todos/", "list-items", nil, &items); err != nil {
		glog.Infof("[gateway]list-items degraded to empty list: %v", err)
		return []api.Item{}, nil
	}
	if items == nil {
		items = []api.Item{}
	}
	return items, nil
}

// CreateItem implements api.Gateway.
func (c *Client) CreateItem(ctx context.Context, title string, priority api.Priority, tags []api.Tag) (api.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	body := struct {
		Title     string       `json:"title"`
		Completed bool         `json:"completed"`
		Priority  api.Priority `json:"priority,omitempty"`
		Tags      []api.Tag    `json:"tags,omitempty"`
	}{Title: title, Completed: false, Priority: priority, Tags: tags}

	var item api.Item
	if err := call(ctx, c, http.MethodPost, "/todos/", "create-item", body, &item); err != nil {
		return api.Item{}, err
	}
	return item, nil
}

// UpdateItem implements api.Gateway.
func (c *Client) UpdateItem(ctx context.Context, id int64, patch api.ItemPatch) (api.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var item api.Item
	path := fmt.Sprintf("/todos/%d", id)
	if err := call(ctx, c, http.MethodPut, path, "update-item", patch, &item); err != nil {
		return api.Item{}, err
	}
	return item, nil
}

// DeleteItem implements api.Gateway.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result okResult
	path := fmt.Sprintf("/todos/%d", id)
	if err := call(ctx, c, http.MethodDelete, path, "delete-item", nil, &result); err != nil {
		return err
	}
	if !result.OK {
		return api.NewError(api.KindMalformed, "delete-item", "store did not acknowledge the delete", nil)
	}
	return nil
}

// ReorderItems implements api.Gateway.
func (c *Client) ReorderItems(ctx context.Context, updates []api.OrderUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result okResult
	if err := call(ctx, c, http.MethodPut, "/todos/reorder", "reorder-items", updates, &result); err != nil {
		return err
	}
	if !result.OK {
		return api.NewError(api.KindMalformed, "reorder-items", "store did not acknowledge the reorder", nil)
	}
	return nil
}

type okResult struct {
	OK bool `json:"ok"`
}

// call performs one request/response exchange and classifies failures into
// the api error taxonomy. A nil body sends no payload; the decoded success
// payload is written to out.
func call[R any](ctx context.Context, c *Client, method, path, op string, body any, out *R) error {
	requestID := ulid.Make()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return api.NewError(api.KindMalformed, op, "", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return api.NewError(api.KindTransportFailure, op, "", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential := c.credential(); credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	glog.V(2).Infof("[gateway][%s]%s %s", requestID, method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.NewError(api.KindTransportFailure, op, "", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.NewError(api.KindTransportFailure, op, "", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		msg := detailMessage(respBody)
		if msg == "" {
			msg = "credential rejected"
		}
		return api.NewError(api.KindUnauthorized, op, msg, nil)
	}
	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		msg := detailMessage(respBody)
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		if msg == "" {
			msg = resp.Status
		}
		return api.NewError(api.KindRemoteRejected, op, msg, nil)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return api.NewError(api.KindMalformed, op, "unexpected response shape", err)
	}
	return nil
}

// detailMessage extracts the server-supplied {"detail": ...} reason, if any.
func detailMessage(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Detail)
}
