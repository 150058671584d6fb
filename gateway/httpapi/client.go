package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	sessauth "github.com/univcore/sessauth"
)

const defaultTimeout = 30 * time.Second

// Client talks to the university authentication backend over HTTP. It
// implements [sessauth.Gateway].
type Client struct {
	baseURL    string
	httpClient *http.Client

	// TokenProvider supplies the bearer token attached to authenticated
	// requests. Wire it to Store.Token after Build.
	TokenProvider func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenProvider sets the bearer-token source for authenticated calls.
func WithTokenProvider(fn func() string) Option {
	return func(c *Client) { c.TokenProvider = fn }
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the backend's failure envelope.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type loginRequest struct {
	Login     string `json:"login,omitempty"`
	StudentID string `json:"student_id,omitempty"`
	Password  string `json:"password"`
}

type loginResponse struct {
	Data struct {
		User  sessauth.RawUser `json:"user"`
		Token string           `json:"token"`
	} `json:"data"`
}

// Login authenticates creds. Staff authenticate by login, students by
// student ID; the backend decides which field it reads from the kind-scoped
// endpoint.
func (c *Client) Login(ctx context.Context, creds sessauth.Credentials) (*sessauth.LoginResult, error) {
	body := loginRequest{Password: creds.Secret}
	if creds.Kind == sessauth.KindStudent {
		body.StudentID = creds.Identifier
	} else {
		body.Login = creds.Identifier
	}

	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, c.kindPath(creds.Kind, "login"), body, false, &resp); err != nil {
		return nil, err
	}
	return &sessauth.LoginResult{
		User:        resp.Data.User,
		AccessToken: resp.Data.Token,
	}, nil
}

// Logout notifies the backend that the session ended.
func (c *Client) Logout(ctx context.Context, kind sessauth.PrincipalKind) error {
	return c.do(ctx, http.MethodPost, c.kindPath(kind, "logout"), nil, true, nil)
}

type refreshResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// RefreshToken exchanges the current token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context, kind sessauth.PrincipalKind) (*sessauth.RefreshResult, error) {
	var resp refreshResponse
	if err := c.do(ctx, http.MethodPost, c.kindPath(kind, "refresh-token"), nil, true, &resp); err != nil {
		return nil, err
	}
	return &sessauth.RefreshResult{AccessToken: resp.Data.Token}, nil
}

type userResponse struct {
	Data sessauth.RawUser `json:"data"`
}

// CurrentUser fetches the authenticated principal.
func (c *Client) CurrentUser(ctx context.Context, kind sessauth.PrincipalKind) (*sessauth.RawUser, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, c.kindPath(kind, "me"), nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// UpdateProfile pushes mutable identity fields.
func (c *Client) UpdateProfile(ctx context.Context, kind sessauth.PrincipalKind, data sessauth.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, c.kindPath(kind, "profile"), data, true, nil)
}

type avatarResponse struct {
	Data struct {
		ImageURL string `json:"image_url"`
	} `json:"data"`
}

// UploadAvatar streams an avatar image as multipart form data.
func (c *Client) UploadAvatar(ctx context.Context, kind sessauth.PrincipalKind, filename string, content io.Reader) (*sessauth.AvatarResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.kindPath(kind, "avatar"), &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.decorate(req, true)

	var resp avatarResponse
	if err := c.send(req, &resp); err != nil {
		return nil, err
	}
	return &sessauth.AvatarResult{ImageURL: resp.Data.ImageURL}, nil
}

type permissionsResponse struct {
	Data struct {
		Permissions []string `json:"permissions"`
	} `json:"data"`
}

// Permissions fetches the authoritative permission list for token. The token
// is passed explicitly rather than through TokenProvider because the store
// pins the token the refresh was started for.
func (c *Client) Permissions(ctx context.Context, token string) (*sessauth.PermissionList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/permissions", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())

	var resp permissionsResponse
	if err := c.send(req, &resp); err != nil {
		return nil, err
	}
	return &sessauth.PermissionList{Permissions: resp.Data.Permissions}, nil
}

func (c *Client) kindPath(kind sessauth.PrincipalKind, op string) string {
	return fmt.Sprintf("/%s/auth/%s", kind, op)
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req, authed)

	return c.send(req, out)
}

func (c *Client) decorate(req *http.Request, authed bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if authed && c.TokenProvider != nil {
		if token := c.TokenProvider(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError maps a non-2xx response onto *sessauth.GatewayError, carrying
// the backend's message when the body yields one.
func decodeError(resp *http.Response) error {
	limited := io.LimitReader(resp.Body, 64<<10)
	raw, _ := io.ReadAll(limited)

	var body errorBody
	message := ""
	if json.Unmarshal(raw, &body) == nil {
		message = body.Message
		if message == "" {
			message = body.Error
		}
	}
	return &sessauth.GatewayError{StatusCode: resp.StatusCode, Message: message}
}
