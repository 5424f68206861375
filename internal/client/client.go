// Package client is a typed HTTP client for the store-rating API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// APIError is a non-success response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the API on behalf of the session owner.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	session *Session
	logger  *logrus.Logger
}

// New constructs a client for the API rooted at baseURL (for example
// http://localhost:8080). A nil session is replaced by an in-memory one.
func New(baseURL string, timeout time.Duration, session *Session, logger *logrus.Logger) (*Client, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if session == nil {
		session = NewSession("")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse api url: %q is not absolute", baseURL)
	}
	return &Client{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		session: session,
		logger:  logger,
	}, nil
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session { return c.session }

// do sends the request and decodes the envelope's data into out. It returns
// the HTTP status. A 401 clears the session.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (int, error) {
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + "/api" + path
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.session.Clear(); err != nil {
			c.logger.WithError(err).Warn("client: clear session")
		}
	}
	if err := decodeEnvelope(resp.StatusCode, raw, out); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}

func decodeEnvelope(status int, raw []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status >= http.StatusBadRequest {
			return &APIError{Status: status, Message: http.StatusText(status)}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success || status >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{Status: status, Message: msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

type authData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates an account and stores the issued token in the session.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (User, error) {
	var data authData
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &data); err != nil {
		return User{}, err
	}
	return data.User, c.session.Save(data.Token)
}

// Login authenticates and stores the issued token in the session.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var data authData
	body := map[string]string{"email": email, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &data); err != nil {
		return User{}, err
	}
	return data.User, c.session.Save(data.Token)
}

// Logout clears the session. Tokens are not revoked server-side.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Profile returns the logged-in user.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var data struct {
		User User `json:"user"`
	}
	_, err := c.do(ctx, http.MethodGet, "/user/profile", nil, nil, &data)
	return data.User, err
}

// UpdatePassword changes the logged-in user's password.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	_, err := c.do(ctx, http.MethodPut, "/user/update-password", nil, body, nil)
	return err
}

// Stores lists active stores with their aggregates.
func (c *Client) Stores(ctx context.Context) ([]Store, error) {
	var data struct {
		Stores []Store `json:"stores"`
	}
	_, err := c.do(ctx, http.MethodGet, "/ratings/stores", nil, nil, &data)
	return data.Stores, err
}

// Rate submits or replaces the caller's rating of a store. created is true
// for a first rating.
func (c *Client) Rate(ctx context.Context, storeID string, score int, comment string) (rating Rating, created bool, err error) {
	body := map[string]interface{}{"storeId": storeID, "rating": score}
	if comment != "" {
		body["comment"] = comment
	}
	var data struct {
		Rating Rating `json:"rating"`
	}
	status, err := c.do(ctx, http.MethodPost, "/ratings/rate", nil, body, &data)
	if err != nil {
		return Rating{}, false, err
	}
	return data.Rating, status == http.StatusCreated, nil
}

// MyRatings lists the caller's ratings, newest first.
func (c *Client) MyRatings(ctx context.Context) ([]Rating, error) {
	var data struct {
		Ratings []Rating `json:"ratings"`
	}
	_, err := c.do(ctx, http.MethodGet, "/ratings/my-ratings", nil, nil, &data)
	return data.Ratings, err
}

// OwnerDashboard returns the store owner's overview.
func (c *Client) OwnerDashboard(ctx context.Context) (OwnerDashboard, error) {
	var data OwnerDashboard
	_, err := c.do(ctx, http.MethodGet, "/store-owner/dashboard", nil, nil, &data)
	return data, err
}

// CreateStore creates the store owner's store.
func (c *Client) CreateStore(ctx context.Context, in StoreRequest) (Store, error) {
	in.OwnerID = ""
	return c.storeCall(ctx, http.MethodPost, "/store-owner/store", in)
}

// UpdateStore changes the non-empty fields of the store owner's store.
func (c *Client) UpdateStore(ctx context.Context, in StoreRequest) (Store, error) {
	in.OwnerID = ""
	return c.storeCall(ctx, http.MethodPut, "/store-owner/store", in)
}

func (c *Client) storeCall(ctx context.Context, method, path string, in StoreRequest) (Store, error) {
	var data struct {
		Store Store `json:"store"`
	}
	_, err := c.do(ctx, method, path, nil, in, &data)
	return data.Store, err
}

// OwnerAnalytics returns the monthly trend of the owner's store.
func (c *Client) OwnerAnalytics(ctx context.Context) (OwnerAnalytics, error) {
	var data OwnerAnalytics
	_, err := c.do(ctx, http.MethodGet, "/store-owner/analytics", nil, nil, &data)
	return data, err
}

// AdminDashboard returns platform totals.
func (c *Client) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	var data AdminDashboard
	_, err := c.do(ctx, http.MethodGet, "/admin/dashboard-stats", nil, nil, &data)
	return data, err
}

// AdminUsers lists users; query carries optional search, role, name, email
// and address filters.
func (c *Client) AdminUsers(ctx context.Context, query url.Values) ([]User, error) {
	var data struct {
		Users []User `json:"users"`
	}
	_, err := c.do(ctx, http.MethodGet, "/admin/users", query, nil, &data)
	return data.Users, err
}

// AdminUser returns one user with the store they own.
func (c *Client) AdminUser(ctx context.Context, id string) (UserDetail, error) {
	var data struct {
		User UserDetail `json:"user"`
	}
	_, err := c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(id), nil, nil, &data)
	return data.User, err
}

// AdminCreateUser creates an account with any role.
func (c *Client) AdminCreateUser(ctx context.Context, in RegisterRequest) (User, error) {
	var data struct {
		User User `json:"user"`
	}
	_, err := c.do(ctx, http.MethodPost, "/admin/users", nil, in, &data)
	return data.User, err
}

// AdminStores lists all stores; query carries optional browse parameters.
func (c *Client) AdminStores(ctx context.Context, query url.Values) ([]Store, error) {
	var data struct {
		Stores []Store `json:"stores"`
	}
	_, err := c.do(ctx, http.MethodGet, "/admin/stores", query, nil, &data)
	return data.Stores, err
}

// AdminCreateStore creates a store for the store owner in.OwnerID.
func (c *Client) AdminCreateStore(ctx context.Context, in StoreRequest) (Store, error) {
	return c.storeCall(ctx, http.MethodPost, "/admin/stores", in)
}

// AdminStoreRatings lists every rating of a store.
func (c *Client) AdminStoreRatings(ctx context.Context, storeID string) ([]Rating, error) {
	var data struct {
		Ratings []Rating `json:"ratings"`
	}
	_, err := c.do(ctx, http.MethodGet, "/admin/stores/"+url.PathEscape(storeID)+"/ratings", nil, nil, &data)
	return data.Ratings, err
}

// AdminStoreOwners lists store owners without a store.
func (c *Client) AdminStoreOwners(ctx context.Context) ([]User, error) {
	var data struct {
		StoreOwners []User `json:"storeOwners"`
	}
	_, err := c.do(ctx, http.MethodGet, "/admin/store-owners", nil, nil, &data)
	return data.StoreOwners, err
}
