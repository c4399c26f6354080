// Package api is the HTTP client for the task server. Every call
// follows the same contract: a JSON body with ok:false or a non-2xx
// status is a failure, and the body's error field (when the response is
// JSON) is the user-facing message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"pado/internal/task"
)

const requestTimeout = 10 * time.Second

// Client talks to the remote task server. The session cookie issued by
// /auth lives in the jar, so one Client is one logged-in session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func New(baseURL string, log *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar, Timeout: requestTimeout},
		log:        log,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.log.Debug("request", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
	return resp, nil
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

// remoteError turns a response into the user-facing failure message:
// the JSON body's error field when present, else the generic template.
func remoteError(resp *http.Response, body []byte) error {
	if isJSON(resp) {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
			return fmt.Errorf("%s", env.Error)
		}
	}
	return fmt.Errorf("Request failed (%d)", resp.StatusCode)
}

// checkResponse reads the body and applies the shared failure contract.
func checkResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, remoteError(resp, body)
	}
	if isJSON(resp) {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && env.OK != nil && !*env.OK {
			return nil, remoteError(resp, body)
		}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	body, err := checkResponse(resp)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	resp, err := c.do(ctx, method, path, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	body, err := checkResponse(resp)
	if err != nil {
		return err
	}
	if out == nil || !isJSON(resp) || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Lists implements backend.Backend.
func (c *Client) Lists(ctx context.Context) ([]task.List, error) {
	var lists []task.List
	if err := c.getJSON(ctx, "/lists", &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateList implements backend.Backend. The creator owns the list.
func (c *Client) CreateList(ctx context.Context, name string) (task.List, error) {
	var created createListResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/lists", listPayload{Name: name}, &created); err != nil {
		return task.List{}, err
	}
	return task.List{ID: created.ID, Name: name, IsOwner: true}, nil
}

// Members implements backend.Backend.
func (c *Client) Members(ctx context.Context, listID int) ([]task.Member, error) {
	var members []task.Member
	if err := c.getJSON(ctx, fmt.Sprintf("/lists/%d/members", listID), &members); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember implements backend.Backend.
func (c *Client) AddMember(ctx context.Context, listID int, username string) error {
	return c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/lists/%d/members", listID), memberPayload{Username: username}, nil)
}

// RemoveMember implements backend.Backend.
func (c *Client) RemoveMember(ctx context.Context, listID, userID int) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/lists/%d/members/%d", listID, userID), struct{}{}, nil)
}

// Tasks implements backend.Backend. listID 0 omits the scope parameter
// and selects the Personal set.
func (c *Client) Tasks(ctx context.Context, listID int) ([]task.Task, error) {
	path := "/tasks"
	if listID != task.PersonalListID {
		path = fmt.Sprintf("/tasks?list_id=%d", listID)
	}
	var tasks []task.Task
	if err := c.getJSON(ctx, path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask implements backend.Backend.
func (c *Client) CreateTask(ctx context.Context, t task.Task) error {
	return c.sendJSON(ctx, http.MethodPost, "/tasks", payloadFor(t), nil)
}

// UpdateTask implements backend.Backend.
func (c *Client) UpdateTask(ctx context.Context, id int, t task.Task) error {
	return c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d", id), payloadFor(t), nil)
}

// SetDone implements backend.Backend.
func (c *Client) SetDone(ctx context.Context, id int, done bool) error {
	return c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d", id), donePayload{Done: task.Flag(done)}, nil)
}

// DeleteTask implements backend.Backend.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), struct{}{}, nil)
}

// RestoreTask implements backend.Backend. The server assigns a fresh
// id and its own ordering; identity and position are only preserved by
// the local backend.
func (c *Client) RestoreTask(ctx context.Context, t task.Task, _ int) error {
	return c.CreateTask(ctx, t)
}

func payloadFor(t task.Task) taskPayload {
	return taskPayload{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
		Priority:    t.Priority,
		ListID:      t.ListID,
	}
}

// postForm drives the form-encoded auth endpoints, which keep the
// server-rendered fallback: a non-JSON 2xx means success with nothing
// to say.
func (c *Client) postForm(ctx context.Context, path string, form url.Values) (AuthResult, error) {
	resp, err := c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return AuthResult{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AuthResult{}, fmt.Errorf("read response: %w", err)
	}

	var auth authResponse
	if isJSON(resp) {
		if err := json.Unmarshal(body, &auth); err != nil {
			return AuthResult{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || (auth.OK != nil && !*auth.OK) {
		if auth.Error != "" {
			return AuthResult{}, fmt.Errorf("%s", auth.Error)
		}
		return AuthResult{}, fmt.Errorf("Request failed (%d)", resp.StatusCode)
	}
	return AuthResult{Message: auth.Message, Redirect: auth.Redirect}, nil
}

// Login authenticates and leaves the session cookie in the jar.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResult, error) {
	return c.postForm(ctx, "/auth", url.Values{
		"action":   {"login"},
		"username": {username},
		"password": {password},
	})
}

// Signup creates an account. Credential validation happens before this
// call; see the auth package.
func (c *Client) Signup(ctx context.Context, username, name, security, password string) (AuthResult, error) {
	return c.postForm(ctx, "/auth", url.Values{
		"action":   {"signup"},
		"username": {username},
		"name":     {name},
		"security": {security},
		"password": {password},
	})
}

// ResetPassword exchanges the security answer for a new password.
func (c *Client) ResetPassword(ctx context.Context, username, security, newPassword string) (AuthResult, error) {
	return c.postForm(ctx, "/forgot", url.Values{
		"username":     {username},
		"security":     {security},
		"new_password": {newPassword},
	})
}
