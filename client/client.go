// Package client talks to the SkillShare API and keeps a conversation list
// up to date, either by polling or over the WebSocket channel.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"skillshare/models"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
	ErrUnknown      = errors.New("unknown error")
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	client http.Client
	host   string

	mu    sync.RWMutex
	token string
}

// Session is returned by every call that signs the user in.
type Session struct {
	Token  string      `json:"token"`
	UserID string      `json:"userId"`
	User   models.User `json:"user"`
}

type CreatorData struct {
	University   string   `json:"university"`
	Major        string   `json:"major"`
	Skills       []string `json:"skills"`
	Bio          string   `json:"bio,omitempty"`
	PortfolioURL string   `json:"portfolioUrl,omitempty"`
}

// NewClient returns a client for host, e.g. http://localhost:8080. Every
// request is bounded by timeout.
func NewClient(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client: http.Client{Timeout: timeout},
		host:   strings.TrimRight(host, "/"),
	}
}

func (c *Client) Host() string {
	return c.host
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}, expected int) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.host+endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return err
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			log.Println("unable to close response body")
		}
	}()

	if err := checkStatus(response, expected); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(out)
}

func (c *Client) Signup(ctx context.Context, email, password, name string) (*Session, error) {
	return c.signIn(ctx, "/api/signup", map[string]string{"email": email, "password": password, "name": name}, http.StatusCreated)
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.signIn(ctx, "/api/login", map[string]string{"email": email, "password": password}, http.StatusOK)
}

func (c *Client) signIn(ctx context.Context, endpoint string, body interface{}, expected int) (*Session, error) {
	session := &Session{}
	if err := c.do(ctx, http.MethodPost, endpoint, body, session, expected); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return session, nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Conversations(ctx context.Context) ([]models.ConversationSummary, error) {
	var out struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// Messages opens the thread with otherUserID, which marks it read.
func (c *Client) Messages(ctx context.Context, otherUserID string) ([]models.ThreadMessage, error) {
	var out struct {
		Messages []models.ThreadMessage `json:"messages"`
	}
	endpoint := "/api/messages?otherUserId=" + url.QueryEscape(otherUserID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, receiverID, content string, attachments ...string) (*models.Message, error) {
	var out struct {
		Message models.Message `json:"message"`
	}
	body := map[string]interface{}{
		"receiverId":  receiverID,
		"content":     content,
		"attachments": attachments,
	}
	if err := c.do(ctx, http.MethodPost, "/api/messages", body, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

func (c *Client) MarkRead(ctx context.Context, otherUserID string) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/messages/read", map[string]string{"otherUserId": otherUserID}, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// UpgradeRole makes the signed in user a creator and switches to the
// returned token.
func (c *Client) UpgradeRole(ctx context.Context, data CreatorData) (*Session, error) {
	return c.signIn(ctx, "/api/user/upgrade-role", map[string]interface{}{"creatorData": data}, http.StatusOK)
}

type apiError struct {
	Error string `json:"error"`
}

func checkStatus(response *http.Response, expected int) error {
	if response.StatusCode == expected {
		return nil
	}

	var sentinel error
	switch {
	case response.StatusCode == http.StatusBadRequest:
		sentinel = ErrBadRequest
	case response.StatusCode == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case response.StatusCode == http.StatusForbidden:
		sentinel = ErrForbidden
	case response.StatusCode == http.StatusNotFound:
		sentinel = ErrNotFound
	case response.StatusCode == http.StatusConflict:
		sentinel = ErrConflict
	case response.StatusCode >= http.StatusInternalServerError:
		sentinel = ErrServer
	default:
		sentinel = ErrUnknown
	}

	var body apiError
	if err := json.NewDecoder(io.LimitReader(response.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("%w: %s", sentinel, body.Error)
	}
	return sentinel
}
