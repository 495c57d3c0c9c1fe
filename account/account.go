package account

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:2222/api"
	DefaultTimeout = 10 * time.Second

	// Error bodies larger than this are truncated
	maxBodySize = 64 * 1024
)

type Options struct {
	// BaseURL that the register and login endpoints live under
	BaseURL string

	// HTTPClient defaults to a client with DefaultTimeout
	HTTPClient *http.Client

	// UserAgent is sent with every request when set
	UserAgent string

	Log *zap.Logger
}

// Client calls the account HTTP API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	log       *zap.Logger
}

func New(options Options) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: options.UserAgent,
		http:      httpClient,
		log:       log,
	}
}

// StatusError is returned when the API answers with a non 2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string

	// Message is the "message" or "error" field of a JSON body, or the whole
	// body otherwise
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed: %s", e.Op, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("%s failed: %s: %s", e.Op, http.StatusText(e.StatusCode), e.Message)
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, login, password, confirmPassword string) error {
	form := url.Values{}
	form.Set("login", login)
	form.Set("password", password)
	form.Set("confirmPassword", confirmPassword)

	if err := c.post(ctx, "register", form); err != nil {
		return err
	}

	c.log.Debug("Registered", zap.String("login", login))
	return nil
}

// Login checks the credentials of an existing account.
func (c *Client) Login(ctx context.Context, login, password string) error {
	form := url.Values{}
	form.Set("login", login)
	form.Set("password", password)

	if err := c.post(ctx, "login", form); err != nil {
		return err
	}

	c.log.Debug("Logged in", zap.String("login", login))
	return nil
}

func (c *Client) post(ctx context.Context, op string, form url.Values) error {
	endpoint := c.baseURL + "/" + op

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	c.log.Debug("Account API replied",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Message:    errorMessage(body),
		}
	}

	return nil
}

func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"message", "error"} {
			if result := gjson.GetBytes(body, field); result.Exists() {
				return result.String()
			}
		}
	}

	return strings.TrimSpace(string(body))
}
