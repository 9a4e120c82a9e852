package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
)

// Dispatcher delivers one chat message and returns the reply.
type Dispatcher interface {
	Dispatch(ctx context.Context, message string) (string, error)
}

// ReplyError is an error payload returned by the chat action.
// Message is what the session shows the user; it may be empty.
type ReplyError struct {
	Status  int
	Message string
}

func (e *ReplyError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chat action failed with status %d", e.Status)
	}
	return fmt.Sprintf("chat action failed with status %d: %s", e.Status, e.Message)
}

// LocalDispatcher runs the chat service in process.
type LocalDispatcher struct {
	svc *Service
}

// NewLocalDispatcher wraps svc as a Dispatcher.
func NewLocalDispatcher(svc *Service) *LocalDispatcher {
	return &LocalDispatcher{svc: svc}
}

// Dispatch implements Dispatcher.
func (d *LocalDispatcher) Dispatch(ctx context.Context, message string) (string, error) {
	reply, err := d.svc.Reply(ctx, message)
	if errors.Is(err, domain.ErrInvalidMessage) {
		return "", &ReplyError{Status: http.StatusBadRequest, Message: InvalidMessageReply}
	}
	return reply, err
}

// Client posts messages to a remote chat action as multipart form data,
// the same way the chat page does.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an HTTP dispatcher for the server at baseURL.
// A nil httpClient gets a client with a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Dispatch implements Dispatcher. Non-2xx responses become a *ReplyError
// carrying the payload's message when there is one.
func (c *Client) Dispatch(ctx context.Context, message string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("message", message); err != nil {
		return "", fmt.Errorf("encode chat form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("encode chat form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ActionPath, &body)
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var reply domain.ChatReply
	decodeErr := json.Unmarshal(data, &reply)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ReplyError{Status: resp.StatusCode, Message: reply.Message}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}
	return reply.Message, nil
}
