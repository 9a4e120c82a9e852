package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/ashureev/taskpilot/internal/domain"
)

// maxFormMemory bounds the in-memory part of a multipart body; the rest spills to disk.
const maxFormMemory = 1 << 20

var (
	// ErrMalformedBody is returned when a request body cannot be parsed at all.
	ErrMalformedBody = errors.New("malformed request body")
	// ErrUnsupportedEncoding is returned for non-JSON bodies that are not form encoded.
	ErrUnsupportedEncoding = errors.New("unsupported request encoding")
)

// DecodeResult carries either the decoded message or the reason decoding failed.
// Exactly one of the two is set.
type DecodeResult struct {
	Message string
	Reason  error
}

// OK reports whether a message was decoded.
func (d DecodeResult) OK() bool {
	return d.Reason == nil
}

// Invalid reports whether decoding failed because the message field itself
// was missing or unusable, as opposed to the body being unreadable.
func (d DecodeResult) Invalid() bool {
	return errors.Is(d.Reason, domain.ErrInvalidMessage)
}

func decoded(msg string) DecodeResult {
	return DecodeResult{Message: msg}
}

func failed(reason error) DecodeResult {
	return DecodeResult{Reason: reason}
}

// Decode reads the message field from r, choosing JSON or form decoding from
// the declared content type. Only one path is ever attempted.
func Decode(r *http.Request) DecodeResult {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return DecodeJSON(r.Body)
	}
	return DecodeForm(r)
}

// DecodeJSON reads a JSON object and extracts its string message field.
// A body that is valid JSON but not an object has no message field.
// A literal null body cannot be destructured and counts as malformed.
func DecodeJSON(body io.Reader) DecodeResult {
	data, err := io.ReadAll(body)
	if err != nil {
		return failed(fmt.Errorf("%w: %w", ErrMalformedBody, err))
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return failed(fmt.Errorf("%w: %w", ErrMalformedBody, err))
	}
	if payload == nil {
		return failed(fmt.Errorf("%w: null body", ErrMalformedBody))
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return failed(fmt.Errorf("%w: body is not an object", domain.ErrInvalidMessage))
	}
	return messageValue(obj["message"])
}

// DecodeForm reads the message field from a multipart or urlencoded form.
func DecodeForm(r *http.Request) DecodeResult {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return failed(fmt.Errorf("%w: %w", ErrUnsupportedEncoding, err))
	}

	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return failed(fmt.Errorf("%w: %w", ErrMalformedBody, err))
		}
		if r.MultipartForm != nil && len(r.MultipartForm.File["message"]) > 0 {
			return failed(fmt.Errorf("%w: message is a file", domain.ErrInvalidMessage))
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return failed(fmt.Errorf("%w: %w", ErrMalformedBody, err))
		}
	default:
		return failed(fmt.Errorf("%w: %s", ErrUnsupportedEncoding, mediaType))
	}

	values, ok := r.PostForm["message"]
	if !ok || len(values) == 0 {
		return failed(fmt.Errorf("%w: missing message field", domain.ErrInvalidMessage))
	}
	return messageValue(values[0])
}

func messageValue(v any) DecodeResult {
	msg, ok := v.(string)
	if !ok {
		return failed(fmt.Errorf("%w: message is %T", domain.ErrInvalidMessage, v))
	}
	if msg == "" {
		return failed(fmt.Errorf("%w: message is empty", domain.ErrInvalidMessage))
	}
	return decoded(msg)
}
