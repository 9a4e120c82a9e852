package chat

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(message string) *http.Request {
	form := url.Values{"message": {message}}
	req := httptest.NewRequest(http.MethodPost, "/task/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func multipartRequest(t *testing.T, build func(mw *multipart.Writer)) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	build(mw)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/task/new", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		invalid bool
		fault   bool
	}{
		{name: "message", body: `{"message":"hello"}`, want: "hello"},
		{name: "whitespace is a message", body: `{"message":"   "}`, want: "   "},
		{name: "extra fields", body: `{"message":"hi","other":1}`, want: "hi"},
		{name: "empty object", body: `{}`, invalid: true},
		{name: "empty string", body: `{"message":""}`, invalid: true},
		{name: "null message", body: `{"message":null}`, invalid: true},
		{name: "number", body: `{"message":42}`, invalid: true},
		{name: "array body", body: `[]`, invalid: true},
		{name: "string body", body: `"hello"`, invalid: true},
		{name: "null body", body: `null`, fault: true},
		{name: "broken json", body: `{"message":`, fault: true},
		{name: "trailing garbage", body: `{"message":"hi"} x`, fault: true},
		{name: "empty body", body: ``, fault: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := DecodeJSON(strings.NewReader(tt.body))
			switch {
			case tt.invalid:
				assert.False(t, res.OK())
				assert.True(t, res.Invalid())
			case tt.fault:
				assert.False(t, res.OK())
				assert.False(t, res.Invalid())
				assert.ErrorIs(t, res.Reason, ErrMalformedBody)
			default:
				require.True(t, res.OK(), "unexpected reason: %v", res.Reason)
				assert.Equal(t, tt.want, res.Message)
			}
		})
	}
}

func TestDecodeFormURLEncoded(t *testing.T) {
	res := DecodeForm(formRequest("thanks a lot"))
	require.True(t, res.OK())
	assert.Equal(t, "thanks a lot", res.Message)

	res = DecodeForm(formRequest(""))
	assert.True(t, res.Invalid())
}

func TestDecodeFormMultipart(t *testing.T) {
	req := multipartRequest(t, func(mw *multipart.Writer) {
		require.NoError(t, mw.WriteField("message", "how are you"))
	})
	res := DecodeForm(req)
	require.True(t, res.OK())
	assert.Equal(t, "how are you", res.Message)
}

func TestDecodeFormMissingField(t *testing.T) {
	req := multipartRequest(t, func(mw *multipart.Writer) {
		require.NoError(t, mw.WriteField("other", "x"))
	})
	res := DecodeForm(req)
	assert.True(t, res.Invalid())
	assert.ErrorIs(t, res.Reason, domain.ErrInvalidMessage)
}

func TestDecodeFormFileIsNotAMessage(t *testing.T) {
	req := multipartRequest(t, func(mw *multipart.Writer) {
		fw, err := mw.CreateFormFile("message", "note.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("hello"))
		require.NoError(t, err)
	})
	res := DecodeForm(req)
	assert.True(t, res.Invalid())
}

func TestDecodeFormUnsupportedEncoding(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/task/new", strings.NewReader("message=hi"))
	req.Header.Set("Content-Type", "text/plain")

	res := Decode(req)
	assert.False(t, res.OK())
	assert.False(t, res.Invalid())
	assert.ErrorIs(t, res.Reason, ErrUnsupportedEncoding)

	req = httptest.NewRequest(http.MethodPost, "/task/new", strings.NewReader("message=hi"))
	res = Decode(req)
	assert.ErrorIs(t, res.Reason, ErrUnsupportedEncoding)
}

func TestDecodeTakesOnlyTheDeclaredPath(t *testing.T) {
	form := url.Values{"message": {"hello"}}
	req := httptest.NewRequest(http.MethodPost, "/task/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	res := Decode(req)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason, ErrMalformedBody)
}
