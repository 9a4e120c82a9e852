package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareIssuesVisitorCookie(t *testing.T) {
	var gotVisitor, gotSession string
	h := Middleware(true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVisitor = VisitorIDFromContext(r.Context())
		gotSession = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws/chat?session_id=tab-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if !isValidVisitorID(gotVisitor) {
		t.Fatalf("expected generated visitor id, got %q", gotVisitor)
	}
	if gotSession != "tab-1" {
		t.Errorf("expected session tab-1, got %q", gotSession)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != gotVisitor {
		t.Fatalf("expected visitor cookie %q, got %v", gotVisitor, cookies)
	}
	if cookies[0].Secure {
		t.Error("expected insecure cookie in development")
	}
}

func TestMiddlewareReusesValidCookie(t *testing.T) {
	const existing = "v_0123456789abcdef0123456789abcdef"
	var gotVisitor string
	h := Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVisitor = VisitorIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: existing})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotVisitor != existing {
		t.Errorf("expected %q, got %q", existing, gotVisitor)
	}
}

func TestMiddlewareReplacesForgedCookie(t *testing.T) {
	var gotVisitor string
	h := Middleware(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVisitor = VisitorIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: "admin"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotVisitor == "admin" || !isValidVisitorID(gotVisitor) {
		t.Errorf("expected a fresh visitor id, got %q", gotVisitor)
	}
}

func TestSanitizeSessionID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tab-1", "tab-1"},
		{"  tab.2  ", "tab.2"},
		{"", DefaultSessionIDValue},
		{"<script>", DefaultSessionIDValue},
	}
	for _, tt := range tests {
		if got := sanitizeSessionID(tt.in); got != tt.want {
			t.Errorf("sanitizeSessionID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSessionIDHeaderWinsOverQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?session_id=query", nil)
	req.Header.Set(SessionHeaderName, "header")
	if got := sessionIDFromRequest(req); got != "header" {
		t.Errorf("expected header session id, got %q", got)
	}
}
