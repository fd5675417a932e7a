package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMountPrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"notepad", "/notepad"},
		{"/notepad/", "/notepad"},
		{" /a/b// ", "/a/b"},
	}
	for _, tc := range cases {
		if got := mountPrefix(tc.in); got != tc.want {
			t.Fatalf("mountPrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBaseHref(t *testing.T) {
	cases := []struct {
		baseURL string
		prefix  string
		want    string
	}{
		{"", "", ""},
		{"", "/notepad", "/notepad/"},
		{"https://example.com", "", "https://example.com/"},
		{"https://example.com/", "/notepad", "https://example.com/notepad/"},
		{"https://example.com/base", "/x", "https://example.com/base/x/"},
	}
	for _, tc := range cases {
		if got := baseHref(tc.baseURL, tc.prefix); got != tc.want {
			t.Fatalf("baseHref(%q, %q) = %q, want %q", tc.baseURL, tc.prefix, got, tc.want)
		}
	}
}

func TestInjectBaseHrefEscapes(t *testing.T) {
	page := []byte("<head><!-- BASE_HREF --></head>")
	if got := string(injectBaseHref(page, "")); got != "<head></head>" {
		t.Fatalf("unexpected page without href: %q", got)
	}
	got := string(injectBaseHref(page, `/a"b/`))
	if !strings.Contains(got, `<base href="/a&#34;b/" />`) {
		t.Fatalf("expected escaped href, got %q", got)
	}
}

func TestMountRedirectsBarePrefix(t *testing.T) {
	root := newWebRoot("", "/notes")
	handler := root.mount(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))
	if rec.Code != http.StatusTemporaryRedirect || rec.Header().Get("Location") != "/notes/" {
		t.Fatalf("expected redirect to /notes/, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes/api/session", nil))
	if rec.Body.String() != "/api/session" {
		t.Fatalf("expected stripped path, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 outside prefix, got %d", rec.Code)
	}
}

func TestStaticServesAssets(t *testing.T) {
	rec := httptest.NewRecorder()
	newWebRoot("", "").static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/index.html", nil))
	if rec.Code != http.StatusOK && rec.Code != http.StatusMovedPermanently {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
