package httpapi

import (
	"bytes"
	"embed"
	"html"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

//go:embed assets
var assets embed.FS

const baseHrefPlaceholder = "<!-- BASE_HREF -->"

// webRoot describes where the UI is mounted and holds the rendered index page.
type webRoot struct {
	prefix string
	href   string
	index  []byte
	built  time.Time
}

func newWebRoot(baseURL, basePath string) webRoot {
	root := webRoot{prefix: mountPrefix(basePath), built: time.Now()}
	root.href = baseHref(baseURL, root.prefix)
	if page, err := fs.ReadFile(assets, "assets/index.html"); err == nil {
		root.index = injectBaseHref(page, root.href)
	}
	return root
}

// mountPrefix turns a configured base path into "" or "/segment[/segment]".
func mountPrefix(value string) string {
	path := strings.Trim(strings.TrimSpace(value), "/")
	if path == "" {
		return ""
	}
	return "/" + path
}

func baseHref(baseURL, prefix string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/") + prefix
	if base == "" {
		return ""
	}
	return base + "/"
}

func injectBaseHref(page []byte, href string) []byte {
	tag := ""
	if href != "" {
		tag = `<base href="` + html.EscapeString(href) + `" />`
	}
	return bytes.Replace(page, []byte(baseHrefPlaceholder), []byte(tag), 1)
}

func (w webRoot) static() http.Handler {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/assets/", http.FileServer(http.FS(sub)))
}

func (w webRoot) serveIndex(rw http.ResponseWriter, r *http.Request) {
	if w.index == nil {
		http.Error(rw, "index not found", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(rw, r, "index.html", w.built, bytes.NewReader(w.index))
}

// mount serves handler below the prefix and redirects the bare prefix to its slash form.
func (w webRoot) mount(handler http.Handler) http.Handler {
	if w.prefix == "" {
		return handler
	}
	prefix := w.prefix
	root := http.NewServeMux()
	root.Handle(prefix+"/", http.StripPrefix(prefix, handler))
	root.HandleFunc(prefix, func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != prefix {
			http.NotFound(rw, r)
			return
		}
		http.Redirect(rw, r, prefix+"/", http.StatusTemporaryRedirect)
	})
	return root
}
