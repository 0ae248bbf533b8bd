package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(upstream string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewRelay(upstream, nil).Register(r)
	return r
}

func TestFilmStreamMissingParams(t *testing.T) {
	var upstreamCalls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)

	urls := []string{
		"/api/film-stream",
		"/api/film-stream?team=t1",
		"/api/film-stream?team=t1&upload=u1", // token missing
		"/api/film-stream?upload=u1&token=tok",
		"/api/clip-stream?team=t1&clip=c1",
	}

	for _, url := range urls {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", url, w.Code)
		}
		if w.Body.String() != "Missing params" {
			t.Errorf("GET %s: body = %q, want %q", url, w.Body.String(), "Missing params")
		}
	}

	if n := atomic.LoadInt32(&upstreamCalls); n != 0 {
		t.Errorf("upstream called %d times for invalid requests, want 0", n)
	}
}

func TestFilmStreamPassthrough(t *testing.T) {
	var gotAuth, gotPath, gotCache string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCache = r.Header.Get("Cache-Control")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Accept-Ranges", "bytes")
		w.Write([]byte("film-bytes"))
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/film-stream?team=t1&upload=u1&token=secret", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotPath != "/api/v1/teams/t1/film/u1/stream" {
		t.Errorf("upstream path = %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("upstream auth = %q, want %q", gotAuth, "Bearer secret")
	}
	if gotCache != "no-store" {
		t.Errorf("upstream cache-control = %q, want no-store", gotCache)
	}
	if ct := w.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", ct)
	}
	if w.Body.String() != "film-bytes" {
		t.Errorf("body = %q, want film-bytes", w.Body.String())
	}
}

func TestFilmStreamPartialContent(t *testing.T) {
	body := make([]byte, 1000)
	for i := range body {
		body[i] = byte(i % 251)
	}

	var gotRange string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Range", "bytes 0-999/5000")
		w.WriteHeader(http.StatusPartialContent)
		w.Write(body)
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	req := httptest.NewRequest(http.MethodGet, "/api/film-stream?team=t1&upload=u1&token=tok", nil)
	req.Header.Set("Range", "bytes=0-999")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if gotRange != "bytes=0-999" {
		t.Errorf("Range forwarded upstream = %q, want %q", gotRange, "bytes=0-999")
	}
	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", w.Code)
	}
	if cr := w.Header().Get("Content-Range"); cr != "bytes 0-999/5000" {
		t.Errorf("Content-Range = %q, want %q", cr, "bytes 0-999/5000")
	}
	got, _ := io.ReadAll(w.Body)
	if len(got) != len(body) {
		t.Fatalf("body length = %d, want %d", len(got), len(body))
	}
	for i := range got {
		if got[i] != body[i] {
			t.Fatalf("body differs from upstream at byte %d", i)
		}
	}
}

func TestFilmStreamForwardsAllUpstreamHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Header().Set("Cache-Control", "private, max-age=60")
		w.Header().Set("X-Request-Id", "req-42")
		w.Write([]byte("film-bytes"))
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/film-stream?team=t1&upload=u1&token=tok", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	want := map[string]string{
		"ETag":          `"abc123"`,
		"Last-Modified": "Mon, 02 Jan 2006 15:04:05 GMT",
		"Cache-Control": "private, max-age=60",
		"X-Request-Id":  "req-42",
	}
	for name, value := range want {
		if got := w.Header().Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
}

func TestCopyHeadersStripsHopByHop(t *testing.T) {
	src := http.Header{
		"Connection":        {"keep-alive"},
		"Keep-Alive":        {"timeout=5"},
		"Transfer-Encoding": {"chunked"},
		"ETag":              {`"abc123"`},
		"Content-Type":      {"video/mp4"},
	}
	dst := http.Header{}
	copyHeaders(dst, src)

	for _, name := range []string{"Connection", "Keep-Alive", "Transfer-Encoding"} {
		if _, ok := dst[name]; ok {
			t.Errorf("hop-by-hop header %s relayed", name)
		}
	}
	if dst.Get("ETag") != `"abc123"` || dst.Get("Content-Type") != "video/mp4" {
		t.Errorf("payload headers dropped: %v", dst)
	}
}

func TestClipStreamUpstreamErrorVerbatim(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"not found"}`))
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/clip-stream?team=t1&clip=c1&token=tok", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if w.Body.String() != `{"detail":"not found"}` {
		t.Errorf("body = %q, want upstream error text unchanged", w.Body.String())
	}
}

func TestClipStreamUpstreamPath(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/clip-stream?team=t9&clip=c42&token=tok", nil))

	if gotPath != "/api/v1/teams/t9/clips/c42/stream" {
		t.Errorf("upstream path = %q", gotPath)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
