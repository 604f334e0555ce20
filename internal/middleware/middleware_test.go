// internal/middleware/middleware_test.go
//
// Unit-tests for RealIP, APIMetrics, and Security.

package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseTrusted(t *testing.T) {
	tr, err := ParseTrusted([]string{"10.0.0.1", "172.16.0.0/12", "::1"})
	if err != nil {
		t.Fatalf("ParseTrusted: %v", err)
	}
	for _, ip := range []string{"10.0.0.1", "172.20.1.1", "::1"} {
		if !tr.Contains(net.ParseIP(ip)) {
			t.Errorf("%s should be trusted", ip)
		}
	}
	if tr.Contains(net.ParseIP("10.0.0.2")) {
		t.Error("10.0.0.2 should not be trusted")
	}
	if _, err := ParseTrusted([]string{"nope"}); err == nil {
		t.Error("expected error for garbage entry")
	}
}

func TestClientIP(t *testing.T) {
	tr, _ := ParseTrusted([]string{"10.0.0.0/8"})

	cases := []struct {
		name, remote, xff, want string
	}{
		{"untrusted peer ignores header", "203.0.113.9:5000", "1.2.3.4", "203.0.113.9"},
		{"trusted peer uses header", "10.0.0.5:5000", "198.51.100.7", "198.51.100.7"},
		{"skips trusted hops", "10.0.0.5:5000", "198.51.100.7, 10.1.1.1", "198.51.100.7"},
		{"spoofed left entry ignored", "10.0.0.5:5000", "1.1.1.1, 198.51.100.7", "198.51.100.7"},
		{"no header", "10.0.0.5:5000", "", "10.0.0.5"},
		{"garbage hop stops walk", "10.0.0.5:5000", "198.51.100.7, junk", "10.0.0.5"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = c.remote
			if c.xff != "" {
				r.Header.Set("X-Forwarded-For", c.xff)
			}
			if got := tr.ClientIP(r).String(); got != c.want {
				t.Fatalf("ClientIP = %s, want %s", got, c.want)
			}
		})
	}
}

func TestRealIPRewritesRemoteAddr(t *testing.T) {
	tr, _ := ParseTrusted([]string{"10.0.0.5"})
	var seen string
	h := RealIP(tr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = r.RemoteAddr }))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if seen != "198.51.100.7:0" {
		t.Fatalf("RemoteAddr = %s", seen)
	}
}

type fakeRecorder struct {
	counters   map[string]float64
	histograms int
}

func (f *fakeRecorder) AddToCounter(name string, v float64) { f.counters[name] += v }
func (f *fakeRecorder) AddToHistogram(string, float64) { f.histograms++ }

func TestAPIMetrics(t *testing.T) {
	rec := &fakeRecorder{counters: map[string]float64{}}
	h := APIMetrics(rec, []string{"/healthz"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	for _, p := range []string{"/api/a", "/boom", "/healthz"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if rec.counters["requests_total"] != 2 || rec.counters["errors_total"] != 1 || rec.histograms != 2 {
		t.Fatalf("recorded %+v / %d", rec.counters, rec.histograms)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := Security(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/server/version", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("headers = %v", w.Header())
	}
}
