package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_IsMobile(t *testing.T) {
	const desktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15"

	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{"no signal", nil, true},
		{"phone user agent", map[string]string{"User-Agent": iphoneUA}, true},
		{"android user agent", map[string]string{"User-Agent": "Mozilla/5.0 (Linux; Android 14) Chrome/120 Mobile"}, true},
		{"desktop user agent", map[string]string{"User-Agent": desktopUA}, false},
		{"narrow viewport", map[string]string{"Sec-CH-Viewport-Width": "390", "User-Agent": desktopUA}, true},
		{"exact breakpoint", map[string]string{"Viewport-Width": "480"}, true},
		{"wide viewport", map[string]string{"Sec-CH-Viewport-Width": "481", "User-Agent": iphoneUA}, false},
		{"unparseable width falls through", map[string]string{"Viewport-Width": "wide", "User-Agent": desktopUA}, false},
		{"mobile hint", map[string]string{"Sec-CH-UA-Mobile": "?1", "User-Agent": desktopUA}, true},
		{"desktop hint", map[string]string{"Sec-CH-UA-Mobile": "?0", "User-Agent": iphoneUA}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/catalog", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, Gate{}.IsMobile(req))
		})
	}
}

func TestGate_CustomWidth(t *testing.T) {
	req := httptest.NewRequest("GET", "/catalog", nil)
	req.Header.Set("Viewport-Width", "600")
	assert.False(t, Gate{}.IsMobile(req))
	assert.True(t, Gate{MaxWidth: 768}.IsMobile(req))
}

func TestGate_RejectsDesktop(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("POST", "/sessions", nil)
	req.Header.Set("Sec-CH-Viewport-Width", "1440")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable on this device", body.Error)
	assert.Equal(t, "Mobile Only", body.Title)
	assert.Contains(t, body.Message, "480px or less")
	assert.Contains(t, w.Header().Get("Accept-CH"), "Sec-CH-Viewport-Width")

	t.Run("health stays reachable", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set("Sec-CH-Viewport-Width", "1440")
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGate_OnReject(t *testing.T) {
	rejected := 0
	gate := &Gate{OnReject: func(*http.Request) { rejected++ }}
	f := newFixture(t, WithGate(gate))

	for _, width := range []string{"1024", "320"} {
		req := httptest.NewRequest("GET", "/catalog", nil)
		req.Header.Set("Viewport-Width", width)
		f.handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 1, rejected)
}

func TestGate_Disabled(t *testing.T) {
	f := newFixture(t, WithGate(nil))

	req := httptest.NewRequest("POST", "/sessions", nil)
	req.Header.Set("Sec-CH-Viewport-Width", "1440")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}
