package http

import (
	"net/http"
	"strconv"
	"strings"
)

// DefaultMaxWidth is the widest viewport, in CSS pixels, still served.
const DefaultMaxWidth = 480

// Viewport client hints, in order of preference.
var widthHints = []string{"Sec-CH-Viewport-Width", "Viewport-Width"}

var mobileTokens = []string{"mobi", "android", "iphone", "ipod", "ipad", "windows phone", "blackberry", "opera mini"}

// Gate decides whether a request comes from a mobile device.
type Gate struct {
	MaxWidth int

	// OnReject, if set, is called for every refused request.
	OnReject func(r *http.Request)
}

// IsMobile classifies r. A viewport width hint wins, then the Sec-CH-UA-Mobile
// hint, then the User-Agent. Requests carrying no signal at all are treated
// as mobile.
func (g Gate) IsMobile(r *http.Request) bool {
	for _, h := range widthHints {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			if width, err := strconv.ParseFloat(v, 64); err == nil {
				return width <= float64(g.width())
			}
		}
	}

	switch strings.TrimSpace(r.Header.Get("Sec-CH-UA-Mobile")) {
	case "?1":
		return true
	case "?0":
		return false
	}

	ua := strings.ToLower(r.UserAgent())
	if ua == "" {
		return true
	}
	for _, token := range mobileTokens {
		if strings.Contains(ua, token) {
			return true
		}
	}
	return false
}

// Middleware rejects non-mobile requests with 403.
func (g Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Accept-CH", "Sec-CH-Viewport-Width, Viewport-Width, Sec-CH-UA-Mobile")
		w.Header().Add("Vary", "Sec-CH-Viewport-Width, Viewport-Width, Sec-CH-UA-Mobile, User-Agent")
		if !g.IsMobile(r) {
			if g.OnReject != nil {
				g.OnReject(r)
			}
			writeJSON(w, http.StatusForbidden, errorResponse{
				Error: "unavailable on this device",
				Title: "Mobile Only",
				Message: "This app is designed for mobile devices. Please visit on a phone or " +
					"resize your browser to a mobile width (" + strconv.Itoa(g.width()) + "px or less) to continue.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g Gate) width() int {
	if g.MaxWidth <= 0 {
		return DefaultMaxWidth
	}
	return g.MaxWidth
}
