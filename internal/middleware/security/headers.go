package security

import (
	"fmt"
	"net/http"
	"strings"
)

// HeadersConfig holds security and CORS header configuration
type HeadersConfig struct {
	CSP string

	// HSTS is only sent on TLS connections.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string

	// CORS
	AllowOrigin  string
	AllowMethods []string
	AllowHeaders []string
	ExposeHeader []string
	MaxAge       int
}

// DefaultHeadersConfig returns defaults for a JSON API consumed by a browser
// front end served from another origin.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                 "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:          31536000,
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		CrossOriginResource: "cross-origin",

		AllowOrigin:  "*",
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposeHeader: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:       600,
	}
}

// HeadersMiddleware applies security headers to responses
type HeadersMiddleware struct {
	config HeadersConfig
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

// Middleware sets the headers and answers CORS preflight requests itself.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.applyHeaders(w, r)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) applyHeaders(w http.ResponseWriter, r *http.Request) {
	headers := w.Header()

	headers.Set("X-Content-Type-Options", h.config.XContentTypeOptions)
	headers.Set("X-Frame-Options", h.config.XFrameOptions)
	headers.Set("Referrer-Policy", h.config.ReferrerPolicy)
	headers.Set("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)
	if h.config.CSP != "" {
		headers.Set("Content-Security-Policy", h.config.CSP)
	}

	if r.TLS != nil && h.config.HSTSMaxAge > 0 {
		hsts := fmt.Sprintf("max-age=%d", h.config.HSTSMaxAge)
		if h.config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		headers.Set("Strict-Transport-Security", hsts)
	}

	if h.config.AllowOrigin == "" {
		return
	}
	headers.Set("Access-Control-Allow-Origin", h.config.AllowOrigin)
	if len(h.config.ExposeHeader) > 0 {
		headers.Set("Access-Control-Expose-Headers", strings.Join(h.config.ExposeHeader, ", "))
	}
	if r.Method == http.MethodOptions {
		headers.Set("Access-Control-Allow-Methods", strings.Join(h.config.AllowMethods, ", "))
		headers.Set("Access-Control-Allow-Headers", strings.Join(h.config.AllowHeaders, ", "))
		if h.config.MaxAge > 0 {
			headers.Set("Access-Control-Max-Age", fmt.Sprint(h.config.MaxAge))
		}
	}
}
