package graphql

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
)

// RequestModifier allows you to tweak the HTTP request. It might be useful
// to set authentication headers amongst other things.
type RequestModifier func(*http.Request)

// AuthFunc returns the value of the auth header. An empty value adds no
// header.
type AuthFunc func() string

// StaticAuth returns an AuthFunc that always yields token.
func StaticAuth(token string) AuthFunc {
	return func() string { return token }
}

// HeaderConfig holds headers at three levels. Flattening applies Common,
// then the entry of the request method, then Header.
type HeaderConfig struct {
	Common http.Header
	// Methods is keyed by upper-case HTTP method.
	Methods map[string]http.Header
	Header  http.Header
}

// AuthURL restricts auth header injection by request URL. A nil list
// imposes no restriction.
type AuthURL struct {
	// Inclusive lists the only URLs that get the auth header.
	Inclusive []string
	// Exclusive lists URLs that never get the auth header.
	Exclusive []string
}

// RequestConfig describes one HTTP request, or the defaults of a Requester.
type RequestConfig struct {
	Method  string
	BaseURL string
	URL     string
	Params  url.Values
	Data    any
	Headers HeaderConfig
	// Timeout bounds the whole exchange. Zero means no timeout.
	Timeout time.Duration

	Auth    AuthFunc
	AuthKey string
	AuthURL AuthURL

	// RequestIDHeader, when set, names a header filled with a random UUID
	// unless the request already carries one.
	RequestIDHeader string

	CancelToken *CancelToken
	// Debug adds request and response details to returned errors.
	Debug    bool
	Modifier RequestModifier

	// GraphQL is the compilation a Client request was built from.
	GraphQL *Compilation
}

var (
	methodsNoData   = []string{http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions}
	methodsWithData = []string{http.MethodPost, http.MethodPut, http.MethodPatch}
)

// DefaultConfig returns the configuration every Requester starts from.
func DefaultConfig() *RequestConfig {
	cfg := &RequestConfig{
		Method: http.MethodGet,
		Headers: HeaderConfig{
			Common:  http.Header{"Accept": {"application/json, text/plain, */*"}},
			Methods: make(map[string]http.Header),
		},
		AuthKey: "Authorization",
	}
	for _, m := range methodsNoData {
		cfg.Headers.Methods[m] = http.Header{}
	}
	for _, m := range methodsWithData {
		cfg.Headers.Methods[m] = http.Header{"Content-Type": {"application/json;charset=utf-8"}}
	}
	return cfg
}

// mergeConfig returns a new config where every field set in override
// replaces the one of base. Headers are merged key by key.
func mergeConfig(base, override *RequestConfig) *RequestConfig {
	if base == nil {
		base = &RequestConfig{}
	}
	if override == nil {
		override = &RequestConfig{}
	}
	out := *base
	out.Method = lo.Ternary(override.Method != "", override.Method, base.Method)
	out.BaseURL = lo.Ternary(override.BaseURL != "", override.BaseURL, base.BaseURL)
	out.URL = lo.Ternary(override.URL != "", override.URL, base.URL)
	out.AuthKey = lo.Ternary(override.AuthKey != "", override.AuthKey, base.AuthKey)
	out.RequestIDHeader = lo.Ternary(override.RequestIDHeader != "", override.RequestIDHeader, base.RequestIDHeader)
	if override.Params != nil {
		out.Params = override.Params
	}
	if override.Data != nil {
		out.Data = override.Data
	}
	if override.Timeout > 0 {
		out.Timeout = override.Timeout
	}
	if override.Auth != nil {
		out.Auth = override.Auth
	}
	if override.AuthURL.Inclusive != nil {
		out.AuthURL.Inclusive = override.AuthURL.Inclusive
	}
	if override.AuthURL.Exclusive != nil {
		out.AuthURL.Exclusive = override.AuthURL.Exclusive
	}
	if override.CancelToken != nil {
		out.CancelToken = override.CancelToken
	}
	if override.Modifier != nil {
		out.Modifier = override.Modifier
	}
	if override.GraphQL != nil {
		out.GraphQL = override.GraphQL
	}
	out.Debug = base.Debug || override.Debug
	out.Headers = mergeHeaderConfig(base.Headers, override.Headers)
	return &out
}

func mergeHeaderConfig(base, override HeaderConfig) HeaderConfig {
	out := HeaderConfig{
		Common:  mergeHeader(base.Common, override.Common),
		Header:  mergeHeader(base.Header, override.Header),
		Methods: make(map[string]http.Header, len(base.Methods)),
	}
	for m, h := range base.Methods {
		out.Methods[strings.ToUpper(m)] = h.Clone()
	}
	for m, h := range override.Methods {
		m = strings.ToUpper(m)
		out.Methods[m] = mergeHeader(out.Methods[m], h)
	}
	return out
}

func mergeHeader(base, override http.Header) http.Header {
	if base == nil && override == nil {
		return nil
	}
	out := base.Clone()
	if out == nil {
		out = http.Header{}
	}
	for k, v := range override {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// flattenHeaders collapses the header levels for method into one header.
func flattenHeaders(h HeaderConfig, method string) http.Header {
	out := http.Header{}
	for _, level := range []http.Header{h.Common, h.Methods[strings.ToUpper(method)], h.Header} {
		for k, v := range level {
			out[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
	return out
}

// injectAuth sets the auth header when cfg allows it for its URL and the
// header is not already present.
func injectAuth(header http.Header, cfg *RequestConfig) {
	if cfg.Auth == nil || cfg.AuthKey == "" {
		return
	}
	if cfg.AuthURL.Exclusive != nil && lo.Contains(cfg.AuthURL.Exclusive, cfg.URL) {
		return
	}
	if cfg.AuthURL.Inclusive != nil && !lo.Contains(cfg.AuthURL.Inclusive, cfg.URL) {
		return
	}
	if header.Get(cfg.AuthKey) != "" {
		return
	}
	if value := cfg.Auth(); value != "" {
		header.Set(cfg.AuthKey, value)
	}
}
