package graphql

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Response is the outcome of a Requester call.
type Response struct {
	Status     string
	StatusCode int
	Header     http.Header
	// Data is the decompressed response body.
	Data    []byte
	Config  *RequestConfig
	Request *http.Request
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

// Interceptors holds the request and response chains of a Requester.
// Request interceptors run last registered first, response interceptors
// in registration order.
type Interceptors struct {
	Request  InterceptorManager[*RequestConfig]
	Response InterceptorManager[*Response]
}

// Requester sends HTTP requests built from merged RequestConfigs.
type Requester struct {
	Interceptors Interceptors

	defaults   *RequestConfig
	httpClient *http.Client
}

// NewRequester creates a requester whose defaults are DefaultConfig merged
// with defaults. If httpClient is nil, then http.DefaultClient is used.
func NewRequester(httpClient *http.Client, defaults *RequestConfig) *Requester {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Requester{
		defaults:   mergeConfig(DefaultConfig(), defaults),
		httpClient: httpClient,
	}
}

// Defaults returns a copy of the requester defaults.
func (r *Requester) Defaults() *RequestConfig {
	return mergeConfig(r.defaults, nil)
}

// Request runs cfg through the interceptor chains and the network.
func (r *Requester) Request(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	current := mergeConfig(r.defaults, cfg)

	var err error
	chain := r.Interceptors.Request.snapshot()
	for i := len(chain) - 1; i >= 0; i-- {
		current, err = chain[i].apply(current, err)
		if err == nil && current == nil {
			err = errors.New("request interceptor returned no config")
		}
	}

	var resp *Response
	if err == nil {
		resp, err = r.dispatch(ctx, current)
	}

	for _, h := range r.Interceptors.Response.snapshot() {
		resp, err = h.apply(resp, err)
	}
	return resp, err
}

func (r *Requester) Get(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return r.requestWithoutData(ctx, http.MethodGet, url, cfg)
}

func (r *Requester) Delete(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return r.requestWithoutData(ctx, http.MethodDelete, url, cfg)
}

func (r *Requester) Head(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return r.requestWithoutData(ctx, http.MethodHead, url, cfg)
}

func (r *Requester) Options(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return r.requestWithoutData(ctx, http.MethodOptions, url, cfg)
}

func (r *Requester) Post(ctx context.Context, url string, data any, cfg *RequestConfig) (*Response, error) {
	return r.requestWithData(ctx, http.MethodPost, url, data, cfg)
}

func (r *Requester) Put(ctx context.Context, url string, data any, cfg *RequestConfig) (*Response, error) {
	return r.requestWithData(ctx, http.MethodPut, url, data, cfg)
}

func (r *Requester) Patch(ctx context.Context, url string, data any, cfg *RequestConfig) (*Response, error) {
	return r.requestWithData(ctx, http.MethodPatch, url, data, cfg)
}

func (r *Requester) requestWithoutData(ctx context.Context, method, url string, cfg *RequestConfig) (*Response, error) {
	c := lo.FromPtrOr(cfg, RequestConfig{})
	c.Method = method
	c.URL = url
	return r.Request(ctx, &c)
}

func (r *Requester) requestWithData(ctx context.Context, method, url string, data any, cfg *RequestConfig) (*Response, error) {
	c := lo.FromPtrOr(cfg, RequestConfig{})
	c.Method = method
	c.URL = url
	c.Data = data
	return r.Request(ctx, &c)
}

// dispatch performs one HTTP exchange. Failures are Errors coded
// ErrRequestError or ErrJsonEncode, or a *Cancel.
func (r *Requester) dispatch(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	if cfg.CancelToken != nil {
		if err := cfg.CancelToken.ThrowIfRequested(); err != nil {
			return nil, err
		}
	}

	method := strings.ToUpper(lo.Ternary(cfg.Method != "", cfg.Method, http.MethodGet))
	header := flattenHeaders(cfg.Headers, method)
	injectAuth(header, cfg)
	if cfg.RequestIDHeader != "" && header.Get(cfg.RequestIDHeader) == "" {
		header.Set(cfg.RequestIDHeader, uuid.NewString())
	}

	target, err := buildURL(cfg.BaseURL+cfg.URL, cfg.Params)
	if err != nil {
		return nil, newSimpleErrors(ErrRequestError, err)
	}

	var reqBody []byte
	if cfg.Data != nil && lo.Contains(methodsWithData, method) {
		reqBody, err = encodeBody(cfg.Data)
		if err != nil {
			return nil, newSimpleErrors(ErrJsonEncode, err)
		}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if cfg.Timeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cfg.Timeout)
		defer stop()
	}
	if token := cfg.CancelToken; token != nil {
		go func() {
			select {
			case <-token.Done():
				cancel(token.Reason())
			case <-ctx.Done():
			}
		}()
	}

	request, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(reqBody))
	if err != nil {
		e := decorate(cfg.Debug, newError(ErrRequestError, fmt.Errorf("problem constructing request: %w", err)), nil, nil, nil, nil)
		return nil, Errors{e}
	}
	request.Header = header
	if cfg.Modifier != nil {
		cfg.Modifier(request)
	}

	resp, err := r.httpClient.Do(request)
	if err != nil {
		if c := canceled(ctx); c != nil {
			return nil, c
		}
		e := decorate(cfg.Debug, newError(ErrRequestError, err), request, nil, bytes.NewReader(reqBody), nil)
		return nil, Errors{e}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp)
	if err != nil {
		if c := canceled(ctx); c != nil {
			return nil, c
		}
		e := decorate(cfg.Debug, newError(ErrJsonDecode, err), request, nil, bytes.NewReader(reqBody), nil)
		return nil, Errors{e}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		e := decorate(
			cfg.Debug,
			newError(ErrRequestError, fmt.Errorf("%v; body: %q", resp.Status, body)),
			request,
			resp,
			bytes.NewReader(reqBody),
			bytes.NewReader(body),
		)
		return nil, Errors{e}
	}

	return &Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       body,
		Config:     cfg,
		Request:    request,
	}, nil
}

// canceled returns the cancellation that ended ctx, if any.
func canceled(ctx context.Context) *Cancel {
	var c *Cancel
	if errors.As(context.Cause(ctx), &c) {
		return c
	}
	return nil
}

func buildURL(raw string, params url.Values) (string, error) {
	if len(params) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		for _, item := range v {
			q.Add(k, item)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// encodeBody sends strings and bytes as they are and everything else as
// JSON.
func encodeBody(data any) ([]byte, error) {
	switch d := data.(type) {
	case []byte:
		return d, nil
	case string:
		return []byte(d), nil
	case io.Reader:
		return io.ReadAll(d)
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readBody reads the whole response body, decompressing it when the
// Content-Encoding header indicates gzip compression.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("problem trying to create gzip reader: %w", err)
		}
		defer func() { _ = gr.Close() }()
		r = gr
	}
	return io.ReadAll(r)
}
