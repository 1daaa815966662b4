package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/miniprog/graphql-request/internal/log"
)

// Client is a GraphQL client that compiles shorthand operations into
// batched documents.
//
// # Immutable Pattern
//
// The Client's With* methods follow an immutable pattern: they return a new
// Client instance rather than modifying the receiver. This allows for safe
// concurrent use and makes it clear when configuration changes take effect.
//
// Always use the returned Client:
//
//	client = client.WithDebug(true)  // Correct
//	client.WithDebug(true)            // Wrong - original client unchanged
//
// Methods can be chained since each returns a new Client:
//
//	client = client.WithDebug(true).WithRequestModifier(modifier)
//
// Clones share the compiler's statement cache and the requester's
// interceptors.
type Client struct {
	url             string // GraphQL server URL.
	requester       *Requester
	compiler        *Compiler
	config          *RequestConfig
	requestModifier RequestModifier
	logger          logr.Logger
	metrics         *Metrics
	debug           bool
}

// NewClient creates a GraphQL client targeting the specified GraphQL server URL.
// If httpClient is nil, then http.DefaultClient is used.
func NewClient(url string, httpClient *http.Client) *Client {
	return &Client{
		url:       url,
		requester: NewRequester(httpClient, nil),
		compiler:  NewCompiler(),
		logger:    logr.Discard(),
	}
}

// Result is the decoded GraphQL response envelope.
type Result struct {
	Data        json.RawMessage
	Errors      Errors
	Compilation *Compilation
	Response    *Response
}

// Decode unmarshals the response data into v.
func (r *Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return newSimpleErrors(ErrGraphQLDecode, err)
	}
	return nil
}

// Query compiles req as a query, sends it and decodes the response data
// into v.
func (c *Client) Query(ctx context.Context, req *Request, v any) error {
	res, err := c.Do(ctx, Query, req)
	return c.processResult(res, err, v)
}

// Mutate compiles req as a mutation, sends it and decodes the response
// data into v.
func (c *Client) Mutate(ctx context.Context, req *Request, v any) error {
	res, err := c.Do(ctx, Mutation, req)
	return c.processResult(res, err, v)
}

// QueryRaw is Query returning the raw json data.
func (c *Client) QueryRaw(ctx context.Context, req *Request) ([]byte, error) {
	res, err := c.Do(ctx, Query, req)
	return rawData(res), err
}

// MutateRaw is Mutate returning the raw json data.
func (c *Client) MutateRaw(ctx context.Context, req *Request) ([]byte, error) {
	res, err := c.Do(ctx, Mutation, req)
	return rawData(res), err
}

// Exec sends a pre-built document and unmarshals the response into v.
// The query is not compiled and variables are sent as they are.
func (c *Client) Exec(ctx context.Context, query string, v any, variables map[string]any) error {
	res, err := c.send(ctx, prebuilt(query, variables))
	return c.processResult(res, err, v)
}

// ExecRaw is Exec returning the raw json data.
func (c *Client) ExecRaw(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	res, err := c.send(ctx, prebuilt(query, variables))
	return rawData(res), err
}

// Do compiles and sends one batch. When the server reports GraphQL errors
// the result is returned together with them. A batch that does not
// compile is never sent.
func (c *Client) Do(ctx context.Context, kind OperationType, req *Request) (*Result, error) {
	logger := log.Or(ctx, c.logger)
	comp, err := c.compiler.Compile(log.WithLogger(ctx, logger), kind, req)
	if err != nil {
		logger.Error(err, "graphql compile failed", "type", kind)
		return nil, err
	}
	return c.send(ctx, comp)
}

func prebuilt(query string, variables map[string]any) *Compilation {
	return &Compilation{
		Document:  &Document{Text: query},
		Variables: variables,
		Custom:    true,
	}
}

func (c *Client) send(ctx context.Context, comp *Compilation) (*Result, error) {
	logger := log.Or(ctx, c.logger).WithValues(
		"type", comp.Document.OperationType,
		"name", comp.Document.OperationName,
	)
	logger.V(1).Info("graphql request", "variables", comp.Variables, "cached", comp.Cached)

	started := time.Now()
	res, err := c.request(ctx, comp)
	c.metrics.observeRequest(comp.Document.OperationType, outcome(err), started)

	if err != nil {
		logger.Error(err, "graphql request failed")
		return res, err
	}
	logger.V(1).Info("graphql response", "status", res.Response.StatusCode, "data", string(res.Data))
	return res, nil
}

func (c *Client) request(ctx context.Context, comp *Compilation) (*Result, error) {
	body := comp.Body()
	cfg := mergeConfig(c.config, &RequestConfig{
		Debug:    c.debug,
		Modifier: c.requestModifier,
		GraphQL:  comp,
	})

	resp, err := c.requester.Post(ctx, c.url, body, cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Compilation: comp, Response: resp}

	debug := resp.Config != nil && resp.Config.Debug
	reqBody := func() io.Reader {
		b, _ := encodeBody(body)
		return bytes.NewReader(b)
	}

	data, errs := c.DecodeResponse(bytes.NewReader(resp.Data))
	res.Data = data
	if len(errs) == 0 {
		return res, nil
	}
	if errs[0].GetCode() == ErrJsonDecode {
		e := decorate(debug, errs[0], resp.Request, rawResponse(resp), reqBody(), bytes.NewReader(resp.Data))
		return nil, Errors{e}
	}
	if debug && (errs[0].Extensions == nil || errs[0].Extensions["internal"] == nil) {
		errs[0] = decorate(debug, errs[0], resp.Request, rawResponse(resp), reqBody(), bytes.NewReader(resp.Data))
	}
	res.Errors = errs
	return res, errs
}

// DecodeResponse decodes a GraphQL JSON response into raw data and errors.
// It returns the raw data bytes (if present) and any GraphQL errors.
func (c *Client) DecodeResponse(reader io.Reader) ([]byte, Errors) {
	var out struct {
		Data   *json.RawMessage
		Errors Errors
	}

	err := json.NewDecoder(reader).Decode(&out)
	if err != nil {
		return nil, newSimpleErrors(ErrJsonDecode, err)
	}

	var rawData []byte
	if out.Data != nil && len(*out.Data) > 0 && string(*out.Data) != "null" {
		rawData = *out.Data
	}

	if len(out.Errors) > 0 {
		return rawData, out.Errors
	}

	return rawData, nil
}

func (c *Client) processResult(res *Result, err error, v any) error {
	var errs Errors
	if err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}
	if res != nil && v != nil {
		if derr := res.Decode(v); derr != nil {
			var decodeErrs Errors
			errors.As(derr, &decodeErrs)
			errs = append(errs, c.DecorateError(decodeErrs[0], nil, rawResponse(res.Response), nil, bytes.NewReader(res.Data)))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func rawData(res *Result) []byte {
	if res == nil {
		return nil
	}
	return res.Data
}

// rawResponse rebuilds the parts of the http.Response error decoration
// reads.
func rawResponse(resp *Response) *http.Response {
	if resp == nil {
		return nil
	}
	return &http.Response{
		Status:     resp.Status,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}
}

func outcome(err error) string {
	var errs Errors
	switch {
	case err == nil:
		return "success"
	case IsCancel(err):
		return "canceled"
	case errors.As(err, &errs) && !errs.HasCode(ErrRequestError) && !errs.HasCode(ErrJsonDecode) && !errs.HasCode(ErrJsonEncode):
		return "graphql_error"
	default:
		return "error"
	}
}

// clone creates a copy of the Client with all fields preserved.
// This helper prevents field-copying bugs when adding new fields to Client.
func (c *Client) clone() *Client {
	return &Client{
		url:             c.url,
		requester:       c.requester,
		compiler:        c.compiler,
		config:          c.config,
		requestModifier: c.requestModifier,
		logger:          c.logger,
		metrics:         c.metrics,
		debug:           c.debug,
	}
}

// WithRequestModifier returns a new Client with the request modifier set.
// This allows you to reuse the same TCP connection for multiple slightly
// different requests to the same server (e.g., different authentication
// headers for multitenant applications).
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	clone := c.clone()
	clone.requestModifier = f
	return clone
}

// WithDebug returns a new Client with debug mode enabled or disabled.
// When enabled, debug mode adds detailed request/response information to
// error extensions, which is useful for troubleshooting GraphQL API issues.
func (c *Client) WithDebug(debug bool) *Client {
	clone := c.clone()
	clone.debug = debug
	return clone
}

// WithLogger returns a new Client logging to logger. A logger carried by
// the request context takes precedence.
func (c *Client) WithLogger(logger logr.Logger) *Client {
	clone := c.clone()
	clone.logger = logger
	return clone
}

// WithCompiler returns a new Client compiling with compiler.
func (c *Client) WithCompiler(compiler *Compiler) *Client {
	clone := c.clone()
	clone.compiler = compiler
	return clone
}

// WithRequester returns a new Client sending through requester.
func (c *Client) WithRequester(requester *Requester) *Client {
	clone := c.clone()
	clone.requester = requester
	return clone
}

// WithConfig returns a new Client whose requests are merged with cfg
// before the requester defaults apply.
func (c *Client) WithConfig(cfg *RequestConfig) *Client {
	clone := c.clone()
	clone.config = cfg
	return clone
}

// WithCustom returns a new Client whose compiler sends query strings
// verbatim unless a request says otherwise. The statement cache is shared.
func (c *Client) WithCustom(custom bool) *Client {
	clone := c.clone()
	clone.compiler = c.compiler.withCustom(custom)
	return clone
}

// WithMetrics returns a new Client recording request durations and compile
// statistics on m.
func (c *Client) WithMetrics(m *Metrics) *Client {
	clone := c.clone()
	clone.metrics = m
	clone.compiler = c.compiler.withMetrics(m)
	return clone
}

// Requester returns the requester the client sends through, e.g. to
// register interceptors.
func (c *Client) Requester() *Requester {
	return c.requester
}

// DecorateError decorates an error with request/response information if debug
// mode is enabled.
func (c *Client) DecorateError(
	err Error,
	req *http.Request,
	resp *http.Response,
	reqBody,
	respBody io.Reader,
) Error {
	return decorate(c.debug, err, req, resp, reqBody, respBody)
}
