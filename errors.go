package graphql

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/miniprog/graphql-request/internal/shorthand"
)

var (
	// ErrMissingOperationName is returned when a shorthand string has nothing
	// before its argument list.
	ErrMissingOperationName = shorthand.ErrMissingOperationName
	// ErrSyntax is returned when a shorthand string is malformed.
	ErrSyntax = shorthand.ErrSyntax
	// ErrMissingVariableType is returned when a declared variable has no type.
	ErrMissingVariableType = shorthand.ErrMissingVariableType
	// ErrInvalidQueryShape is returned when the query input is absent, empty,
	// or neither a string nor a list of strings.
	ErrInvalidQueryShape = errors.New("query must be a string or a list of strings")
)

// ParseError describes why a single shorthand string was rejected.
type ParseError = shorthand.ParseError

// Errors represents the "errors" array in a response from a GraphQL server.
// If returned via error interface, the slice is expected to contain at least 1 element.
//
// Specification: https://facebook.github.io/graphql/#sec-Errors.
type Errors []Error

type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
	Locations  []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations"`
	Path []any `json:"path,omitempty"`
}

// RequestInfo contains HTTP request information stored in error extensions.
type RequestInfo struct {
	Headers http.Header
	Body    string
}

// ResponseInfo contains HTTP response information stored in error extensions.
type ResponseInfo struct {
	Headers http.Header
	Body    string
}

// InternalExtensions contains internal debugging information stored in error
// extensions. This information is added when debug mode is enabled.
type InternalExtensions struct {
	Request  *RequestInfo
	Response *ResponseInfo
	Error    error
}

// Error implements error interface.
func (e Error) Error() string {
	return fmt.Sprintf("Message: %s, Locations: %+v", e.Message, e.Locations)
}

// Error implements error interface.
func (e Errors) Error() string {
	b := strings.Builder{}
	for _, err := range e {
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes every error of the list to errors.Is and errors.As.
func (e Errors) Unwrap() []error {
	errs := make([]error, len(e))
	for i := range e {
		errs[i] = e[i]
	}
	return errs
}

// HasCode reports whether any error of the list carries code.
func (e Errors) HasCode(code string) bool {
	for _, err := range e {
		if err.GetCode() == code {
			return true
		}
	}
	return false
}

// GetCode returns the error code from the extensions, or an empty string if
// not present.
func (e Error) GetCode() string {
	if e.Extensions == nil {
		return ""
	}
	code, ok := e.Extensions["code"].(string)
	if !ok {
		return ""
	}
	return code
}

// GetInternalExtensions returns the typed internal extensions, or nil if not
// present. Internal extensions contain debugging information added when debug
// mode is enabled.
func (e Error) GetInternalExtensions() *InternalExtensions {
	if e.Extensions == nil {
		return nil
	}

	internal, ok := e.Extensions["internal"].(map[string]any)
	if !ok {
		return nil
	}

	ext := &InternalExtensions{}

	if req, ok := internal["request"].(map[string]any); ok {
		ext.Request = &RequestInfo{}
		if headers, ok := req["headers"].(http.Header); ok {
			ext.Request.Headers = headers
		}
		if body, ok := req["body"].(string); ok {
			ext.Request.Body = body
		}
	}

	if resp, ok := internal["response"].(map[string]any); ok {
		ext.Response = &ResponseInfo{}
		if headers, ok := resp["headers"].(http.Header); ok {
			ext.Response.Headers = headers
		}
		if body, ok := resp["body"].(string); ok {
			ext.Response.Body = body
		}
	}

	if err, ok := internal["error"].(error); ok {
		ext.Error = err
	}

	return ext
}

func (e Error) getInternalExtension() map[string]any {
	if e.Extensions == nil {
		return make(map[string]any)
	}

	if ex, ok := e.Extensions["internal"].(map[string]any); ok {
		return ex
	}

	return make(map[string]any)
}

func newError(code string, err error) Error {
	return Error{
		Message: err.Error(),
		Extensions: map[string]any{
			"code": code,
		},
	}
}

func newSimpleErrors(code string, err error) Errors {
	return Errors{newError(code, err)}
}

// withDebugInfo stores headers and the body read from bodyReader under the
// infoType key ("request" or "response") of the internal extensions.
func (e Error) withDebugInfo(
	infoType string,
	headers http.Header,
	bodyReader io.Reader,
) Error {
	internal := e.getInternalExtension()
	bodyBytes, err := io.ReadAll(bodyReader)
	if err != nil {
		internal["error"] = err
	} else {
		internal[infoType] = map[string]any{
			"headers": headers,
			"body":    string(bodyBytes),
		}
	}

	if e.Extensions == nil {
		e.Extensions = make(map[string]any)
	}
	e.Extensions["internal"] = internal
	return e
}

func (e Error) withRequest(req *http.Request, bodyReader io.Reader) Error {
	return e.withDebugInfo("request", req.Header, bodyReader)
}

func (e Error) withResponse(res *http.Response, bodyReader io.Reader) Error {
	return e.withDebugInfo("response", res.Header, bodyReader)
}

// decorate adds request and response details to err when debug is set.
func decorate(
	debug bool,
	err Error,
	req *http.Request,
	resp *http.Response,
	reqBody,
	respBody io.Reader,
) Error {
	if !debug {
		return err
	}
	if req != nil && reqBody != nil {
		err = err.withRequest(req, reqBody)
	}
	if resp != nil && respBody != nil {
		err = err.withResponse(resp, respBody)
	}
	return err
}

const (
	ErrRequestError  = "request_error"
	ErrJsonEncode    = "json_encode_error"
	ErrJsonDecode    = "json_decode_error"
	ErrGraphQLDecode = "graphql_decode_error"
)
