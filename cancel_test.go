package graphql_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/miniprog/graphql-request"
)

func TestCancelToken(t *testing.T) {
	token, cancel := graphql.CancelTokenSource()
	if token.Reason() != nil {
		t.Fatal("new token already canceled")
	}
	if err := token.ThrowIfRequested(); err != nil {
		t.Fatalf("got error: %v, want: nil", err)
	}

	cancel("")
	cancel("second call is ignored")

	select {
	case <-token.Done():
	default:
		t.Fatal("Done is not closed after cancel")
	}
	if got, want := token.Reason().Message, graphql.DefaultCancelMessage; got != want {
		t.Errorf("got reason: %q, want: %q", got, want)
	}
	if err := token.ThrowIfRequested(); !graphql.IsCancel(err) {
		t.Errorf("got error: %v, want a cancellation", err)
	}
}

func TestNewCancelToken_executor(t *testing.T) {
	var cancel graphql.CancelFunc
	token := graphql.NewCancelToken(func(c graphql.CancelFunc) {
		cancel = c
	})
	cancel("user left")
	if got, want := token.Reason().Error(), "user left"; got != want {
		t.Errorf("got reason: %q, want: %q", got, want)
	}
}

func TestIsCancel(t *testing.T) {
	if graphql.IsCancel(errors.New("other")) {
		t.Error("plain error reported as cancellation")
	}
	if !graphql.IsCancel(&graphql.Cancel{Message: "x"}) {
		t.Error("cancellation not recognised")
	}
}

func TestRequester_cancelInFlight(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		close(started)
		select {
		case <-req.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	token, cancel := graphql.CancelTokenSource()
	go func() {
		<-started
		cancel("stop")
	}()

	r := graphql.NewRequester(srv.Client(), &graphql.RequestConfig{BaseURL: srv.URL})
	begin := time.Now()
	_, err := r.Get(context.Background(), "/", &graphql.RequestConfig{CancelToken: token})
	if !graphql.IsCancel(err) {
		t.Fatalf("got error: %v, want a cancellation", err)
	}
	if got, want := err.Error(), "stop"; got != want {
		t.Errorf("got reason: %q, want: %q", got, want)
	}
	if elapsed := time.Since(begin); elapsed > 2*time.Second {
		t.Errorf("request took %v after cancel", elapsed)
	}
}

func TestRequester_canceledBeforeSend(t *testing.T) {
	var called bool
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		called = true
	})
	token, cancel := graphql.CancelTokenSource()
	cancel("too late")

	r := graphql.NewRequester(&http.Client{Transport: localRoundTripper{handler: mux}}, nil)
	_, err := r.Get(context.Background(), "/", &graphql.RequestConfig{CancelToken: token})
	if !graphql.IsCancel(err) {
		t.Fatalf("got error: %v, want a cancellation", err)
	}
	if called {
		t.Error("canceled request reached the server")
	}
}

func TestClient_cancel(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.Copy(io.Discard, req.Body)
		close(started)
		select {
		case <-req.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	token, cancel := graphql.CancelTokenSource()
	go func() {
		<-started
		cancel("")
	}()

	client := graphql.NewClient(srv.URL, srv.Client()).
		WithConfig(&graphql.RequestConfig{CancelToken: token})
	_, err := client.QueryRaw(context.Background(), graphql.NewRequest("a"))
	if !graphql.IsCancel(err) {
		t.Fatalf("got error: %v, want a cancellation", err)
	}
}
