package booking

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-scraper/utils"
)

// routedSession returns an HTTPSession whose connections all land on srv,
// so absolute booking.com URLs are answered by the test server.
func routedSession(srv *httptest.Server) *HTTPSession {
	session := NewHTTPSession("test-agent/1.0", 5*time.Second, utils.NewDiscardLogger())
	addr := srv.Listener.Addr().String()
	session.transport.Proxy = nil
	session.transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	session.transport.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}
	return session
}

func TestHTTPSessionSendsUserAgent(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><div class="sr_header">250</div></body></html>`))
	}))
	defer srv.Close()

	session := NewHTTPSession("test-agent/1.0", 5*time.Second, utils.NewDiscardLogger())
	defer session.Close()

	body, err := session.Fetch(context.Background(), srv.URL+"/searchresults.ru.html")
	require.NoError(t, err)
	assert.Contains(t, body, "sr_header")
	assert.Equal(t, "test-agent/1.0", gotAgent)

	// the same URL can be fetched again within one session
	_, err = session.Fetch(context.Background(), srv.URL+"/searchresults.ru.html")
	assert.NoError(t, err)
}

func TestHTTPSessionReturnsErrorStatusBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	session := NewHTTPSession("test-agent/1.0", 5*time.Second, utils.NewDiscardLogger())
	defer session.Close()

	body, err := session.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "blocked")
}

func TestHTTPSessionReportsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	unreachable := srv.URL
	srv.Close()

	session := NewHTTPSession("test-agent/1.0", 5*time.Second, utils.NewDiscardLogger())
	defer session.Close()

	_, err := session.Fetch(context.Background(), unreachable)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking: GET")
}

func TestHTTPSessionHonoursCancelledContext(t *testing.T) {
	session := NewHTTPSession("test-agent/1.0", time.Second, utils.NewDiscardLogger())
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := session.Fetch(ctx, "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSessionCancelsInFlightRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	session := NewHTTPSession("test-agent/1.0", 30*time.Second, utils.NewDiscardLogger())
	defer session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := session.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second)
}
