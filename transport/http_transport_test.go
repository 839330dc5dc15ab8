package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransportPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"id":1}`, string(body))
		_, _ = w.Write([]byte(`{"id":1,"result":"0x1"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(time.Second)
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	data, err := tr.Post(context.Background(), srv.URL, header, []byte(`{"id":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"result":"0x1"}`, string(data))
}

type headerRoundTripper struct {
	key, value string
}

func (rt headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(rt.key, rt.value)
	return http.DefaultTransport.RoundTrip(req)
}

func TestHTTPTransportWithClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer node-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":1,"result":"0x1"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransportWithClient(&http.Client{
		Timeout:   time.Second,
		Transport: headerRoundTripper{key: "Authorization", value: "Bearer node-key"},
	})
	data, err := tr.Post(context.Background(), srv.URL, http.Header{}, []byte(`{"id":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"result":"0x1"}`, string(data))
}

func TestNewHTTPTransportWithNilClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	data, err := NewHTTPTransportWithClient(nil).Post(context.Background(), srv.URL, http.Header{}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestHTTPTransportStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(0).Post(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
	assert.Equal(t, srv.URL, terr.URL)
}

func TestHTTPTransportUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPTransport(time.Second).Post(context.Background(), url, nil, []byte(`{}`))
	assert.Error(t, err)
}

func TestFuncAdapter(t *testing.T) {
	var tr Transport = Func(func(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
		return append([]byte(url+":"), body...), nil
	})
	data, err := tr.Post(context.Background(), "u", nil, []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, "u:b", string(data))
}
