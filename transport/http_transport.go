package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a round trip when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed reply is kept in Error.
const maxErrorBody = 512

// Error reports a round trip that reached the node but got a non-2xx status.
type Error struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: POST %s: HTTP %d: %s", e.URL, e.StatusCode, string(e.Body))
}

// HTTPTransport posts bodies with a net/http client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport whose round trips time out after timeout.
// A zero timeout uses DefaultTimeout.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{client: &http.Client{Timeout: timeout}}
}

// NewHTTPTransportWithClient wraps an existing client, e.g. one with a custom
// RoundTripper. A nil client behaves like NewHTTPTransport(0).
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	if client == nil {
		return NewHTTPTransport(0)
	}
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "transport: create request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: POST %s", url)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Debugf("transport: close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: read response from %s", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &Error{URL: url, StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}
