package httputil

import (
	"net/http"
	"time"
)

// DownloadTimeout bounds one dataset download, body included. City crash
// exports run to hundreds of megabytes.
const DownloadTimeout = 5 * time.Minute

const UserAgent = "crashwatch/1.0 (+https://github.com/lox/crashwatch)"

type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.next.RoundTrip(req)
}

// NewClient returns the client used for dataset downloads.
func NewClient() *http.Client {
	return &http.Client{
		Timeout:   DownloadTimeout,
		Transport: userAgentTransport{next: http.DefaultTransport},
	}
}
