package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/crashwatch/internal/httputil"
)

// Source fetches the raw bytes of a dataset.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// SourceFor picks a source from the shape of location: http(s) and ftp URLs
// are fetched remotely, anything else is treated as a local path.
func SourceFor(location string) (Source, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Single-letter schemes are Windows drive letters.
		return FileSource{Path: location}, nil
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTPSource(location), nil
	case "ftp":
		return NewFTPSource(u), nil
	case "file":
		return FileSource{Path: u.Path}, nil
	}
	return nil, fmt.Errorf("unsupported dataset scheme %q", u.Scheme)
}

type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return b, nil
}

// HTTPSource downloads the dataset, retrying rate limits and server errors.
type HTTPSource struct {
	url            string
	client         *http.Client
	maxElapsedTime time.Duration
}

func NewHTTPSource(rawURL string) *HTTPSource {
	return &HTTPSource{
		url:            rawURL,
		client:         httputil.NewClient(),
		maxElapsedTime: 2 * time.Minute,
	}
}

func (h *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := h.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch dataset: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch dataset: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = h.maxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// FTPSource retrieves the dataset from an FTP server. Credentials come from
// the URL userinfo; without them the login is anonymous.
type FTPSource struct {
	addr     string
	path     string
	user     string
	password string
	timeout  time.Duration
}

func NewFTPSource(u *url.URL) *FTPSource {
	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}
	src := &FTPSource{
		addr:     addr,
		path:     u.Path,
		user:     "anonymous",
		password: "anonymous",
		timeout:  30 * time.Second,
	}
	if u.User != nil {
		src.user = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			src.password = pw
		}
	}
	return src
}

func (f *FTPSource) Fetch(ctx context.Context) ([]byte, error) {
	conn, err := ftp.Dial(f.addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	if err := conn.Login(f.user, f.password); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(f.path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr %s: %w", f.path, err)
	}
	defer resp.Close()

	b, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("ftp read: %w", err)
	}
	return b, nil
}
