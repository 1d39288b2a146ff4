// Package fetch probes learning-resource URLs over HTTP.
// It answers "does this link resolve to a page, PDF or video" without
// downloading more than it must.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// DefaultTimeout bounds a single request
const DefaultTimeout = 8 * time.Second

// DefaultUserAgent identifies probe traffic
const DefaultUserAgent = "WerkstudentLinkVerifier/1.0"

// DefaultMaxBodyBytes caps how much of a page body is read
const DefaultMaxBodyBytes int64 = 2 << 20

var acceptedContentType = regexp.MustCompile(`(?i)text/html|application/pdf|video/`)

// Result describes the response to a probe.
type Result struct {
	URL         string
	FinalURL    string
	Method      string
	StatusCode  int
	ContentType string
	Body        string // only set by Page
}

// Reachable reports a 2xx or 3xx status
func (r *Result) Reachable() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 400
}

// ContentTypeOK reports whether the content type is an HTML page, a PDF or a video.
// Providers often omit the header on HEAD, so an empty type counts as OK.
func (r *Result) ContentTypeOK() bool {
	return r != nil && (r.ContentType == "" || acceptedContentType.MatchString(r.ContentType))
}

// OK is Reachable and ContentTypeOK together
func (r *Result) OK() bool {
	return r.Reachable() && r.ContentTypeOK()
}

// Confidence scores how sure we are the link is useful: 0.95 with a known
// content type, 0.75 when the type was missing, 0 otherwise.
func (r *Result) Confidence() float64 {
	switch {
	case !r.OK():
		return 0
	case r.ContentType == "":
		return 0.75
	default:
		return 0.95
	}
}

// Error is a failed probe.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures probing.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	Retry        RetryConfig
	Client       *http.Client // optional; a client with Timeout is built otherwise
}

// DefaultOptions returns the probe defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Retry:        NoRetry,
	}
}

func (o *Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}
	return nil
}

// Probe issues a HEAD request and falls back to GET when the origin rejects
// HEAD (405, 501) or the HEAD request fails outright. A non-2xx status is
// not an error; callers inspect the Result.
func Probe(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := ValidateURL(urlStr); err != nil {
		return nil, err
	}

	head, headErr := attempt(ctx, http.MethodHead, urlStr, opts, false)
	if head != nil && head.StatusCode != http.StatusMethodNotAllowed && head.StatusCode != http.StatusNotImplemented {
		return head, nil
	}

	get, getErr := attempt(ctx, http.MethodGet, urlStr, opts, false)
	switch {
	case get != nil:
		return get, nil
	case head != nil:
		return head, nil
	case getErr != nil:
		return nil, getErr
	default:
		return nil, headErr
	}
}

// Page fetches a URL with GET and keeps up to MaxBodyBytes of the body.
func Page(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := ValidateURL(urlStr); err != nil {
		return nil, err
	}
	res, err := attempt(ctx, http.MethodGet, urlStr, opts, true)
	if res != nil {
		return res, nil
	}
	return nil, err
}

// attempt runs one method under the retry policy. When retries run out on a
// retryable status the last response is still returned.
func attempt(ctx context.Context, method, urlStr string, opts *Options, readBody bool) (*Result, error) {
	var last *Result
	_, err := RetryDo(ctx, opts.Retry, func() (*Result, error) {
		res, err := do(ctx, method, urlStr, opts, readBody)
		if res != nil {
			last = res
		}
		return res, err
	})
	if last != nil {
		return last, nil
	}
	return nil, err
}

func do(ctx context.Context, method, urlStr string, opts *Options, readBody bool) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, &Error{
			URL:       urlStr,
			Message:   method + " request failed",
			Retryable: ctx.Err() == nil,
			Cause:     err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	res := &Result{
		URL:         urlStr,
		FinalURL:    resp.Request.URL.String(),
		Method:      method,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if readBody {
		limit := opts.MaxBodyBytes
		if limit <= 0 {
			limit = DefaultMaxBodyBytes
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
		if err != nil {
			return res, &Error{URL: urlStr, Message: "failed to read response body", StatusCode: resp.StatusCode, Cause: err}
		}
		res.Body = string(body)
	}

	if IsRetryableStatus(resp.StatusCode) {
		return res, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Retryable:  true,
		}
	}
	return res, nil
}
