// Package composite implements the HTTP client for the Earth day/night
// composite API. A fetch is a single attempt: connectivity precheck,
// authenticated POST, response classification and image decode. Retry
// policy belongs to the caller.
package composite

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/earthwall/earthwall/pkg/logger"
)

const (
	// DefaultBaseURL is the production composite endpoint.
	DefaultBaseURL = "https://api.liveearth.io"

	compositePath = "/api/v1/composite"

	// Image generation is slow server-side: allow 120s for headers and
	// 180s for the whole exchange.
	responseHeaderTimeout = 120 * time.Second
	totalTimeout          = 180 * time.Second

	precheckTimeout = 5 * time.Second

	// maxBodySize caps response reads; a full-size composite is well
	// under this even base64-inflated.
	maxBodySize = 128 << 20
)

// Dialer is the subset of net.Dialer used by the connectivity precheck.
// Injected in tests to simulate unreachable networks.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Client fetches composite images from the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     Dialer
	log        logger.Logger
	now        func() time.Time
}

// NewClient builds a composite API client. An empty baseURL selects the
// production endpoint.
func NewClient(baseURL string, log logger.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: totalTimeout,
			Transport: &http.Transport{
				ResponseHeaderTimeout: responseHeaderTimeout,
			},
		},
		dialer: &net.Dialer{},
		log:    log,
		now:    time.Now,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetDialer replaces the precheck dialer. Used by tests.
func (c *Client) SetDialer(d Dialer) {
	c.dialer = d
}

// Fetch performs one composite fetch. It returns either a decoded image
// or a classified *Error; it never retries internally.
func (c *Client) Fetch(ctx context.Context, p Params) (*Result, error) {
	if err := c.checkConnectivity(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(newRequest(p))
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "encode request: " + err.Error(), Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+compositePath, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: err.Error(), Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+p.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.classifyHTTPError(resp)
	}
	return c.decodeSuccess(resp)
}

// checkConnectivity dials the API host before issuing the real request so
// an unplugged network fails fast without burning the rate-limit budget.
// The check is advisory: a race between check and request is acceptable.
func (c *Client) checkConnectivity(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return &Error{Kind: KindNoConnectivity, Message: "invalid API base URL", Cause: err}
	}
	host := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	dctx, cancel := context.WithTimeout(ctx, precheckTimeout)
	defer cancel()
	conn, err := c.dialer.DialContext(dctx, "tcp", host)
	if err != nil {
		msg := "cannot reach " + u.Hostname()
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			msg = "host lookup failed for " + u.Hostname()
		}
		return &Error{Kind: KindNoConnectivity, Message: msg, Cause: err}
	}
	_ = conn.Close()
	return nil
}

func (c *Client) classifyHTTPError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var eb errorBody
	structured := json.Unmarshal(raw, &eb) == nil && (eb.Error != "" || eb.Message != "")

	if resp.StatusCode == http.StatusTooManyRequests {
		e := &Error{Kind: KindRateLimited, StatusCode: resp.StatusCode}
		if structured {
			e.Message = eb.Message
			if eb.RetryAfter != nil {
				e.RetryAfter = time.Duration(*eb.RetryAfter) * time.Second
			}
		}
		return e
	}

	if structured {
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return &Error{Kind: KindAPIError, StatusCode: resp.StatusCode, Message: msg}
	}
	return &Error{Kind: KindHTTPError, StatusCode: resp.StatusCode}
}

func (c *Client) decodeSuccess(resp *http.Response) (*Result, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "read response body: " + err.Error(), Cause: err}
	}

	var sb successBody
	if err := json.Unmarshal(raw, &sb); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "invalid JSON body", Cause: err}
	}
	if sb.ImageData == "" {
		return nil, &Error{Kind: KindMalformedResponse, Message: "response has no image data"}
	}

	imgBytes, err := decodeImageData(sb.ImageData)
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "base64 decode failed", Cause: err}
	}

	img, format, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "image decode failed", Cause: err}
	}
	c.log.Info("fetched composite: %s, %d bytes, bounds %v", format, len(imgBytes), img.Bounds().Size())

	return &Result{
		Image:     img,
		FetchedAt: c.now(),
		Message:   sb.Message,
	}, nil
}

// decodeImageData base64-decodes an image_data value, stripping a
// data:image/...;base64, URI prefix if present.
func decodeImageData(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		_, rest, ok := strings.Cut(data, ",")
		if !ok {
			return nil, fmt.Errorf("data URI without payload")
		}
		data = rest
	}
	data = strings.TrimSpace(data)
	return base64.StdEncoding.DecodeString(data)
}

// classifyTransportError maps http.Client errors onto the taxonomy.
// DNS and timeout subtypes only refine the message, not the kind.
func classifyTransportError(err error) error {
	msg := err.Error()
	var dnsErr *net.DNSError
	var netErr net.Error
	if errors.As(err, &dnsErr) {
		msg = "host lookup failed: " + dnsErr.Name
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		msg = "request timed out"
	}
	return &Error{Kind: KindNetwork, Message: msg, Cause: err}
}
