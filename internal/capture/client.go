// Package capture turns a remote JSON response or a local file into a
// StorableResponse and persists it under an endpoint alias.
package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/pretty"
	"golang.org/x/net/proxy"

	"github.com/sadopc/jsonstash/internal/core/response"
	"github.com/sadopc/jsonstash/pkg/version"
)

const (
	requestTimeout = 30 * time.Second
	maxRedirects   = 10
)

// ProxyConfig holds proxy settings.
type ProxyConfig struct {
	URL     string // http://, https://, or socks5:// proxy URL
	NoProxy string // comma-separated list of hosts to bypass proxy
}

// Client performs the outbound GET for URL captures.
type Client struct {
	httpClient *http.Client
	proxyConf  *ProxyConfig
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes captures through proxyURL unless the host is listed in
// noProxy.
func WithProxy(proxyURL, noProxy string) Option {
	return func(c *Client) {
		if proxyURL == "" {
			c.proxyConf = nil
			return
		}
		c.proxyConf = &ProxyConfig{URL: proxyURL, NoProxy: noProxy}
	}
}

// WithUserAgent overrides the User-Agent sent with captures.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying HTTP client. Proxy settings are
// ignored when this is used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a capture client.
func New(opts ...Option) *Client {
	c := &Client{
		userAgent: "jsonstash/" + version.Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) client() (*http.Client, error) {
	if c.httpClient != nil {
		return c.httpClient, nil
	}
	transport, err := c.buildTransport()
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Timeout:   requestTimeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}, nil
}

// ParseSource validates a capture source URL.
func ParseSource(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, newError(KindInvalidURL, rawURL, errors.New("URL is required"))
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newError(KindInvalidURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(KindInvalidURL, rawURL, fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return nil, newError(KindInvalidURL, rawURL, errors.New("missing host"))
	}
	return u, nil
}

// FromURL issues a single GET to rawURL and captures its JSON body and
// headers. The body must be UTF-8 and is stored in canonical JSON form.
// Header values that are not UTF-8 are dropped.
func (c *Client) FromURL(ctx context.Context, rawURL string) (response.StorableResponse, error) {
	u, err := ParseSource(rawURL)
	if err != nil {
		return response.StorableResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return response.StorableResponse{}, newError(KindInvalidURL, rawURL, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	client, err := c.client()
	if err != nil {
		return response.StorableResponse{}, newError(KindFetch, rawURL, fmt.Errorf("configuring transport: %w", err))
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return response.StorableResponse{}, newError(KindFetch, rawURL, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response.StorableResponse{}, newError(KindFetch, rawURL, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response.StorableResponse{}, &Error{
			Kind:       KindFetch,
			Source:     rawURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if !utf8.Valid(body) {
		return response.StorableResponse{}, newError(KindDecode, rawURL, errors.New("body is not valid UTF-8"))
	}
	canonical, err := CanonicalJSON(body)
	if err != nil {
		return response.StorableResponse{}, newError(KindDecode, rawURL, err)
	}

	return response.New(canonical, response.HeadersFromHTTP(resp.Header)), nil
}

// CanonicalJSON validates data as JSON and returns it with object keys sorted
// and insignificant whitespace removed. Numbers and string escapes are kept
// as written. Duplicate object keys are kept, in their original relative
// order.
func CanonicalJSON(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", errors.New("body is not valid JSON")
	}
	sorted := pretty.PrettyOptions(data, &pretty.Options{
		Width:    80,
		Indent:   "  ",
		SortKeys: true,
	})
	return string(pretty.Ugly(sorted)), nil
}

// buildTransport creates an http.Transport configured with proxy settings.
func (c *Client) buildTransport() (http.RoundTripper, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if c.proxyConf == nil {
		return transport, nil
	}

	parsed, err := url.Parse(c.proxyConf.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}

	switch parsed.Scheme {
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if parsed.User != nil {
			password, _ := parsed.User.Password()
			auth = &proxy.Auth{
				User:     parsed.User.Username(),
				Password: password,
			}
		}
		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("creating SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	case "http", "https":
		noProxyHosts := parseNoProxy(c.proxyConf.NoProxy)
		transport.Proxy = func(r *http.Request) (*url.URL, error) {
			if shouldBypassProxy(r.URL.Hostname(), noProxyHosts) {
				return nil, nil
			}
			return parsed, nil
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", parsed.Scheme)
	}

	return transport, nil
}

// parseNoProxy splits a comma-separated no-proxy string into trimmed host entries.
func parseNoProxy(noProxy string) []string {
	parts := strings.Split(noProxy, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			hosts = append(hosts, strings.ToLower(p))
		}
	}
	return hosts
}

// shouldBypassProxy checks whether a host should bypass the proxy.
func shouldBypassProxy(host string, noProxyHosts []string) bool {
	host = strings.ToLower(host)
	for _, h := range noProxyHosts {
		if h == host {
			return true
		}
		// Support wildcard suffix matching (e.g., .example.com)
		if strings.HasPrefix(h, ".") && strings.HasSuffix(host, h) {
			return true
		}
	}
	return false
}
