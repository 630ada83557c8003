// Package transport assembles the HTTP client used for outbound API calls:
// optional HTTP/HTTPS or SOCKS5 proxying and transparent decompression of
// compressed response bodies.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// AcceptEncoding lists the content encodings DecodeBody can unwrap.
const AcceptEncoding = "gzip, deflate, br, zstd"

// NewClient builds an *http.Client honoring the optional proxy URL.
// Supported proxy schemes are http, https, and socks5; an empty or
// unparseable proxyURL yields a direct client.
func NewClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}
	if proxyURL == "" {
		return client, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid proxy url: %w", err)
	}
	switch parsed.Scheme {
	case "socks5":
		var auth *proxy.Auth
		if parsed.User != nil {
			password, _ := parsed.User.Password()
			auth = &proxy.Auth{User: parsed.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("transport: create SOCKS5 dialer: %w", err)
		}
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	case "http", "https":
		client.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	default:
		return nil, fmt.Errorf("transport: unsupported proxy scheme %q", parsed.Scheme)
	}
	return client, nil
}
