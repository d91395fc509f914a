// Package fshttp contains the common http parts of the config, Transport and Client
package fshttp

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/rclone/driveclone/fs"
)

const (
	separatorReq  = ">>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>"
	separatorResp = "<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<"
)

// NewDialer creates a net.Dialer structure with Timeout and Keepalive
// set from the config
func NewDialer(ci *fs.ConfigInfo) *net.Dialer {
	return &net.Dialer{
		Timeout:   ci.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
}

// NewTransport returns an http.RoundTripper with the timeouts from
// the config
func NewTransport(ci *fs.ConfigInfo) http.RoundTripper {
	// Start with a sensible set of defaults then override.
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = http.ProxyFromEnvironment
	t.MaxIdleConnsPerHost = 2 * (ci.Transfers + 1)
	t.MaxIdleConns = 2 * t.MaxIdleConnsPerHost
	t.TLSHandshakeTimeout = ci.ConnectTimeout
	t.ResponseHeaderTimeout = ci.Timeout
	dialer := NewDialer(ci)
	t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}
	t.IdleConnTimeout = 60 * time.Second
	return &Transport{
		Transport:   t,
		userAgent:   ci.UserAgent,
		dumpHeaders: ci.DumpHeaders,
		metrics:     DefaultMetrics,
	}
}

// NewClient returns an http.Client with the timeouts from the config
func NewClient(ci *fs.ConfigInfo) *http.Client {
	return &http.Client{
		Transport: NewTransport(ci),
	}
}

// Transport is our http Transport which wraps an http.RoundTripper
//   - Sets the User Agent
//   - Does logging
//   - Counts responses
type Transport struct {
	Transport   http.RoundTripper
	userAgent   string
	dumpHeaders bool
	metrics     *Metrics
}

// RoundTrip implements the RoundTripper interface.
func (t *Transport) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// Don't modify the caller's request
	req = req.Clone(req.Context())
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if t.dumpHeaders {
		buf, _ := httputil.DumpRequestOut(req, false)
		fs.Debugf(nil, "%s", separatorReq)
		fs.Debugf(nil, "%s (req %p)", "HTTP REQUEST", req)
		fs.Debugf(nil, "%s", string(cleanAuth(buf)))
		fs.Debugf(nil, "%s", separatorReq)
	}
	resp, err = t.Transport.RoundTrip(req)
	if t.dumpHeaders {
		fs.Debugf(nil, "%s", separatorResp)
		fs.Debugf(nil, "%s (req %p)", "HTTP RESPONSE", req)
		if err != nil {
			fs.Debugf(nil, "Error: %v", err)
		} else {
			buf, _ := httputil.DumpResponse(resp, false)
			fs.Debugf(nil, "%s", string(buf))
		}
		fs.Debugf(nil, "%s", separatorResp)
	}
	t.metrics.onResponse(req, resp)
	return resp, err
}

var authHeader = []byte("Authorization: ")

// cleanAuth gets rid of the value of the Authorization header in a dump
func cleanAuth(buf []byte) []byte {
	i := bytes.Index(buf, authHeader)
	if i < 0 {
		return buf
	}
	start := i + len(authHeader)
	end := start
	for end < len(buf) && buf[end] != '\r' && buf[end] != '\n' {
		end++
	}
	out := append([]byte{}, buf[:start]...)
	out = append(out, "XXXX"...)
	return append(out, buf[end:]...)
}
