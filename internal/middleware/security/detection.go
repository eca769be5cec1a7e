package security

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	".git", ".ssh", "<script", "union select", "etc/passwd",
}

var scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb"}

// Detector resolves client addresses behind trusted proxies and flags
// requests that look like vulnerability scans.
type Detector struct {
	trustedProxies []*net.IPNet
	suspicious     atomic.Int64
}

// NewDetector trusts loopback and private networks to set forwarding headers.
func NewDetector() *Detector {
	d := &Detector{}
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "::1/128"} {
		if err := d.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

// AddTrustedProxy adds a trusted proxy network
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// ClientIP returns the first X-Forwarded-For or X-Real-IP address when the
// direct peer is a trusted proxy, and the peer address otherwise.
func (d *Detector) ClientIP(r *http.Request) string {
	direct, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		direct = r.RemoteAddr
	}
	ip := net.ParseIP(direct)
	if ip == nil || !d.trusted(ip) {
		return direct
	}

	if hop := d.forwardedClient(r.Header.Values("X-Forwarded-For")); hop != "" {
		return hop
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return direct
}

// forwardedClient walks X-Forwarded-For from the nearest hop outward and
// returns the first address that is not one of our proxies. Entries left of
// it were supplied by the client and are ignored. It returns "" when a hop
// does not parse.
func (d *Detector) forwardedClient(headers []string) string {
	var hops []string
	for _, h := range headers {
		for _, hop := range strings.Split(h, ",") {
			hops = append(hops, strings.TrimSpace(hop))
		}
	}
	last := ""
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(hops[i])
		if ip == nil {
			return ""
		}
		if !d.trusted(ip) {
			return hops[i]
		}
		last = hops[i]
	}
	return last
}

func (d *Detector) trusted(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// Suspicious reports why a request looks like a scan, or "" when it does not.
func (d *Detector) Suspicious(r *http.Request) string {
	reason := ""
	target := strings.ToLower(r.URL.Path + "?" + r.URL.RawQuery)
	for _, p := range suspiciousPatterns {
		if strings.Contains(target, p) {
			reason = "pattern " + p
			break
		}
	}
	if reason == "" {
		ua := strings.ToLower(r.UserAgent())
		for _, a := range scannerAgents {
			if strings.Contains(ua, a) {
				reason = "agent " + a
				break
			}
		}
	}
	if reason == "" && (r.Method == "TRACE" || r.Method == "TRACK") {
		reason = "method " + r.Method
	}
	if reason == "" && len(r.URL.String()) > 2048 {
		reason = "long url"
	}
	if reason != "" {
		d.suspicious.Add(1)
	}
	return reason
}

// SuspiciousCount returns how many suspicious requests were seen.
func (d *Detector) SuspiciousCount() int64 {
	return d.suspicious.Load()
}

// Middleware logs suspicious requests without blocking them.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := d.Suspicious(r); reason != "" {
			slog.WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				"client_ip", d.ClientIP(r),
				"method", r.Method,
				"path", r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}
