// internal/middleware/proxy.go
//
// Trusted-proxy aware client address.
//
/*
Context
--------
X-Forwarded-For is only believed when the direct peer is listed in the
resolved Network.TrustedProxies.  The chain is then walked right to left,
skipping further trusted hops, and the first untrusted address becomes
r.RemoteAddr.  Requests from untrusted peers keep their socket address, so
a client cannot spoof its IP by sending the header itself.

Entries may be single IPs or CIDRs.  Config validation has already
rejected anything else, so ParseTrusted only fails on programmer error.
*/
package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Trusted is a parsed proxy allow-list.
type Trusted []*net.IPNet

// ParseTrusted accepts IPs and CIDRs.
func ParseTrusted(entries []string) (Trusted, error) {
	out := make(Trusted, 0, len(entries))
	for _, e := range entries {
		if !strings.Contains(e, "/") {
			ip := net.ParseIP(e)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q is not an IP or CIDR", e)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Contains reports whether ip falls inside any entry.
func (t Trusted) Contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the originating address for r under t.
func (t Trusted) ClientIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)
	if !t.Contains(peer) {
		return peer
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return peer
	}
	hops := strings.Split(xff, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			break
		}
		if !t.Contains(ip) {
			return ip
		}
		peer = ip
	}
	return peer
}

// RealIP rewrites r.RemoteAddr to the trusted client address.
func RealIP(t Trusted) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := t.ClientIP(r); ip != nil {
				r.RemoteAddr = net.JoinHostPort(ip.String(), "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}
