package router

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/authbite/internal/pkg/config"
)

// trustedProxies lists the peers whose forwarding headers are believed. With
// none configured the TCP peer is always the client.
type trustedProxies []netip.Prefix

func newTrustedProxies(cfg config.Config) trustedProxies {
	if cfg == nil {
		return nil
	}

	return lo.FilterMap(cfg.GetArray("app.trusted_proxies"), func(v string, _ int) (netip.Prefix, bool) {
		v = strings.TrimSpace(v)
		if p, err := netip.ParsePrefix(v); err == nil {
			return p.Masked(), true
		}
		if a, err := netip.ParseAddr(v); err == nil {
			return netip.PrefixFrom(a, a.BitLen()), true
		}
		return netip.Prefix{}, false
	})
}

func (t trustedProxies) trusts(a netip.Addr) bool {
	a = a.Unmap()
	return lo.SomeBy(t, func(p netip.Prefix) bool { return p.Contains(a) })
}

// clientIP walks X-Forwarded-For from the nearest hop and returns the first
// address not owned by a trusted proxy. X-Real-IP is used when the chain is
// empty.
func (t trustedProxies) clientIP(r *http.Request) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	if !t.trusts(peer) {
		return peer.Unmap(), true
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !t.trusts(hop) {
			return hop.Unmap(), true
		}
	}

	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.Unmap(), true
	}
	return peer.Unmap(), true
}

// middlewareClientIP rewrites RemoteAddr to the bare client address so logs
// and handlers never see a spoofed forwarding header from an untrusted peer.
func middlewareClientIP(cfg config.Config) Middleware {
	proxies := newTrustedProxies(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip, ok := proxies.clientIP(r); ok {
				r.RemoteAddr = ip.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}
