package addrutil

import (
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// Parsed is the best-effort decomposition of a peer transport address.
type Parsed struct {
	Protocol string
	Host     string
	Port     string
}

// Parse splits a transport address into protocol, host and port. It accepts
// multiaddrs ("/ip4/1.2.3.4/tcp/4001"), URIs ("ws://host:9000/path") and bare
// "host:port" or "host" strings. It never fails: input matching no known
// shape degrades to protocol "unknown" with the trimmed raw string as host.
func Parse(raw string) Parsed {
	a := strings.TrimSpace(raw)
	if a == "" {
		return Parsed{Protocol: "unknown"}
	}
	if strings.HasPrefix(a, "/") {
		return parseMultiaddr(a)
	}
	return parseURI(a)
}

func parseMultiaddr(a string) Parsed {
	segs := strings.Split(a, "/")
	var p Parsed
	var protos []string
	for i := 1; i < len(segs); i++ {
		switch seg := strings.ToLower(segs[i]); seg {
		case "ip4", "ip6", "dns", "dns4", "dns6", "dnsaddr":
			if i+1 < len(segs) && p.Host == "" {
				p.Host = segs[i+1]
			}
			i++
		case "tcp", "udp":
			protos = append(protos, seg)
			if i+1 < len(segs) && p.Port == "" {
				p.Port = segs[i+1]
			}
			i++
		case "quic", "quic-v1", "ws", "wss", "webtransport", "webrtc", "webrtc-direct", "tls", "http", "https", "p2p-circuit":
			protos = append(protos, seg)
		case "p2p", "ipfs":
			protos = append(protos, "p2p")
			// Skip the peer ID value.
			i++
		default:
			// Unknown segment; values are consumed by their keys above.
		}
	}
	if p.Host == "" && p.Port == "" && len(protos) == 0 {
		return Parsed{Protocol: "unknown", Host: a}
	}
	p.Protocol = strings.Join(protos, "/")
	if p.Protocol == "" {
		p.Protocol = "unknown"
	}
	return p
}

func parseURI(a string) Parsed {
	proto := "unknown"
	rest := a
	if i := strings.Index(rest, "://"); i > 0 {
		proto = strings.ToLower(rest[:i])
		rest = rest[i+3:]
	}
	// Strip any path or query after the authority.
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	host, port := splitHostPort(rest)
	if host == "" && port == "" {
		// Nothing after the scheme; keep what's left of the raw string.
		return Parsed{Protocol: "unknown", Host: rest}
	}
	return Parsed{Protocol: proto, Host: host, Port: port}
}

func splitHostPort(a string) (string, string) {
	if a == "" {
		return "", ""
	}

	// Fast path: "host:port" (IPv4, hostname or bracketed IPv6).
	if h, p, err := net.SplitHostPort(a); err == nil {
		if _, err := strconv.Atoi(p); err == nil {
			return h, p
		}
	}

	// A raw IP without port, including unbracketed IPv6.
	if ip, err := netip.ParseAddr(a); err == nil {
		return ip.String(), ""
	}

	// Handle unbracketed IPv6 "host:port" by peeling off the last ":port".
	if strings.Count(a, ":") > 1 && !strings.HasPrefix(a, "[") {
		if last := strings.LastIndexByte(a, ':'); last > 0 && last < len(a)-1 {
			host := a[:last]
			port := a[last+1:]
			if _, err := strconv.Atoi(port); err == nil {
				return host, port
			}
		}
	}

	// If there's no port at all, accept raw hosts.
	if strings.Contains(a, ":") {
		// Likely bracketed IPv6 without port.
		return strings.Trim(a, "[]"), ""
	}
	return a, ""
}

// Canonical collapses a raw protocol token into one of the fixed classes
// tcp, udp, quic, ws, wss, p2p, http or other. Matching is case-insensitive
// substring, most specific first (wss before ws), so chained multiaddr
// transports like "udp/quic-v1" land on their outermost meaningful class.
func Canonical(proto string) string {
	p := strings.ToLower(proto)
	switch {
	case strings.Contains(p, "wss"):
		return "wss"
	case strings.Contains(p, "ws"):
		return "ws"
	case strings.Contains(p, "quic"):
		return "quic"
	case strings.Contains(p, "http"):
		return "http"
	case strings.Contains(p, "udp"):
		return "udp"
	case strings.Contains(p, "tcp"):
		return "tcp"
	case strings.Contains(p, "p2p"):
		return "p2p"
	}
	return "other"
}

// Hosts extracts the distinct parsed hosts from a list of addresses,
// preserving first-seen order. Empty and literal "unknown" hosts are dropped.
func Hosts(addrs []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, addr := range addrs {
		h := Parse(addr).Host
		if h == "" || h == "unknown" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
