package websocket

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
)

// Address is a resolved websocket target.
type Address struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// Resolve validates a ws:// or wss:// URI and resolves it into an Address.
//
// The scheme must be exactly "ws" or "wss"; fasthttp lowercases schemes while
// parsing, so the raw token is checked before the URI is handed to it.
func Resolve(raw string) (*Address, error) {
	scheme := rawScheme(raw)
	if scheme != schemeWS && scheme != schemeWSS {
		return nil, ErrUnsupportedScheme
	}

	host, port := splitHostPort(authority(raw[len(scheme)+1:]))
	if host == "" {
		return nil, ErrHostRequired
	}

	uri := fasthttp.AcquireURI()
	defer fasthttp.ReleaseURI(uri)

	if err := uri.Parse(nil, []byte(raw)); err != nil {
		return nil, err
	}

	addr := &Address{
		Scheme: scheme,
		Host:   strings.ToLower(host),
		Port:   defaultPort,
		Path:   string(uri.RequestURI()),
	}

	if addr.Secure() {
		addr.Port = defaultSecurePort
	}

	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("websocket: invalid port %q", port)
		}
		addr.Port = p
	}

	return addr, nil
}

// Secure reports whether the address uses the wss scheme.
func (a Address) Secure() bool {
	return a.Scheme == schemeWSS
}

// HTTPScheme is the http-space scheme equivalent to the websocket scheme.
func (a Address) HTTPScheme() string {
	if a.Secure() {
		return "https"
	}
	return "http"
}

// HostPort is the dial address.
func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// HostHeader is the Host header value; the port is omitted when it is the
// scheme default.
func (a Address) HostHeader() string {
	host := a.Host
	if strings.IndexByte(host, ':') >= 0 {
		host = "[" + host + "]"
	}

	if a.Port == a.defaultPort() {
		return host
	}
	return host + ":" + strconv.Itoa(a.Port)
}

// HTTPURI is the equivalent http:// or https:// URI handed to the transport.
func (a Address) HTTPURI() string {
	return a.HTTPScheme() + "://" + a.HostHeader()
}

func (a Address) String() string {
	return a.Scheme + "://" + a.HostHeader() + a.Path
}

func (a Address) defaultPort() int {
	if a.Secure() {
		return defaultSecurePort
	}
	return defaultPort
}

func rawScheme(raw string) string {
	n := strings.IndexByte(raw, ':')
	if n <= 0 {
		return ""
	}
	return raw[:n]
}

// authority returns the host[:port] part of a "//authority/path" remainder,
// without userinfo.
func authority(rest string) string {
	if !strings.HasPrefix(rest, "//") {
		return ""
	}
	rest = rest[2:]

	if n := strings.IndexAny(rest, "/?#"); n >= 0 {
		rest = rest[:n]
	}

	if n := strings.LastIndexByte(rest, '@'); n >= 0 {
		rest = rest[n+1:]
	}

	return rest
}

func splitHostPort(hostport string) (string, string) {
	host, port := hostport, ""

	if n := strings.LastIndexByte(hostport, ':'); n > strings.LastIndexByte(hostport, ']') {
		host, port = hostport[:n], hostport[n+1:]
	}

	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"), port
}
