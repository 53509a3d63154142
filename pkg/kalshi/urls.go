package kalshi

import "strings"

// APIPrefix is the versioned REST path prefix. Every request URL and every
// signed string carries it exactly once, no matter how the base URL or the
// call path were spelled.
const APIPrefix = "/trade-api/v2"

// Well-known REST hosts.
const (
	ProdBaseURL = "https://api.elections.kalshi.com/trade-api/v2"
	DemoBaseURL = "https://demo-api.kalshi.co/trade-api/v2"
)

// normalizeBase strips trailing slashes so joins never produce "//".
func normalizeBase(base string) string {
	return strings.TrimRight(base, "/")
}

// leadingSlash normalizes a call path to a single leading "/".
func leadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// joinURL builds the full request URL from a normalized base and a call
// path. The prefix may be spelled in the base, in the path, in both, or
// in neither; the result contains it exactly once.
func joinURL(base, path string) string {
	path = leadingSlash(path)
	if strings.HasSuffix(base, APIPrefix) {
		if path == APIPrefix || strings.HasPrefix(path, APIPrefix+"/") {
			path = strings.TrimPrefix(path, APIPrefix)
		}
		return base + path
	}
	if strings.HasPrefix(path, APIPrefix) {
		return base + path
	}
	return base + APIPrefix + path
}

// signedPath is the path component covered by the request signature:
// prefixed exactly once, query string stripped.
func signedPath(path string) string {
	path = leadingSlash(path)
	if !strings.HasPrefix(path, APIPrefix) {
		path = APIPrefix + path
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
