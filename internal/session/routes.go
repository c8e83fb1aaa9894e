package session

import (
	"net/url"
	"strings"
)

// RouteClass groups paths by their access rule.
type RouteClass int

const (
	Public RouteClass = iota
	Protected
	AuthOnly
)

func (c RouteClass) String() string {
	switch c {
	case Protected:
		return "protected"
	case AuthOnly:
		return "auth-only"
	default:
		return "public"
	}
}

// Well-known page paths.
const (
	SignInPath    = "/sign-in"
	DashboardPath = "/dashboard"
	ConciergePath = "/concierge"
)

// Classify maps a request path to its route class. Matching ignores case,
// as the router does.
func Classify(path string) RouteClass {
	p := strings.ToLower(normalize(path))
	switch {
	case p == DashboardPath || strings.HasPrefix(p, DashboardPath+"/"):
		return Protected
	case p == ConciergePath:
		return Protected
	case p == SignInPath:
		return AuthOnly
	default:
		return Public
	}
}

// SignInURL is the redirect target for a logged-out visitor of path.
func SignInURL(path string) string {
	return SignInPath + "?redirect=" + strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
