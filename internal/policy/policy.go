package policy

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrInvalidURL         = errors.New("invalid url")
	ErrProtocolNotAllowed = errors.New("protocol not allowed")
)

// Decision is the outcome of evaluating a navigation request.
type Decision int

const (
	LoadInPlace Decision = iota
	OpenExternal
	Block
)

// String returns the string representation of the decision
func (d Decision) String() string {
	switch d {
	case LoadInPlace:
		return "load-in-place"
	case OpenExternal:
		return "open-external"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// Origin identifies what kind of request the hosted content made.
type Origin string

const (
	WillNavigate Origin = "will-navigate"
	WindowOpen   Origin = "window-open"
)

// externalProtocols are the only schemes ever handed to the OS handler.
var externalProtocols = map[string]struct{}{
	"http":  {},
	"https": {},
}

// Policy decides where navigation targets are loaded. It is immutable after
// construction and safe for concurrent use.
type Policy struct {
	appHost string
	allowed map[string]struct{}
}

// New builds a policy for the application at appURL. The application host is
// always allowed; extraHosts adds federated sign-in hosts and the like.
func New(appURL string, extraHosts []string) (*Policy, error) {
	u, err := url.Parse(appURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	appHost := normalizeHost(u.Hostname())
	if appHost == "" {
		return nil, fmt.Errorf("%w: application url %q has no host", ErrInvalidURL, appURL)
	}

	allowed := map[string]struct{}{appHost: {}}
	for _, h := range extraHosts {
		if n := normalizeHost(h); n != "" {
			allowed[n] = struct{}{}
		}
	}

	return &Policy{appHost: appHost, allowed: allowed}, nil
}

// AppHost returns the normalized host of the hosted application.
func (p *Policy) AppHost() string {
	return p.appHost
}

// Allows reports whether host is a member of the allowed host set.
func (p *Policy) Allows(host string) bool {
	_, ok := p.allowed[normalizeHost(host)]
	return ok
}

// Decide classifies a navigation target. It never has side effects.
func (p *Policy) Decide(rawURL string, origin Origin) Decision {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return unparsable(origin)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		if u.Host == "" {
			return unparsable(origin)
		}
		// Scheme-relative: the host still has to be on the list.
		scheme = "https"
	}

	switch scheme {
	case "file":
		return LoadInPlace
	case "http", "https":
		host := normalizeHost(u.Hostname())
		if origin == WindowOpen && host == p.appHost {
			return LoadInPlace
		}
		if _, ok := p.allowed[host]; ok {
			return LoadInPlace
		}
		return OpenExternal
	default:
		if origin == WindowOpen {
			return Block
		}
		return OpenExternal
	}
}

// unparsable is the default for targets that cannot be classified. In-page
// navigation fails open; new windows fail closed.
func unparsable(origin Origin) Decision {
	if origin == WindowOpen {
		return Block
	}
	return LoadInPlace
}

// ValidateExternal checks that rawURL may be handed to the OS default
// handler and returns it unchanged when it may.
func ValidateExternal(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}
	if _, ok := externalProtocols[strings.ToLower(u.Scheme)]; !ok {
		return "", fmt.Errorf("%w: %s", ErrProtocolNotAllowed, u.Scheme)
	}
	return rawURL, nil
}

// normalizeHost lowercases, strips a trailing dot and converts to the IDNA
// ASCII form so that exact matching is stable.
func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return ""
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}
