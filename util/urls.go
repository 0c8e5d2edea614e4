package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// NormalizeURL canonicalizes an author/entry/activity URL so the same remote
// object never gets stored twice under cosmetically different spellings.
// Lowercases scheme and host, drops default ports (80/http, 443/https),
// keeps credentials, query and fragment, and strips the trailing slash from
// the path. Idempotent: NormalizeURL(NormalizeURL(u)) == NormalizeURL(u).
// Unparsable or empty input is returned unchanged.
func NormalizeURL(raw string) string {
	if raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return raw
	}

	scheme := strings.ToLower(parsed.Scheme)
	hostname := strings.ToLower(parsed.Hostname())

	port := parsed.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	netloc := hostname
	if port != "" {
		netloc = fmt.Sprintf("%s:%s", hostname, port)
	}

	if parsed.User != nil {
		netloc = fmt.Sprintf("%s@%s", parsed.User.String(), netloc)
	}

	path := strings.TrimRight(parsed.Path, "/")

	normalized := fmt.Sprintf("%s://%s%s", scheme, netloc, path)

	if parsed.RawQuery != "" {
		normalized += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		normalized += "#" + parsed.Fragment
	}

	return normalized
}

// BaseHost extracts the scheme://host part of a URL, e.g.
// "http://example.com" from "http://example.com/api/authors/".
func BaseHost(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}

// IsValidURL reports whether raw parses with both a scheme and a host.
func IsValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// JoinURL joins a base URL with a path, collapsing duplicate slashes.
func JoinURL(base string, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// ParseUUIDFromURL extracts the last UUID found in a URL. The last one
// matters for nested paths like /authors/{author}/entries/{entry}, where
// the entry id is wanted, not the author id. Returns uuid.Nil and false
// when no valid UUID is present.
func ParseUUIDFromURL(raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, false
	}

	matches := uuidPattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(matches[len(matches)-1])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
