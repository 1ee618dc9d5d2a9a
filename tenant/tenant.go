// Package tenant derives the active tenant purely from the current path.
// A path of the form /t/<slug>/... carries the tenant; everything else is
// tenant-less. The slug is never persisted — it is recomputed on every
// navigation and pushed into the API client's tenant slot so outgoing
// requests carry the tenant header.
package tenant

import (
	"net/url"
	"regexp"
	"strings"
)

// Matches /t/<slug> where slug runs up to the next slash, query or fragment.
var pathPattern = regexp.MustCompile(`^/t/([^/?#]+)(?:[/?#]|$)`)

// Extract returns the tenant slug encoded in path, URL-decoded. The second
// return is false when the path carries no tenant segment.
func Extract(path string) (string, bool) {
	m := pathPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	slug, err := url.PathUnescape(m[1])
	if err != nil {
		slug = m[1]
	}
	return slug, true
}

// Client is the slice of the API client the resolver feeds: the single
// mutable tenant slot consulted by the outbound request decorator.
type Client interface {
	SetTenant(slug string)
}

// Resolver tracks the active tenant across navigations.
type Resolver struct {
	client Client
	slug   string
}

// NewResolver creates a resolver feeding the given client.
func NewResolver(client Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve recomputes the tenant from the current path and pushes the result
// into the API client. Called on every navigation.
func (r *Resolver) Resolve(path string) {
	slug, _ := Extract(path)
	r.slug = slug
	if r.client != nil {
		r.client.SetTenant(slug)
	}
}

// Slug returns the active tenant slug, empty when none is active.
func (r *Resolver) Slug() string { return r.slug }

// Path normalizes p to start with a slash and prefixes it with the active
// tenant segment, if any. Every internal redirect and link goes through this
// so tenant context survives navigation.
func (r *Resolver) Path(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if r.slug == "" {
		return p
	}
	return "/t/" + r.slug + p
}
