package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/quangvu/fetchd/internal/core/domain"
)

// Registry routes URLs to providers. Matching is pure hostname/path pattern
// work over an ordered list, first match wins; no network I/O.
type Registry struct {
	providers []*Provider
	byID      map[domain.Provider]*Provider
}

// NewRegistry creates the registry with the built-in provider list.
func NewRegistry() *Registry {
	providers := []*Provider{
		{
			ID:           domain.ProviderYouTube,
			MediaType:    domain.MediaTypeVideo,
			Referer:      "https://www.youtube.com/",
			LongForm:     true,
			hosts:        []string{"youtube.com", "youtu.be", "youtube-nocookie.com"},
			canonicalize: canonicalYouTube,
		},
		{
			ID:           domain.ProviderInstagram,
			MediaType:    domain.MediaTypeVideo,
			Referer:      "https://www.instagram.com/",
			MobileFirst:  true,
			hosts:        []string{"instagram.com", "instagr.am"},
			canonicalize: canonicalInstagram,
		},
		{
			ID:           domain.ProviderTikTok,
			MediaType:    domain.MediaTypeVideo,
			Referer:      "https://www.tiktok.com/",
			MobileFirst:  true,
			hosts:        []string{"tiktok.com", "vm.tiktok.com", "vt.tiktok.com"},
			canonicalize: canonicalTikTok,
		},
		{
			ID:           domain.ProviderTwitter,
			MediaType:    domain.MediaTypeVideo,
			Referer:      "https://twitter.com/",
			hosts:        []string{"twitter.com", "x.com", "t.co"},
			canonicalize: canonicalTwitter,
		},
		{
			ID:        domain.ProviderFacebook,
			MediaType: domain.MediaTypeVideo,
			Referer:   "https://www.facebook.com/",
			hosts:     []string{"facebook.com", "fb.watch", "fb.com"},
		},
	}

	byID := make(map[domain.Provider]*Provider, len(providers))
	for _, p := range providers {
		byID[p.ID] = p
	}
	return &Registry{providers: providers, byID: byID}
}

// Detect classifies a URL to a provider. Returns false for URLs no provider
// claims.
func (r *Registry) Detect(raw string) (domain.Provider, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	for _, p := range r.providers {
		if p.Matches(u.Hostname()) {
			return p.ID, true
		}
	}
	return "", false
}

// Get returns the provider for an id. An unknown id is a programming error,
// not a user-facing condition.
func (r *Registry) Get(id domain.Provider) *Provider {
	p, ok := r.byID[id]
	if !ok {
		panic(fmt.Sprintf("unknown provider: %s", id))
	}
	return p
}
