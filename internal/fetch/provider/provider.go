package provider

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/quangvu/fetchd/internal/core/domain"
)

// Provider is one upstream platform's capability set: URL matching plus the
// planner traits that shape how attempts against it are built. Adding a
// platform means adding one entry to the registry list, not touching
// dispatch.
type Provider struct {
	ID        domain.Provider
	MediaType domain.MediaType
	Referer   string

	// MobileFirst platforms expose a structurally more permissive mobile
	// surface, so the mobile client identity is tried before desktop.
	MobileFirst bool

	// LongForm platforms host content that can exceed the short-form
	// attempt timeout.
	LongForm bool

	hosts        []string
	canonicalize func(u *url.URL) (string, bool)
}

// Matches reports whether the hostname belongs to this provider.
func (p *Provider) Matches(host string) bool {
	host = strings.ToLower(host)
	for _, h := range p.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Canonicalize rewrites a URL into the provider's stable form (id extracted
// and re-embedded in a canonical path). Returns false when no stable form is
// known, or the input already is one.
func (p *Provider) Canonicalize(raw string) (string, bool) {
	if p.canonicalize == nil {
		return "", false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	canon, ok := p.canonicalize(u)
	if !ok || canon == strings.TrimSpace(raw) {
		return "", false
	}
	return canon, true
}

var (
	youtubeIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	tiktokIDRe  = regexp.MustCompile(`/video/(\d+)`)
	tweetIDRe   = regexp.MustCompile(`/status/(\d+)`)
	instaPathRe = regexp.MustCompile(`^/(p|reel|reels|tv)/([A-Za-z0-9_-]+)`)
)

func canonicalYouTube(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case strings.Contains(u.Path, "/shorts/"):
		id = strings.TrimPrefix(u.Path, "/shorts/")
		id = strings.Trim(id, "/")
	case strings.Contains(u.Path, "/live/"):
		id = strings.TrimPrefix(u.Path, "/live/")
		id = strings.Trim(id, "/")
	default:
		id = u.Query().Get("v")
	}
	if !youtubeIDRe.MatchString(id) {
		return "", false
	}
	return "https://www.youtube.com/watch?v=" + id, true
}

func canonicalInstagram(u *url.URL) (string, bool) {
	m := instaPathRe.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	kind := m[1]
	if kind == "reels" {
		kind = "reel"
	}
	return "https://www.instagram.com/" + kind + "/" + m[2] + "/", true
}

func canonicalTikTok(u *url.URL) (string, bool) {
	m := tiktokIDRe.FindStringSubmatch(u.Path)
	if m == nil {
		// Short links (vm.tiktok.com/xyz) resolve only over the network;
		// the raw form stays the sole attempt target.
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || !strings.HasPrefix(parts[0], "@") {
		return "", false
	}
	return "https://www.tiktok.com/" + parts[0] + "/video/" + m[1], true
}

func canonicalTwitter(u *url.URL) (string, bool) {
	m := tweetIDRe.FindStringSubmatch(u.Path)
	if m == nil {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 {
		return "", false
	}
	return "https://twitter.com/" + parts[0] + "/status/" + m[1], true
}
