package plan

import (
	"log/slog"

	"github.com/quangvu/fetchd/internal/core/domain"
	"github.com/quangvu/fetchd/internal/fetch/provider"
)

const (
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	mobileUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) " +
		"AppleWebKit/605.1.15 (Mobile/15E148; like Gecko) Version/17.4 Mobile Safari/605.1.15"
)

// Planner builds the ordered attempt sequence for one job. It is
// deterministic and side-effect free, except for materializing the cookie
// jar into the job's working directory when credentialed attempts exist.
type Planner struct {
	regions    []string
	cookiesB64 string
	log        *slog.Logger
}

// NewPlanner creates a planner. regions is the configured geo-hint list,
// tried after the implicit no-hint pass; cookiesB64 is the base64 cookie
// jar, empty when no credentials are configured.
func NewPlanner(regions []string, cookiesB64 string, log *slog.Logger) *Planner {
	if log == nil {
		log = slog.Default()
	}
	return &Planner{regions: regions, cookiesB64: cookiesB64, log: log}
}

// Plan produces the attempt sequence for a URL against a provider.
//
// Ordering, outermost to innermost: region (no hint first, then the
// configured list in order), credential tier (public attempts before
// credentialed ones — credentials are only risked when needed), client
// identity (desktop before mobile, reversed for mobile-first platforms),
// and URL form (raw input first, canonical form when one exists). Every
// attempt differs from every other in at least one dimension.
func (p *Planner) Plan(rawURL string, prov *provider.Provider, workDir string) []domain.Attempt {
	cookiesPath := ""
	if p.cookiesB64 != "" {
		path, err := materializeCookieJar(p.cookiesB64, workDir)
		if err != nil {
			p.log.Warn("Cookie jar unusable, planning without credentials",
				"provider", prov.ID, "error", err)
		} else {
			cookiesPath = path
		}
	}

	targets := []string{rawURL}
	if canon, ok := prov.Canonicalize(rawURL); ok {
		targets = append(targets, canon)
	}

	clients := []domain.ClientIdentity{domain.ClientDesktop, domain.ClientMobile}
	if prov.MobileFirst {
		clients = []domain.ClientIdentity{domain.ClientMobile, domain.ClientDesktop}
	}

	credTiers := []bool{false}
	if cookiesPath != "" {
		credTiers = append(credTiers, true)
	}

	regions := append([]string{""}, p.regions...)

	var attempts []domain.Attempt
	for _, region := range regions {
		for _, useCreds := range credTiers {
			for _, client := range clients {
				for _, target := range targets {
					ua := desktopUA
					if client == domain.ClientMobile {
						ua = mobileUA
					}
					path := ""
					if useCreds {
						path = cookiesPath
					}
					attempts = append(attempts, domain.Attempt{
						Target:         target,
						Client:         client,
						UserAgent:      ua,
						Referer:        prov.Referer,
						UseCredentials: useCreds,
						CookiesPath:    path,
						RegionHint:     region,
						Retryable:      true,
					})
				}
			}
		}
	}
	return attempts
}
