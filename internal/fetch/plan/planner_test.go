package plan

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/quangvu/fetchd/internal/core/domain"
	"github.com/quangvu/fetchd/internal/fetch/provider"
)

const testJar = "# Netscape HTTP Cookie File\n" +
	".youtube.com\tTRUE\t/\tTRUE\t1999999999\tSID\tabc123\n"

func testJarB64() string {
	return base64.StdEncoding.EncodeToString([]byte(testJar))
}

func TestPlanOrdering(t *testing.T) {
	reg := provider.NewRegistry()
	yt := reg.Get(domain.ProviderYouTube)
	workDir := t.TempDir()

	p := NewPlanner(nil, testJarB64(), nil)
	attempts := p.Plan("https://youtu.be/dQw4w9WgXcQ", yt, workDir)

	if len(attempts) == 0 {
		t.Fatal("no attempts planned")
	}

	// Public attempts come before credentialed ones.
	seenCreds := false
	for i, a := range attempts {
		if a.UseCredentials {
			seenCreds = true
		} else if seenCreds {
			t.Fatalf("attempt %d is credential-free after a credentialed one", i)
		}
	}
	if !seenCreds {
		t.Fatal("expected credentialed attempts when a cookie jar is configured")
	}

	// Desktop before mobile for a desktop-first provider.
	if attempts[0].Client != domain.ClientDesktop {
		t.Errorf("first attempt client = %v, want desktop", attempts[0].Client)
	}

	// Raw input form before the canonical rewrite.
	if attempts[0].Target != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("first target = %q, want raw input", attempts[0].Target)
	}
	if attempts[1].Target != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("second target = %q, want canonical form", attempts[1].Target)
	}

	// Every attempt differs in at least one dimension.
	seen := make(map[domain.Attempt]bool)
	for _, a := range attempts {
		if seen[a] {
			t.Fatalf("duplicate attempt: %+v", a)
		}
		seen[a] = true
	}
}

func TestPlanMobileFirst(t *testing.T) {
	reg := provider.NewRegistry()
	ig := reg.Get(domain.ProviderInstagram)

	p := NewPlanner(nil, "", nil)
	attempts := p.Plan("https://www.instagram.com/reel/Cxyz123/", ig, t.TempDir())

	if attempts[0].Client != domain.ClientMobile {
		t.Errorf("first attempt client = %v, want mobile for a mobile-first provider",
			attempts[0].Client)
	}
}

func TestPlanRegions(t *testing.T) {
	reg := provider.NewRegistry()
	yt := reg.Get(domain.ProviderYouTube)

	p := NewPlanner([]string{"US", "DE"}, "", nil)
	attempts := p.Plan("https://www.youtube.com/watch?v=dQw4w9WgXcQ", yt, t.TempDir())

	// No-hint pass first, then the configured list in order; the full list
	// repeats per region.
	wantRegions := []string{"", "US", "DE"}
	perRegion := len(attempts) / len(wantRegions)
	if perRegion == 0 || len(attempts)%len(wantRegions) != 0 {
		t.Fatalf("attempt count %d not divisible across %d regions",
			len(attempts), len(wantRegions))
	}
	for i, a := range attempts {
		want := wantRegions[i/perRegion]
		if a.RegionHint != want {
			t.Errorf("attempt %d region = %q, want %q", i, a.RegionHint, want)
		}
	}
}

func TestPlanNoCredentialsConfigured(t *testing.T) {
	reg := provider.NewRegistry()
	yt := reg.Get(domain.ProviderYouTube)

	p := NewPlanner(nil, "", nil)
	for _, a := range p.Plan("https://youtu.be/dQw4w9WgXcQ", yt, t.TempDir()) {
		if a.UseCredentials {
			t.Fatal("credentialed attempt planned without a cookie jar")
		}
	}
}

func TestPlanUndecodableCookiesNonFatal(t *testing.T) {
	reg := provider.NewRegistry()
	yt := reg.Get(domain.ProviderYouTube)
	workDir := t.TempDir()

	garbage := base64.StdEncoding.EncodeToString([]byte("not a cookie jar"))
	p := NewPlanner(nil, garbage, nil)
	attempts := p.Plan("https://youtu.be/dQw4w9WgXcQ", yt, workDir)

	if len(attempts) == 0 {
		t.Fatal("plan aborted on undecodable credentials")
	}
	for _, a := range attempts {
		if a.UseCredentials {
			t.Fatal("credentialed attempt planned from undecodable cookie data")
		}
	}
}

func TestPlanMaterializesCookieJar(t *testing.T) {
	reg := provider.NewRegistry()
	yt := reg.Get(domain.ProviderYouTube)
	workDir := t.TempDir()

	p := NewPlanner(nil, testJarB64(), nil)
	p.Plan("https://youtu.be/dQw4w9WgXcQ", yt, workDir)

	data, err := os.ReadFile(filepath.Join(workDir, cookieJarName))
	if err != nil {
		t.Fatalf("cookie jar not materialized: %v", err)
	}
	if string(data) != testJar {
		t.Errorf("cookie jar content mismatch")
	}
}
