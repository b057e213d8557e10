package plan

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// cookieJarName is the credential file materialized into a job's working
// directory. It lives exactly as long as the job does.
const cookieJarName = "cookies.txt"

// DecodeCookieJar decodes base64-encoded cookie-jar text. Exporters on
// different platforms emit different encodings, so UTF-8, UTF-16 (BOM) and
// Latin-1 are tried in order until the decoded text structurally resembles a
// Netscape cookie file.
func DecodeCookieJar(b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return "", fmt.Errorf("invalid base64 cookie data: %w", err)
	}

	if utf8.Valid(raw) {
		if s := string(raw); looksLikeCookieJar(s) {
			return s, nil
		}
	}

	utf16dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	if decoded, err := utf16dec.Bytes(raw); err == nil {
		if s := string(decoded); looksLikeCookieJar(s) {
			return s, nil
		}
	}

	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		if s := string(decoded); looksLikeCookieJar(s) {
			return s, nil
		}
	}

	return "", fmt.Errorf("cookie data does not resemble a cookie jar in any known encoding")
}

// looksLikeCookieJar checks for the structural markers of a Netscape cookie
// file: tab-separated fields or the standard header, plus a domain column.
func looksLikeCookieJar(s string) bool {
	if strings.Contains(strings.ToLower(s), "# netscape http cookie file") {
		return true
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) >= 6 && strings.Contains(fields[0], ".") {
			return true
		}
	}
	return false
}

// materializeCookieJar writes the decoded jar into the job working
// directory. A decode failure is non-fatal: the job proceeds without
// credentials.
func materializeCookieJar(b64, workDir string) (string, error) {
	jar, err := DecodeCookieJar(b64)
	if err != nil {
		return "", err
	}
	path := filepath.Join(workDir, cookieJarName)
	if err := os.WriteFile(path, []byte(jar), 0o600); err != nil {
		return "", fmt.Errorf("failed to write cookie jar: %w", err)
	}
	return path, nil
}
