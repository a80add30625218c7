package engine

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"batchtube/internal/utils/logging"

	"github.com/browserutils/kooky"
	// Register all supported browser cookie stores.
	_ "github.com/browserutils/kooky/browser/all"
	"golang.org/x/net/publicsuffix"
)

// CookieManager resolves browser cookies per registrable domain and caches the
// Netscape-format file handed to yt-dlp.
type CookieManager struct {
	mu    sync.Mutex
	files map[string]string
}

// NewCookieManager initializes a new cookie manager instance.
func NewCookieManager() *CookieManager {
	return &CookieManager{
		files: make(map[string]string),
	}
}

// ResolveCookieFile finds browser cookies for the URL's registrable domain and
// writes them to a cookies.txt usable with --cookies. Returns an error when no
// cookies exist for the domain.
func (cm *CookieManager) ResolveCookieFile(rawURL string) (string, error) {
	domain, err := baseDomain(rawURL)
	if err != nil {
		return "", err
	}

	cm.mu.Lock()
	if path, ok := cm.files[domain]; ok {
		cm.mu.Unlock()
		return path, nil
	}
	cm.mu.Unlock()

	var kookyCookies []*kooky.Cookie
	for _, store := range kooky.FindAllCookieStores() {
		cookies, err := store.ReadCookies(kooky.Valid, kooky.Domain(domain))
		if err != nil {
			logging.D(2, "Failed to read cookies from %s: %v", store.Browser(), err)
			continue
		}
		kookyCookies = append(kookyCookies, cookies...)
	}
	if len(kookyCookies) == 0 {
		return "", fmt.Errorf("no browser cookies found for %q", domain)
	}
	logging.I("Found %d cookies for %s", len(kookyCookies), domain)

	path, err := writeCookieFile(domain, convertToHTTPCookies(kookyCookies))
	if err != nil {
		return "", err
	}

	cm.mu.Lock()
	cm.files[domain] = path
	cm.mu.Unlock()
	return path, nil
}

// baseDomain extracts the registrable domain (eTLD+1) from a URL.
func baseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("error extracting base domain: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no hostname in URL %q", rawURL)
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Bare hosts (localhost, IPs) have no public suffix.
		return host, nil
	}
	return domain, nil
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
		}
	}
	return httpCookies
}

// writeCookieFile saves the cookies to a file in Netscape format.
func writeCookieFile(domain string, cookies []*http.Cookie) (string, error) {
	path := filepath.Join(os.TempDir(), "batchtube-cookies-"+domain+".txt")

	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for _, c := range cookies {
		includeSub := "FALSE"
		if strings.HasPrefix(c.Domain, ".") {
			includeSub = "TRUE"
		}
		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}
		cookiePath := c.Path
		if cookiePath == "" {
			cookiePath = "/"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Domain, includeSub, cookiePath, secure, c.Expires.Unix(), c.Name, c.Value)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write cookie file %q: %w", path, err)
	}
	return path, nil
}
