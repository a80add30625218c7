// Package scraper collects candidate video links from web pages.
package scraper

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"batchtube/internal/utils/logging"

	"github.com/gocolly/colly"
)

// sitePattern is a per-domain hint for what a video link looks like.
type sitePattern struct {
	name    string
	pattern string
}

var patterns = map[string]sitePattern{
	"youtube.com": {name: "YouTube", pattern: "/watch?v="},
	"youtu.be":    {name: "YouTube short link", pattern: "youtu.be/"},
	"vimeo.com":   {name: "Vimeo", pattern: "vimeo.com/"},
	"twitch.tv":   {name: "Twitch", pattern: "/videos/"},
	"default":     {name: "generic", pattern: "/video"},
}

// Scraper handles web scraping operations.
type Scraper struct {
	collector *colly.Collector
}

// New returns a new Scraper instance.
func New() *Scraper {
	return &Scraper{
		collector: colly.NewCollector(),
	}
}

// CollectVideoLinks visits a page and returns the unique video links found on
// it, sorted for stable output.
func (s *Scraper) CollectVideoLinks(pageURL string) ([]string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	pattern := patterns["default"]
	for domain, p := range patterns {
		if domain == "default" {
			continue
		}
		if strings.Contains(parsed.Hostname(), domain) {
			pattern = p
			logging.I("Detected %s link", p.name)
			break
		}
	}

	unique := make(map[string]struct{})
	s.collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		if strings.Contains(link, pattern.pattern) {
			unique[link] = struct{}{}
		}
	})

	if err := s.collector.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to scrape %q: %w", pageURL, err)
	}
	s.collector.Wait()

	links := make([]string, 0, len(unique))
	for link := range unique {
		links = append(links, link)
	}
	sort.Strings(links)

	logging.I("Collected %d video links from %q", len(links), pageURL)
	return links, nil
}
