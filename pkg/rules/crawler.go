package rules

import (
	"fmt"
	"regexp"
)

// DefaultCrawlerPattern matches the signatures of search engine crawlers and
// generic bots.
const DefaultCrawlerPattern = `(googlebot/|bot|crawler|spider|robot|crawling)`

// CrawlerRule flags automated agents by a case-insensitive pattern.
type CrawlerRule struct {
	pattern *regexp.Regexp
}

// NewCrawlerRule compiles pattern case-insensitively.
func NewCrawlerRule(pattern string) (*CrawlerRule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile crawler pattern: %w", err)
	}
	return &CrawlerRule{pattern: re}, nil
}

// DefaultCrawlerRule uses DefaultCrawlerPattern.
func DefaultCrawlerRule() *CrawlerRule {
	return &CrawlerRule{pattern: regexp.MustCompile("(?i)" + DefaultCrawlerPattern)}
}

func (c *CrawlerRule) Name() string {
	return "crawler"
}

func (c *CrawlerRule) Description() string {
	return fmt.Sprintf("User agent matches crawler signature %s", c.pattern.String())
}

func (c *CrawlerRule) Match(userAgent string) bool {
	return c.pattern.MatchString(userAgent)
}
