// Package extractor turns raw HTML into structured page content: title,
// cleaned body text, publication date, and same-host outbound links.
package extractor

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/scourhq/scour/internal/types"
)

// Elements whose text never belongs to the main content.
const strippedElements = "script, style, noscript, iframe, nav, header, footer, aside, form, button, svg"

var (
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+\.\S+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Extractor parses fetched pages.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("component", "extractor")}
}

// Extract parses markup fetched from pageURL. The returned links are
// absolute same-host URLs with fragments stripped, de-duplicated in
// document order.
func (e *Extractor) Extract(pageURL, rawHTML string) (*types.PageContent, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &types.ExtractError{URL: pageURL, Err: fmt.Errorf("parse html: %w", err)}
	}
	doc := goquery.NewDocumentFromNode(root)

	body := cleanText(mainContentText(doc))
	content := &types.PageContent{
		Title:         extractTitle(doc),
		Body:          body,
		WordCount:     len(strings.Fields(body)),
		PublishDate:   extractPublishDate(root),
		OutboundLinks: extractLinks(doc, pageURL),
	}

	e.logger.Debug("page extracted",
		"url", pageURL,
		"title", content.Title,
		"words", content.WordCount,
		"links", len(content.OutboundLinks),
	)
	return content, nil
}

// extractTitle prefers the <title> element, then og:title, then the
// first h1.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// mainContentText returns the text of the page's main content region,
// with boilerplate elements removed. Falls back from <article> to
// <main> to <body>.
func mainContentText(doc *goquery.Document) string {
	for _, selector := range []string{"article", "main", "body"} {
		region := doc.Find(selector).First()
		if region.Length() == 0 {
			continue
		}
		region.Find(strippedElements).Remove()
		if text := region.Text(); strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

// cleanText strips URLs and email addresses and collapses whitespace.
func cleanText(text string) string {
	text = urlRe.ReplaceAllString(text, " ")
	text = emailRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// publishDateXPaths locate publication timestamps in rough order of
// reliability: article metadata, schema.org meta, then <time> elements.
var publishDateXPaths = []string{
	`//meta[@property="article:published_time"]/@content`,
	`//meta[@itemprop="datePublished"]/@content`,
	`//meta[@name="date"]/@content`,
	`//meta[@name="publish-date"]/@content`,
	`//meta[@name="dc.date"]/@content`,
	`//time/@datetime`,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 January 2006",
}

// extractPublishDate finds and parses the page's publication instant.
// Dates without a zone are taken as UTC. Returns nil when nothing
// parses.
func extractPublishDate(root *html.Node) *time.Time {
	for _, xpath := range publishDateXPaths {
		nodes, err := htmlquery.QueryAll(root, xpath)
		if err != nil {
			continue
		}
		for _, node := range nodes {
			if t := parseDate(strings.TrimSpace(htmlquery.InnerText(node))); t != nil {
				return t
			}
		}
	}
	return nil
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// extractLinks collects absolute same-host links in document order.
func extractLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !strings.EqualFold(abs.Hostname(), base.Hostname()) {
			return
		}
		abs.Fragment = ""
		link := abs.String()
		if link == pageURL {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}
