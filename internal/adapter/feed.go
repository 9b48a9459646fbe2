package adapter

import (
	"context"
	"html"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/amishk599/jobfeed/internal/model"
)

var (
	feedItemRegex    = regexp.MustCompile(`(?is)<(item|entry)\b[^>]*>(.*?)</(?:item|entry)>`)
	feedChannelTitle = regexp.MustCompile(`(?is)<title\b[^>]*>(.*?)</title>`)
	feedLinkHref     = regexp.MustCompile(`(?is)<link\b[^>]*?\bhref\s*=\s*["']([^"']+)["']`)
	cdataRegex       = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
)

// Date layouts seen in the wild for pubDate (RFC 1123 variants) and Atom
// updated/published (RFC 3339).
var feedDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// FeedAdapter reads an RSS or Atom job feed. It is a tag extractor rather than
// an XML parser: it only looks at the handful of elements a posting needs, so
// feeds that are not well-formed XML still yield postings.
type FeedAdapter struct {
	feedURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewFeedAdapter creates an adapter for the feed at feedURL.
func NewFeedAdapter(feedURL string, client *http.Client, logger *slog.Logger) *FeedAdapter {
	return &FeedAdapter{
		feedURL: feedURL,
		client:  client,
		logger:  logger,
	}
}

// FetchJobs retrieves the feed and maps each item or entry to a Job. Feeds
// rarely carry structured fields, so postings are remote with no tags.
func (a *FeedAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	header := http.Header{"Accept": []string{"application/rss+xml, application/atom+xml, application/xml, text/xml"}}
	body, err := fetchBody(ctx, a.client, FamilyRSS, a.feedURL, a.feedURL, header)
	if err != nil {
		return nil, err
	}
	return a.parse(string(body)), nil
}

func (a *FeedAdapter) parse(doc string) []model.Job {
	items := feedItemRegex.FindAllStringSubmatchIndex(doc, -1)

	// The feed title sits before the first item; it names the publisher.
	head := doc
	if len(items) > 0 {
		head = doc[:items[0][0]]
	}
	feedTitle := ""
	if m := feedChannelTitle.FindStringSubmatch(head); m != nil {
		feedTitle = feedText(m[1])
	}

	jobs := make([]model.Job, 0, len(items))
	for i, loc := range items {
		block := doc[loc[4]:loc[5]]

		title := feedText(feedElement(block, "title"))
		link := feedLink(block)
		if title == "" && link == "" {
			a.logger.Warn("skipping malformed posting",
				"source", FamilyRSS,
				"identifier", a.feedURL,
				"index", i,
				"error", "item has neither title nor link",
			)
			continue
		}

		description := feedElement(block, "description")
		if description == "" {
			description = feedElement(block, "content")
		}
		if description == "" {
			description = feedElement(block, "summary")
		}

		date := feedElement(block, "pubDate")
		if date == "" {
			date = feedElement(block, "published")
		}
		if date == "" {
			date = feedElement(block, "updated")
		}

		company := feedText(feedElement(block, "dc:creator"))
		if company == "" {
			company = feedText(feedElement(block, "name"))
		}
		if company == "" {
			company = feedTitle
		}

		jobs = append(jobs, model.Job{
			Title:       title,
			Company:     company,
			Remote:      true,
			Tags:        []string{},
			URL:         link,
			Source:      FamilyRSS,
			PostedAt:    parseTime(feedText(date), feedDateLayouts...),
			Description: extractText(unwrapCDATA(description)),
		})
	}
	return jobs
}

// feedElements holds one matcher per element the extractor reads.
var feedElements = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, name := range []string{"title", "link", "description", "content", "summary", "pubDate", "published", "updated", "dc:creator", "name"} {
		q := regexp.QuoteMeta(name)
		m[name] = regexp.MustCompile(`(?is)<` + q + `\b[^>]*>(.*?)</` + q + `>`)
	}
	return m
}()

// feedElement returns the raw inner text of the first <name> element in block.
func feedElement(block, name string) string {
	m := feedElements[name].FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return m[1]
}

// feedLink prefers the element text of <link> (RSS) and falls back to the
// href attribute (Atom, where <link/> is usually self-closing).
func feedLink(block string) string {
	if link := feedText(feedElement(block, "link")); link != "" {
		return link
	}
	if m := feedLinkHref.FindStringSubmatch(block); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1]))
	}
	return ""
}

// feedText unwraps CDATA, decodes entities and trims.
func feedText(s string) string {
	return strings.TrimSpace(html.UnescapeString(unwrapCDATA(s)))
}

func unwrapCDATA(s string) string {
	return cdataRegex.ReplaceAllString(s, "$1")
}
