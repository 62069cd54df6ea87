package discover

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mlevkov/signalsift/internal/cache"
	"github.com/mlevkov/signalsift/internal/model"
)

// Origin tags identify the discovery channel that produced a source
const (
	OriginSeed    = "seed"
	OriginNewsRSS = "news_rss"
)

// Discoverer gathers source documents for a company from the configured
// seed URLs and a news feed lookup.
type Discoverer struct {
	fetcher *Fetcher
	store   *cache.SourceStore // nil disables caching
	cfg     model.DiscoveryConfig
}

// NewDiscoverer creates a discoverer. store may be nil.
func NewDiscoverer(fetcher *Fetcher, store *cache.SourceStore, cfg model.DiscoveryConfig) *Discoverer {
	return &Discoverer{fetcher: fetcher, store: store, cfg: cfg}
}

type candidate struct {
	url         string
	title       string
	originTag   string
	publishedAt *time.Time
}

// DiscoverSources returns the source set for one analysis run. Fetch
// failures produce sources with empty text instead of dropping the URL;
// downstream stages treat those as unverifiable, not broken.
func (d *Discoverer) DiscoverSources(ctx context.Context, company string) []model.Source {
	candidates := make([]candidate, 0, d.cfg.MaxSources)
	for _, seed := range d.cfg.SeedURLs {
		candidates = append(candidates, candidate{url: seed, originTag: OriginSeed})
	}
	candidates = append(candidates, d.newsCandidates(ctx, company)...)

	if d.cfg.MaxSources > 0 && len(candidates) > d.cfg.MaxSources {
		candidates = candidates[:d.cfg.MaxSources]
	}

	seen := make(map[string]bool, len(candidates))
	sources := make([]model.Source, 0, len(candidates))
	for _, cand := range candidates {
		if ctx.Err() != nil {
			break
		}
		if cand.url == "" || seen[cand.url] {
			continue
		}
		seen[cand.url] = true
		sources = append(sources, d.fetchSource(ctx, cand))
	}
	return sources
}

// fetchSource resolves one candidate through the cache, falling back to
// a live fetch
func (d *Discoverer) fetchSource(ctx context.Context, cand candidate) model.Source {
	if d.store != nil {
		if cached, found := d.store.Get(cand.url); found {
			return *cached
		}
	}

	src, err := d.fetcher.Fetch(ctx, cand.url, cand.originTag)
	if err != nil {
		// Keep the source with empty text; "cannot verify" is a valid
		// state for every validator.
		return model.Source{URL: cand.url, Title: cand.title, OriginTag: cand.originTag, PublishedAt: cand.publishedAt}
	}

	if src.Title == "" {
		src.Title = cand.title
	}
	if src.PublishedAt == nil {
		src.PublishedAt = cand.publishedAt
	}

	if d.store != nil && src.RawText != "" {
		_ = d.store.Put(src)
	}
	return src
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// newsFeedURL is the feed endpoint template (injectable for tests)
var newsFeedURL = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"

// newsCandidates queries the news RSS feed for recent coverage of the
// company, honoring the lookback window.
func (d *Discoverer) newsCandidates(ctx context.Context, company string) []candidate {
	feedURL := fmt.Sprintf(newsFeedURL, url.QueryEscape(company))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", d.fetcher.userAgent)

	resp, err := d.fetcher.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.fetcher.maxBytes))
	if err != nil {
		return nil
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil
	}

	cutoff := time.Time{}
	if d.cfg.LookbackDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -d.cfg.LookbackDays)
	}

	var candidates []candidate
	for _, item := range feed.Channel.Items {
		if item.Link == "" {
			continue
		}
		cand := candidate{url: item.Link, title: item.Title, originTag: OriginNewsRSS}
		if t, err := time.Parse(time.RFC1123, item.PubDate); err == nil {
			if !cutoff.IsZero() && t.Before(cutoff) {
				continue
			}
			cand.publishedAt = &t
		} else if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
			if !cutoff.IsZero() && t.Before(cutoff) {
				continue
			}
			cand.publishedAt = &t
		}
		candidates = append(candidates, cand)
	}
	return candidates
}
