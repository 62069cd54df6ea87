// Package discover gathers the source documents an analysis runs over:
// it fetches candidate URLs for a company and produces plain-text
// sources for the pipeline. Fetch failures yield sources with empty
// text rather than errors; validators treat those as "cannot verify".
package discover

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/mlevkov/signalsift/internal/model"
)

// Fetcher retrieves one URL and turns it into a Source
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewFetcher creates a Fetcher with the given HTTP configuration
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	transport := &http.Transport{}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
	}
}

// Fetch retrieves a URL and extracts its plain text. PDF responses are
// flagged and returned without text; parsing them is out of scope.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, originTag string) (model.Source, error) {
	src := model.Source{URL: rawURL, OriginTag: originTag}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return src, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return src, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return src, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	src.URL = resp.Request.URL.String()

	contentType := resp.Header.Get("Content-Type")
	if isPDF(src.URL, contentType) {
		src.IsPDF = true
		return src, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return src, fmt.Errorf("read body: %w", err)
	}

	title, text := extractText(string(body), src.URL)
	src.Title = title
	src.RawText = text
	return src, nil
}

// extractText pulls the readable article text out of an HTML page.
// Readability handles article-shaped pages; anything it cannot parse
// falls back to a visible-text walk of the DOM.
func extractText(htmlContent, pageURL string) (title, text string) {
	article, err := readability.FromReader(strings.NewReader(htmlContent), parsedURL(pageURL))
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.Title, collapseSpace(article.TextContent)
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", ""
	}
	return findTitle(doc), collapseSpace(visibleText(doc))
}

// visibleText extracts text nodes, skipping script/style/nav chrome
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "footer", "header":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isPDF(rawURL, contentType string) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	trimmed := rawURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.HasSuffix(strings.ToLower(trimmed), ".pdf")
}

// parsedURL feeds readability the page URL for resolving relative
// references; invalid URLs degrade to nil.
func parsedURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return u
}
