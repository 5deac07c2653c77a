// Package fetch retrieves candidate pages and reduces them to plain text
// suitable for pattern extraction. Table contents are re-emitted as a
// labeled section so table-aware strategies can target rows directly.
package fetch

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eol-research/internal/pagecache"
)

// TableSectionHeader labels the appended table-text section of a fetched
// page. Row cells are tab-joined, one row per line.
const TableSectionHeader = "== TABLES =="

// Fetcher retrieves and caches page text. Safe for concurrent use.
type Fetcher struct {
	http      *http.Client
	cache     pagecache.Store
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.http = hc }
}

// WithUserAgent sets the request User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// New creates a Fetcher over the given cache. Requests time out after 10s.
func New(cache pagecache.Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:     cache,
		userAgent: "eol-research/1.0 (+lifecycle research)",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Page returns the extracted text of a URL, from cache when fresh. A fetch
// or parse failure is a soft error: callers fall back to the search-result
// snippet.
func (f *Fetcher) Page(ctx context.Context, url string) (string, error) {
	if page, ok, err := f.cache.Get(ctx, url); err == nil && ok {
		zap.L().Debug("fetch: cache hit", zap.String("url", url))
		return page.Content, nil
	} else if err != nil {
		zap.L().Warn("fetch: cache read failed", zap.String("url", url), zap.Error(err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: build request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetch: request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("fetch: status %d for %s", resp.StatusCode, url)
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: extract %s", url)
	}

	if err := f.cache.Put(ctx, pagecache.Page{URL: url, Content: text}); err != nil {
		zap.L().Warn("fetch: cache write failed", zap.String("url", url), zap.Error(err))
	}
	return text, nil
}

var reSpaces = regexp.MustCompile(`[ \t]+`)
var reBlankLines = regexp.MustCompile(`\n{3,}`)

// ExtractText strips script/style markup from HTML and returns the page's
// visible text, followed by a TableSectionHeader section holding every
// table row as a tab-joined line.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", eris.Wrap(err, "parse html")
	}

	var tables []string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, clean(cell.Text()))
			})
			if line := strings.TrimSpace(strings.Join(cells, "\t")); line != "" {
				tables = append(tables, line)
			}
		})
	})

	doc.Find("script, style, noscript").Remove()
	body := doc.Find("body")
	text := body.Text()
	if body.Length() == 0 {
		text = doc.Text()
	}
	text = normalize(text)

	if len(tables) > 0 {
		text += "\n\n" + TableSectionHeader + "\n" + strings.Join(tables, "\n")
	}
	return text, nil
}

func clean(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(strings.ReplaceAll(s, "\n", " "), " "))
}

func normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(reSpaces.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(reBlankLines.ReplaceAllString(s, "\n\n"))
}
