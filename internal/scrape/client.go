package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/jchaskell/cr/internal/parser"
)

// DefaultBaseURL is the congress.gov origin.
const DefaultBaseURL = "https://www.congress.gov"

// maxPageBytes caps a single downloaded page.
const maxPageBytes = 20 << 20

// Options configures a Client. Zero values fall back to sensible defaults.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Rate       float64 // requests per second; <= 0 disables throttling
	MaxElapsed time.Duration
	UserAgent  string
	Stats      *Stats
	Log        *logrus.Entry
}

// Client fetches Congressional Record pages from congress.gov.
type Client struct {
	base       string
	http       *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
	userAgent  string
	stats      *Stats
	log        *logrus.Entry
}

func NewClient(opts Options) *Client {
	c := &Client{
		base:       strings.TrimRight(opts.BaseURL, "/"),
		http:       opts.HTTPClient,
		maxElapsed: opts.MaxElapsed,
		userAgent:  opts.UserAgent,
		stats:      opts.Stats,
		log:        opts.Log,
	}
	if c.base == "" {
		c.base = DefaultBaseURL
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if opts.Rate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	if c.maxElapsed <= 0 {
		c.maxElapsed = 2 * time.Minute
	}
	if c.userAgent == "" {
		c.userAgent = "crecord/1.0"
	}
	if c.stats == nil {
		c.stats = NewStats(time.Hour)
	}
	if c.log == nil {
		base := logrus.New()
		base.SetOutput(io.Discard)
		c.log = logrus.NewEntry(base)
	}
	return c
}

// Stats returns the client's latency tracker.
func (c *Client) Stats() *Stats {
	return c.stats
}

// BaseURL returns the origin relative links are resolved against.
func (c *Client) BaseURL() string {
	return c.base
}

// Links returns the article links of a day index page: the first anchor of
// every even-indexed table cell, with relative links made absolute.
func (c *Client) Links(ctx context.Context, dayURL string) ([]string, error) {
	doc, err := c.fetch(ctx, dayURL)
	if err != nil {
		return nil, err
	}

	var links []string
	for i, td := range findAll(doc, "td") {
		if i%2 != 0 {
			continue
		}
		a := findFirst(td, "a")
		if a == nil {
			continue
		}
		href := attr(a, "href")
		if href == "" {
			continue
		}
		if strings.HasPrefix(href, "/") {
			href = c.base + href
		}
		links = append(links, href)
	}
	return links, nil
}

// Article returns the transcript text of one article page in list form, or
// "" when the page has no transcript block.
func (c *Client) Article(ctx context.Context, url string) (string, error) {
	doc, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return parser.ArticleText(doc), nil
}

// Day fetches every article of one chamber-day and joins them with a single
// space. A day without articles yields ErrNoContent.
func (c *Client) Day(ctx context.Context, ch Chamber, day time.Time) (string, error) {
	dayURL := DayURL(c.base, ch, day)
	log := c.log.WithFields(logrus.Fields{"chamber": string(ch), "date": day.Format("2006-01-02")})

	links, err := c.Links(ctx, dayURL)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNoContent, dayURL)
	}
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoContent, dayURL)
	}
	log.WithField("articles", len(links)).Debug("fetching day")

	articles := make([]string, 0, len(links))
	for _, link := range links {
		text, err := c.Article(ctx, link)
		if err != nil {
			return "", fmt.Errorf("article %s: %w", link, err)
		}
		articles = append(articles, text)
	}
	return strings.Join(articles, " "), nil
}

// SaveRange fetches each day and writes it to Filename(dir, ch, day). Days
// without content are logged and skipped. It returns the files written.
func (c *Client) SaveRange(ctx context.Context, ch Chamber, dir string, days []time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var written []string
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		url := DayURL(c.base, ch, day)
		c.log.WithField("url", url).Info("retrieving content")

		text, err := c.Day(ctx, ch, day)
		if errors.Is(err, ErrNoContent) {
			c.log.WithField("url", url).Info("no content")
			continue
		}
		if err != nil {
			return written, err
		}

		path := Filename(dir, ch, day)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		c.log.WithField("file", filepath.Base(path)).Info("wrote transcript")
		written = append(written, path)
	}
	return written, nil
}

// fetch downloads and parses url, retrying transient failures with
// exponential backoff until maxElapsed.
func (c *Client) fetch(ctx context.Context, url string) (*html.Node, error) {
	var body []byte
	op := func() error {
		b, err := c.get(ctx, url)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	notify := func(err error, wait time.Duration) {
		c.log.WithError(err).WithField("retry_in", wait.String()).Warn("fetch failed, retrying")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.stats.Record(time.Since(start), true)
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	elapsed := time.Since(start)
	if err != nil {
		c.stats.Record(elapsed, true)
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.stats.Record(elapsed, true)
		return nil, &RetryableError{StatusCode: resp.StatusCode, URL: url}
	case resp.StatusCode != http.StatusOK:
		c.stats.Record(elapsed, true)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}
	c.stats.Record(elapsed, false)
	return body, nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
