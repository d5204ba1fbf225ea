// Package scraper reads release listings from the blog with [colly].
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/gocolly/colly/v2"
)

// PageScraper fetches one listing page at a time.
type PageScraper struct {
	pageURL      string
	itemSelector string
	linkSelector string
	tagSelector  string
	userAgent    string
	timeout      time.Duration
	logger       *log.Logger
}

// New creates a [PageScraper] from the scraper section of the config.
func New(cfg shared.ScraperConfig, logger *log.Logger) *PageScraper {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PageScraper{
		pageURL:      cfg.PageURL,
		itemSelector: cfg.ItemSelector,
		linkSelector: cfg.LinkSelector,
		tagSelector:  cfg.TagSelector,
		userAgent:    cfg.UserAgent,
		timeout:      cfg.Timeout,
		logger:       shared.WithLogger(logger, "component", "scraper"),
	}
}

// PageURL returns the listing URL for page index.
func (s *PageScraper) PageURL(index int) string {
	return fmt.Sprintf(s.pageURL, index)
}

// FetchPage returns the releases listed on page index.
//
// Items whose label does not parse are dropped. Transport and parse failures are logged and yield no releases.
func (s *PageScraper) FetchPage(ctx context.Context, index int) []models.Release {
	url := s.PageURL(index)
	if err := ctx.Err(); err != nil {
		s.logger.Warn("page skipped", "page", index, "error", err)
		return nil
	}

	c := s.newCollector(ctx)
	var releases []models.Release
	dropped := 0

	c.OnHTML(s.itemSelector, func(e *colly.HTMLElement) {
		release, ok := s.extract(e)
		if !ok {
			dropped++
			return
		}
		releases = append(releases, release)
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("%w: status %d: %w", shared.ErrAPIRequest, r.StatusCode, err)
	})

	c.OnRequest(func(r *colly.Request) {
		s.logger.Debug("visiting", "url", r.URL.String())
	})

	if err := c.Visit(url); err != nil && visitErr == nil {
		visitErr = fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if visitErr != nil {
		s.logger.Error("failed to fetch page", "page", index, "url", url, "error", visitErr)
		return nil
	}

	s.logger.Info("page scraped", "page", index, "releases", len(releases), "dropped", dropped)
	return releases
}

func (s *PageScraper) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.WithTransport(&contextTransport{ctx: ctx, base: http.DefaultTransport})
	if s.userAgent != "" {
		c.UserAgent = s.userAgent
	}
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}
	return c
}

// contextTransport cancels requests when ctx ends. colly builds its own requests, so the context is
// attached here. The request stays bound until its body is closed.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())
	stop := context.AfterFunc(t.ctx, cancel)
	release := func() {
		stop()
		cancel()
	}

	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		release()
		return nil, err
	}
	resp.Body = &releaseBody{ReadCloser: resp.Body, release: release}
	return resp, nil
}

type releaseBody struct {
	io.ReadCloser
	release func()
}

func (b *releaseBody) Close() error {
	err := b.ReadCloser.Close()
	b.release()
	return err
}

func (s *PageScraper) extract(e *colly.HTMLElement) (models.Release, bool) {
	link := e.DOM.ChildrenFiltered(s.linkSelector).First()
	if link.Length() == 0 {
		return models.Release{}, false
	}

	text := link.Text()
	label, ok := ParseLabel(text)
	if !ok {
		s.logger.Debug("malformed label dropped", "label", strings.TrimSpace(text))
		return models.Release{}, false
	}

	href, _ := link.Attr("href")
	release := models.Release{
		Artist:    label.Artist,
		Album:     label.Album,
		SourceURL: e.Request.AbsoluteURL(href),
		Tags:      []string{},
	}

	if s.tagSelector != "" {
		seen := make(map[string]struct{})
		e.DOM.Find(s.tagSelector).Each(func(_ int, tag *goquery.Selection) {
			name := strings.TrimSpace(tag.Text())
			if name == "" {
				return
			}
			if _, dup := seen[name]; dup {
				return
			}
			seen[name] = struct{}{}
			release.Tags = append(release.Tags, name)
		})
	}

	return release, true
}
