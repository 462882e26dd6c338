package booking

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"booking-scraper/models"
	"booking-scraper/utils"
)

// Checkpointer persists the full crawl state after every page and returns
// where it was written.
type Checkpointer interface {
	Save(destination string, result models.CrawlResult) (string, error)
}

// CrawlError reports the page a crawl stopped at. The result returned next
// to it holds every page completed before the failure, and Checkpoint names
// the last snapshot written, if any.
type CrawlError struct {
	PageIndex  int
	Offset     int
	URL        string
	Checkpoint string
	Err        error
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("booking: crawl stopped at page %d (offset %d, %s): %v",
		e.PageIndex, e.Offset, e.URL, e.Err)
}

func (e *CrawlError) Unwrap() error { return e.Err }

// Pagination holds the page count and page offset policies of a crawl.
type Pagination struct {
	Rounding  Rounding
	FirstPage FirstPage
}

// Crawler walks every result page of one search and follows each listing to
// its hotel page.
type Crawler struct {
	newSession   SessionFactory
	checkpointer Checkpointer
	retry        *utils.RetryConfig
	logger       *utils.Logger
	pagination   Pagination
}

// NewCrawler creates a Crawler. retry may be nil for single attempts.
func NewCrawler(newSession SessionFactory, checkpointer Checkpointer, retry *utils.RetryConfig, pagination Pagination, logger *utils.Logger) *Crawler {
	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1, Logger: logger}
	}
	return &Crawler{
		newSession:   newSession,
		checkpointer: checkpointer,
		retry:        retry,
		logger:       logger,
		pagination:   pagination,
	}
}

// Crawl collects every page of q's results, starting from offset 0.
func (c *Crawler) Crawl(ctx context.Context, q models.SearchQuery) (models.CrawlResult, error) {
	return c.Resume(ctx, q, nil)
}

// Resume continues a crawl whose first len(prior) pages are already known.
// Pages are fetched strictly in order; the session is closed on return.
// The offset 0 page is always fetched first to count the pages.
func (c *Crawler) Resume(ctx context.Context, q models.SearchQuery, prior models.CrawlResult) (models.CrawlResult, error) {
	result := append(models.CrawlResult{}, prior...)

	session, err := c.newSession()
	if err != nil {
		return result, fmt.Errorf("booking: open session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			c.logger.Warn("[booking] Closing session failed: %v", err)
		}
	}()

	log := c.logger.With(logrus.Fields{"run": uuid.NewString(), "destination": q.Destination})

	firstURL := BuildURL(q.WithOffset(0))
	firstPage, err := c.fetchDocument(ctx, session, firstURL)
	if err != nil {
		return result, &CrawlError{PageIndex: 0, Offset: 0, URL: firstURL, Err: err}
	}

	pages := CountPages(firstPage, c.pagination.Rounding)
	if pages == 0 {
		log.Warn("[booking] No results for %s", q.Destination)
		return result, nil
	}
	log.Info("[booking] %d result pages to crawl, %d already done", pages, len(prior))

	links := utils.NewLinkSet()
	checkpoint := ""

	for i := len(prior); i < pages; i++ {
		offset := c.pagination.FirstPage.PageOffset(i)
		pageURL := BuildURL(q.WithOffset(offset))
		pageLog := log.With(logrus.Fields{"page": i + 1, "offset": offset})

		doc := firstPage
		if offset != 0 {
			doc, err = c.fetchDocument(ctx, session, pageURL)
			if err != nil {
				return result, &CrawlError{PageIndex: i, Offset: offset, URL: pageURL, Checkpoint: checkpoint, Err: err}
			}
		}

		listings, err := c.crawlPage(ctx, session, doc, links, pageLog)
		if err != nil {
			return result, &CrawlError{PageIndex: i, Offset: offset, URL: pageURL, Checkpoint: checkpoint, Err: err}
		}

		result = append(result, listings)

		path, err := c.checkpointer.Save(q.Destination, result)
		if err != nil {
			return result, &CrawlError{PageIndex: i, Offset: offset, URL: pageURL, Checkpoint: checkpoint,
				Err: fmt.Errorf("checkpoint: %w", err)}
		}
		checkpoint = path

		pageLog.Info("[booking] Page %d/%d done, %d listings, snapshot %s", i+1, pages, len(listings), path)
	}

	if links.Repeats() > 0 {
		log.Warn("[booking] %d listings reappeared on later pages (%d distinct links)", links.Repeats(), links.Unique())
	}
	log.Info("[booking] Crawl complete, %d listings on %d pages", result.Listings(), len(result))
	return result, nil
}

// crawlPage extracts every listing of a results page and attaches the
// hotel page details of listings that carry a link.
func (c *Crawler) crawlPage(ctx context.Context, session Fetcher, doc *goquery.Document, links *utils.LinkSet, log *utils.Logger) ([]models.ListingRecord, error) {
	fragments := Listings(doc)
	listings := make([]models.ListingRecord, 0, len(fragments))

	for _, fragment := range fragments {
		listing := ExtractListing(fragment)

		if listing.Link != nil {
			if !links.Add(*listing.Link) {
				log.Debug("[booking] Listing seen before: %s", listing.Name)
			}

			detailURL := ResolveLink(*listing.Link)
			detailDoc, err := c.fetchDocument(ctx, session, detailURL)
			if err != nil {
				return nil, fmt.Errorf("hotel page %s: %w", detailURL, err)
			}
			details := ExtractDetail(NewDetailPage(detailDoc))
			listing.Details = &details
		}

		listings = append(listings, listing)
	}
	return listings, nil
}

func (c *Crawler) fetchDocument(ctx context.Context, session Fetcher, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document
	err := c.retry.Do(ctx, "fetch "+pageURL, func() error {
		markup, err := session.Fetch(ctx, pageURL)
		if err != nil {
			return err
		}
		doc, err = goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err != nil {
			return fmt.Errorf("parse html: %w", err)
		}
		return nil
	})
	return doc, err
}

// ResolveLink turns a result page link into an absolute hotel page URL.
func ResolveLink(link string) string {
	link = strings.TrimSpace(link)
	base, _ := url.Parse(BookingOrigin)
	ref, err := url.Parse(link)
	if err != nil {
		return BookingOrigin + link
	}
	return base.ResolveReference(ref).String()
}
