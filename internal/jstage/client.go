// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jstage fetches article search results from the J-STAGE search API
// and normalizes them into Records.
//
// Fetch walks the API's pages sequentially, 1000 entries at a time, waiting
// the query's interval between requests. It stops on an empty page, when the
// record cap is reached, or when the next start index passes the total count
// reported by the first page that carried one. Any transport, status or
// parse failure aborts the whole call, as does an ERR_* result status on a
// page without entries; no partial result is returned.
//
// The total count is read once. Later pages reporting a different total are
// ignored. When the cap cuts a page short the next start index still
// advances by a full page, so a run cannot be resumed from its start index.
package jstage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jstage-search/internal/httputil"
	"github.com/pdiddy/jstage-search/internal/logging"
	"github.com/pdiddy/jstage-search/internal/metrics"
	"github.com/pdiddy/jstage-search/internal/xmltree"
	"github.com/pdiddy/jstage-search/pkg/types"
)

// PageSize is the number of entries requested per page.
const PageSize = 1000

// service selects article search on the J-STAGE search API.
const service = "3"

// APIError is the status J-STAGE reports in a response's result element.
// Fetch returns it only for an ERR_* status on a page without entries;
// warnings and statuses on pages that carry entries are ignored.
type APIError struct {
	Status  string
	Message string
}

// Fatal reports whether the status is an ERR_* code.
func (e *APIError) Fatal() bool {
	return strings.HasPrefix(strings.ToUpper(e.Status), "ERR")
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("J-STAGE API status %s", e.Status)
	}
	return fmt.Sprintf("J-STAGE API status %s: %s", e.Status, e.Message)
}

// Client fetches search results. It holds only configuration, so one Client
// may serve concurrent Fetch calls; each call uses its own HTTP session.
type Client struct {
	cfg       types.FetchConfig
	extractor Extractor
	logger    zerolog.Logger
	metrics   *metrics.Fetch
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-page and per-call events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the collectors updated during fetches.
func WithMetrics(m *metrics.Fetch) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns a Client. Empty fields of cfg take their defaults.
func NewClient(cfg types.FetchConfig, opts ...Option) *Client {
	def := types.DefaultFetchConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}

	c := &Client{
		cfg:       cfg,
		extractor: Extractor{Language: strings.ToLower(cfg.Language)},
		logger:    logging.NewLogger("jstage"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch runs one query to completion and returns every record it produced,
// at most q.MaxRecords, together with the API's total count if reported.
func (c *Client) Fetch(ctx context.Context, q types.Query) (types.Result, error) {
	if err := q.Validate(); err != nil {
		return types.Result{}, err
	}

	session := httputil.NewSession(c.cfg.HTTPConfig)
	defer session.Close()

	log := c.logger.With().
		Str("term", q.Term).
		Str("field", string(q.Field)).
		Int("year_from", q.YearFrom).
		Logger()
	began := time.Now()

	var records []types.Record
	var total *int
	pages := 0

	for start := 1; ; {
		if pages > 0 {
			if err := httputil.Wait(ctx, q.Interval); err != nil {
				return types.Result{}, fmt.Errorf("waiting before page start=%d: %w", start, err)
			}
		}

		doc, err := c.fetchPage(ctx, session, q, start)
		if err != nil {
			log.Error().Err(err).Int("start", start).Msg("page fetch failed")
			return types.Result{}, err
		}
		pages++

		if total == nil {
			total = totalResults(doc)
			if total != nil {
				c.metrics.SetTotalResults(*total)
			}
		}

		entries := xmltree.TwoTier(NSAtom, "entry").Descendants(doc)
		log.Debug().Int("start", start).Int("entries", len(entries)).Msg("page fetched")
		if len(entries) == 0 {
			if apiErr := resultStatus(doc); apiErr != nil && apiErr.Fatal() {
				c.metrics.ObserveError(metrics.ClassAPI)
				err := fmt.Errorf("J-STAGE response start=%d: %w", start, apiErr)
				log.Error().Err(err).Int("start", start).Msg("page fetch failed")
				return types.Result{}, err
			}
			break
		}

		before := len(records)
		for _, entry := range entries {
			records = append(records, c.extractor.Extract(entry))
			if len(records) == q.MaxRecords {
				break
			}
		}
		c.metrics.AddRecords(len(records) - before)

		if len(records) >= q.MaxRecords {
			break
		}

		start += PageSize
		if total != nil && start > *total {
			break
		}
	}

	ev := log.Info().
		Int("records", len(records)).
		Int("pages", pages).
		Dur("elapsed", time.Since(began))
	if total != nil {
		ev = ev.Int("total_results", *total)
	}
	ev.Msg("fetch complete")

	return types.Result{Records: records, TotalCount: total}, nil
}

// fetchPage requests and parses one page.
func (c *Client) fetchPage(ctx context.Context, session *httputil.Session, q types.Query, start int) (*xmltree.Element, error) {
	pageURL := c.pageURL(q, start)

	began := time.Now()
	body, err := session.Get(ctx, pageURL)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			c.metrics.ObserveError(metrics.ClassStatus)
			return nil, fmt.Errorf("J-STAGE API page start=%d returned %w", start, err)
		}
		c.metrics.ObserveError(metrics.ClassTransport)
		return nil, fmt.Errorf("J-STAGE API request start=%d: %w", start, err)
	}

	doc, err := xmltree.Parse(bytes.NewReader(body))
	if err != nil {
		c.metrics.ObserveError(metrics.ClassParse)
		return nil, fmt.Errorf("parsing J-STAGE response start=%d: %w", start, err)
	}
	c.metrics.ObservePage(time.Since(began))
	return doc, nil
}

// pageURL builds the request URL for the page beginning at start.
func (c *Client) pageURL(q types.Query, start int) string {
	params := url.Values{}
	params.Set("service", service)
	params.Set(q.Field.Param(), q.Term)
	params.Set("pubyearfrom", strconv.Itoa(q.YearFrom))
	params.Set("start", strconv.Itoa(start))
	params.Set("count", strconv.Itoa(PageSize))

	sep := "?"
	if strings.Contains(c.cfg.BaseURL, "?") {
		sep = "&"
	}
	return c.cfg.BaseURL + sep + params.Encode()
}

// totalResults reads the opensearch total count, or nil when the page has
// none or it is not a number.
func totalResults(doc *xmltree.Element) *int {
	el := xmltree.TwoTier(NSOpenSearch, "totalResults").First(doc)
	if el == nil {
		return nil
	}
	t, ok := el.FirstText()
	if !ok {
		return nil
	}
	return toInt(&t)
}

// resultStatus reports the in-band error J-STAGE places in
// <result><status>…</status><message>…</message></result>. A missing result
// element or status "0" means success.
func resultStatus(doc *xmltree.Element) *APIError {
	result := xmltree.TwoTier(NSAtom, "result").Children(doc)
	if len(result) == 0 {
		return nil
	}
	statusEl := xmltree.TwoTier(NSAtom, "status").First(result[0])
	if statusEl == nil {
		return nil
	}
	status, _ := statusEl.FirstText()
	if status == "" || status == "0" {
		return nil
	}
	apiErr := &APIError{Status: status}
	if msgEl := xmltree.TwoTier(NSAtom, "message").First(result[0]); msgEl != nil {
		apiErr.Message, _ = msgEl.FirstText()
	}
	return apiErr
}
