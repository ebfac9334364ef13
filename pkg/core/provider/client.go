// Package provider implements the paginated datatable client used to
// pull the security universe and per-entity metrics.
//
// The client is shape-tolerant: a page may arrive either as a
// datatable envelope (columns + positional data rows + an opaque
// continuation cursor) or as a flat JSON array of per-entity objects.
// Either way the output is a sequence of RawRecords, column name ->
// value; no interpretation of values happens here.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"

	"valuescreen/pkg/models"
)

const (
	// DefaultBaseURL is the Nasdaq Data Link API root.
	DefaultBaseURL = "https://data.nasdaq.com/api/v3"

	// DefaultMaxPages bounds worst-case run time against a
	// misbehaving or infinite-paginating endpoint. Exceeding it is a
	// TransportError, since the result set is incomplete.
	DefaultMaxPages = 50

	// bodyPrefixLimit caps how much of an error response body is
	// carried in a TransportError for diagnostics.
	bodyPrefixLimit = 512
)

// TransportError is fatal for the stage that raised it: the data the
// screen would run on is incomplete by definition.
type TransportError struct {
	Table      string
	StatusCode int    // 0 when the failure was not an HTTP status
	BodyPrefix string // bounded prefix of the response body
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("provider %s: status %d: %s", e.Table, e.StatusCode, e.BodyPrefix)
	case e.Err != nil:
		return fmt.Sprintf("provider %s: %v", e.Table, e.Err)
	default:
		return fmt.Sprintf("provider %s: transport failure", e.Table)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// TableQuery is the free-form query-parameter bag accepted by the
// datatable endpoint. Zero fields are omitted from the request.
type TableQuery struct {
	Ticker   string `url:"ticker,omitempty"`
	Exchange string `url:"exchange,omitempty"`
	Columns  string `url:"qopts.columns,omitempty"`
	PerPage  int    `url:"qopts.per_page,omitempty"`
	Cursor   string `url:"qopts.cursor_id,omitempty"`
}

// Client fetches full result sets from a datatable-style API,
// transparently following the continuation cursor.
type Client struct {
	baseURL    string
	apiKey     string
	maxPages   int
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a datatable client. The API key is attached to
// every request; it is never included in errors or log output.
func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		maxPages: DefaultMaxPages,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// SetMaxPages overrides the pagination safety ceiling.
func (c *Client) SetMaxPages(n int) {
	if n > 0 {
		c.maxPages = n
	}
}

// FetchTable retrieves the complete result set for a table, requesting
// page after page until the server omits a continuation cursor. The
// requests are idempotent GETs; callers may safely re-invoke on
// failure.
func (c *Client) FetchTable(ctx context.Context, table string, q TableQuery) ([]models.RawRecord, error) {
	var rows []models.RawRecord
	for page := 0; ; page++ {
		if page >= c.maxPages {
			return nil, &TransportError{
				Table: table,
				Err:   fmt.Errorf("pagination ceiling of %d pages reached", c.maxPages),
			}
		}

		pageRows, next, err := c.fetchPage(ctx, table, q)
		if err != nil {
			return nil, err
		}
		rows = append(rows, pageRows...)

		c.log.Debug("fetched page",
			zap.String("table", table),
			zap.Int("page", page),
			zap.Int("rows", len(pageRows)),
			zap.Bool("more", next != ""))

		if next == "" {
			return rows, nil
		}
		q.Cursor = next
	}
}

func (c *Client) fetchPage(ctx context.Context, table string, q TableQuery) ([]models.RawRecord, string, error) {
	vals, err := query.Values(q)
	if err != nil {
		return nil, "", fmt.Errorf("encode query for %s: %w", table, err)
	}
	vals.Set("api_key", c.apiKey)

	url := fmt.Sprintf("%s/datatables/%s.json?%s", c.baseURL, table, vals.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request for %s: %w", table, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &TransportError{Table: table, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransportError{Table: table, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", &TransportError{
			Table:      table,
			StatusCode: resp.StatusCode,
			BodyPrefix: bodyPrefix(body),
		}
	}

	rows, next, err := decodePage(body)
	if err != nil {
		return nil, "", &TransportError{
			Table:      table,
			BodyPrefix: bodyPrefix(body),
			Err:        err,
		}
	}
	return rows, next, nil
}

func bodyPrefix(body []byte) string {
	if len(body) > bodyPrefixLimit {
		body = body[:bodyPrefixLimit]
	}
	return string(body)
}
