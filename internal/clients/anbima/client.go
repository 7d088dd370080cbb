// Package anbima fetches and decodes the ANBIMA national holiday spreadsheet.
package anbima

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/extrame/xls"
	"github.com/rs/zerolog"

	"github.com/aristath/b3cal/internal/modules/calendar"
)

// DefaultURL is where ANBIMA publishes the national holiday list.
const DefaultURL = "https://www.anbima.com.br/feriados/arqs/feriados_nacionais.xls"

// maxBodyBytes caps the spreadsheet download; the real file is well under 1 MiB.
const maxBodyBytes = 16 << 20

// Client downloads the holiday spreadsheet.
type Client struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new ANBIMA client. An empty url selects DefaultURL.
func NewClient(url string, log zerolog.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.With().Str("client", "anbima").Logger(),
	}
}

// URL returns the spreadsheet location.
func (c *Client) URL() string {
	return c.url
}

// Fetch performs a single GET of the spreadsheet and returns its bytes.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	c.log.Debug().Str("url", c.url).Msg("Fetching holiday spreadsheet")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("server returned an empty body")
	}

	c.log.Info().Int("bytes", len(body)).Msg("Fetched holiday spreadsheet")
	return body, nil
}

// Parse decodes the first worksheet of an XLS workbook into holidays.
func (c *Client) Parse(data []byte) ([]calendar.Holiday, error) {
	rows, err := readSheet(data)
	if err != nil {
		return nil, err
	}
	holidays, dropped, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.log.Debug().Int("dropped_rows", dropped).Msg("Dropped non-date rows")
	}
	return holidays, nil
}

// readSheet flattens the first worksheet into string cells. The xls decoder
// panics on some malformed inputs; those are reported as errors.
func readSheet(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		last := row.LastCol()
		if last <= 0 {
			continue
		}
		cells := make([]string, last)
		for j := row.FirstCol(); j < last; j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
