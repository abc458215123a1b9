// Package sheets talks to the remote spreadsheet values API: multi-range
// reads via batchGet and single-row appends. It owns response normalization
// only; whether a failure degrades or aborts is the caller's policy.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const maxErrBody = 512

// GatewayError carries the non-success status and body of a spreadsheet API
// response.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("sheets api: status %d: %s", e.Status, e.Body)
}

// TokenSource supplies a valid bearer token for each request. Satisfied by
// *auth.TokenSource.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	client        *http.Client
	baseURL       string
	spreadsheetID string
	appendRange   string
	tokens        TokenSource
}

// NewClient builds a gateway for one spreadsheet. baseURL is the values API
// root, e.g. "https://sheets.googleapis.com/v4"; appendRange is the target
// range for AppendRow.
func NewClient(baseURL, spreadsheetID, appendRange string, tokens TokenSource) *Client {
	return &Client{
		client:        &http.Client{Timeout: 20 * time.Second},
		baseURL:       baseURL,
		spreadsheetID: spreadsheetID,
		appendRange:   appendRange,
		tokens:        tokens,
	}
}

// BatchGet fetches the given ranges in one call and returns one flattened
// cell slice per range, in request order. Row/column structure is discarded;
// cells are read row-major.
func (c *Client) BatchGet(ctx context.Context, ranges ...string) ([][]string, error) {
	q := url.Values{}
	for _, r := range ranges {
		q.Add("ranges", r)
	}
	u := fmt.Sprintf("%s/spreadsheets/%s/values:batchGet?%s", c.baseURL, url.PathEscape(c.spreadsheetID), q.Encode())

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		ValueRanges []struct {
			Values [][]any `json:"values"`
		} `json:"valueRanges"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode batchGet response: %w", err)
	}
	if got, want := len(out.ValueRanges), len(ranges); got != want {
		return nil, fmt.Errorf("batchGet returned %d ranges, want %d", got, want)
	}

	results := make([][]string, len(ranges))
	for i, vr := range out.ValueRanges {
		flat := make([]string, 0, len(vr.Values))
		for _, row := range vr.Values {
			for _, cell := range row {
				flat = append(flat, cellString(cell))
			}
		}
		results[i] = flat
	}
	return results, nil
}

// AppendRow appends exactly one row to the configured range. USER_ENTERED
// input lets the backend interpret cell types, so numeric strings become
// numbers and dates become dates. No automatic retry on failure.
func (c *Client) AppendRow(ctx context.Context, cells []any) error {
	payload, err := json.Marshal(map[string]any{"values": [][]any{cells}})
	if err != nil {
		return fmt.Errorf("encode append body: %w", err)
	}

	u := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		c.baseURL, url.PathEscape(c.spreadsheetID), url.PathEscape(c.appendRange))

	_, err = c.do(ctx, http.MethodPost, u, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<22))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{Status: resp.StatusCode, Body: truncate(string(b), maxErrBody)}
	}
	return b, nil
}

// cellString renders a cell value as text. The API usually returns strings,
// but UNFORMATTED reads can yield numbers or bools.
func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
