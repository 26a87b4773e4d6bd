package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// SheetsClient talks to the values surface of a spreadsheet backup:
// full-range reads and full-range overwrites, nothing finer. The base
// URL is configurable so tests and self-hosted grid stores can stand in
// for the real service.
type SheetsClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewSheetsClient builds a client with a bounded request timeout.
func NewSheetsClient(baseURL string, timeout time.Duration) *SheetsClient {
	return &SheetsClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type valuesPayload struct {
	Range          string          `json:"range,omitempty"`
	MajorDimension string          `json:"majorDimension,omitempty"`
	Values         [][]interface{} `json:"values"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *SheetsClient) valuesURL(spreadsheetID, rng, query string) string {
	u := fmt.Sprintf("%s/%s/values/%s", c.BaseURL, url.PathEscape(spreadsheetID), url.PathEscape(rng))
	if query != "" {
		u += "?" + query
	}
	return u
}

// Update overwrites one range with header+data rows.
func (c *SheetsClient) Update(ctx context.Context, token, spreadsheetID, rng string, values [][]string) error {
	payload := valuesPayload{
		Range:          rng,
		MajorDimension: "ROWS",
		Values:         toCells(values),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.valuesURL(spreadsheetID, rng, "valueInputOption=RAW"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("update %s: %s", rng, remoteMessage(resp))
	}
	return nil
}

// Read fetches one full range. Cells come back as strings; the remote
// may render numbers as JSON numbers, which are kept verbatim.
func (c *SheetsClient) Read(ctx context.Context, token, spreadsheetID, rng string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.valuesURL(spreadsheetID, rng, ""), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("read %s: %s", rng, remoteMessage(resp))
	}

	var payload valuesPayload
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rng, err)
	}
	return fromCells(payload.Values), nil
}

func remoteMessage(resp *http.Response) string {
	var e apiError
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return fmt.Sprintf("remote returned status %d", resp.StatusCode)
}

func toCells(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}

func fromCells(rows [][]interface{}) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			switch c := v.(type) {
			case string:
				cells[j] = c
			case json.Number:
				cells[j] = c.String()
			case nil:
				cells[j] = ""
			default:
				cells[j] = fmt.Sprint(c)
			}
		}
		out[i] = cells
	}
	return out
}
