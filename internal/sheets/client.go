// Package sheets is a minimal client for the Google Sheets values API,
// used for the legacy lead-capture rows and the subscription audit trail.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// LeadHeaders is the header row of the lead-capture sheet.
var LeadHeaders = []any{
	"Full Name", "Email ID", "Phone Number", "City", "Contacting As",
	"Help Type", "Message", "Preferred Mode", "Best Time",
}

// Writer is the part of the client handlers and services use.
type Writer interface {
	CreateHeaders(ctx context.Context, spreadsheetID string) error
	AppendRow(ctx context.Context, spreadsheetID string, row []any) error
}

// Client talks to the Sheets REST API with a bearer token.
type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a Sheets client. The token is a service-account
// access token supplied through configuration.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		apiURL:     "https://sheets.googleapis.com/v4",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type valueRange struct {
	Values [][]any `json:"values"`
}

func (c *Client) put(ctx context.Context, method, path string, body valueRange) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("unexpected status: " + resp.Status)
	}
	return nil
}

// CreateHeaders writes the header row into Sheet1!A1:I1.
func (c *Client) CreateHeaders(ctx context.Context, spreadsheetID string) error {
	path := "/spreadsheets/" + spreadsheetID + "/values/" +
		url.PathEscape("Sheet1!A1:I1") + "?valueInputOption=RAW"
	return c.put(ctx, "PUT", path, valueRange{Values: [][]any{LeadHeaders}})
}

// AppendRow appends one row to the sheet.
func (c *Client) AppendRow(ctx context.Context, spreadsheetID string, row []any) error {
	path := "/spreadsheets/" + spreadsheetID + "/values/" +
		url.PathEscape("Sheet1!A:I") + ":append?valueInputOption=RAW"
	return c.put(ctx, "POST", path, valueRange{Values: [][]any{row}})
}
