// Package twilio is a minimal client for the Twilio messages API,
// used to deliver OTP codes over SMS in the mobile flow.
package twilio

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender is the part of the client the auth service uses.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Client talks to the Twilio REST API with basic auth.
type Client struct {
	accountSID string
	authToken  string
	from       string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a Twilio client from account credentials and the
// sending phone number.
func NewClient(accountSID, authToken, from string) *Client {
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		apiURL:     "https://api.twilio.com/2010-04-01",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendSMS sends one text message to the given number.
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := c.apiURL + "/Accounts/" + c.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.accountSID + ":" + c.authToken))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	return nil
}
