// Package sheets is a client for the spreadsheet service that holds the
// staff login credentials. The Credentials worksheet is header-keyed:
// the first row names the columns, the rest are accounts.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credential is one account row from the Credentials worksheet.
type Credential struct {
	Username string
	Password string
	Role     string
	Name     string
}

type Client struct {
	url           string
	spreadsheetID string
	token         string
	http          *http.Client
}

func New(serviceURL, spreadsheetID, token string) (*Client, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sheets url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid sheets url: %q", serviceURL)
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	return &Client{
		url:           u.String(),
		spreadsheetID: spreadsheetID,
		token:         token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Credentials fetches the Credentials worksheet and maps its rows by the
// header names. Rows without a username are skipped.
func (c *Client) Credentials(ctx context.Context) ([]Credential, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		c.url, url.PathEscape(c.spreadsheetID), url.PathEscape("Credentials"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create sheets request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sheets returned status %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		Values [][]string `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse sheets response: %w", err)
	}
	if len(parsed.Values) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, header := range parsed.Values[0] {
		cols[strings.ToLower(strings.TrimSpace(header))] = i
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var creds []Credential
	for _, row := range parsed.Values[1:] {
		cred := Credential{
			Username: cell(row, "username"),
			Password: cell(row, "password"),
			Role:     cell(row, "role"),
			Name:     cell(row, "name"),
		}
		if cred.Username == "" {
			continue
		}
		creds = append(creds, cred)
	}
	return creds, nil
}

// Authenticate checks the username/password pair against the worksheet.
// Returns nil when no account matches.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Credential, error) {
	creds, err := c.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	for _, cred := range creds {
		if cred.Username == username && cred.Password == password {
			match := cred
			return &match, nil
		}
	}
	return nil, nil
}
