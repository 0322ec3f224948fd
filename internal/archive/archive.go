// Package archive is a client for the photo archive service. Recognized
// photos are filed under a Year/Month/Day folder tree so the unit can
// audit who was scanned when.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"time"
)

type Client struct {
	url        string
	token      string
	rootFolder string
	http       *http.Client
	now        func() time.Time
}

// New creates an archive client. rootFolder may be empty to file photos
// under the archive's top level.
func New(serviceURL, token, rootFolder string) (*Client, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid archive url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid archive url: %q", serviceURL)
	}

	return &Client{
		url:        u.String(),
		token:      token,
		rootFolder: rootFolder,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		now: time.Now,
	}, nil
}

// Store files the photo at path under today's Year/Month/Day folder,
// creating any folder that does not exist yet, and uploads it under the
// given name.
func (c *Client) Store(ctx context.Context, path, name string) error {
	now := c.now()

	parentID := c.rootFolder
	for _, folder := range []string{
		now.Format("2006"),
		now.Format("January"),
		now.Format("02-01-2006"),
	} {
		id, err := c.ensureFolder(ctx, folder, parentID)
		if err != nil {
			return fmt.Errorf("could not resolve folder %q: %w", folder, err)
		}
		parentID = id
	}

	return c.upload(ctx, path, name, parentID)
}

// ensureFolder returns the id of the named folder under parentID,
// creating it when the lookup comes back empty.
func (c *Client) ensureFolder(ctx context.Context, name, parentID string) (string, error) {
	id, err := c.findFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return c.createFolder(ctx, name, parentID)
}

// findFolder looks up a folder by name under parentID. Trashed folders
// are ignored; the first live hit wins. Returns "" when there is none.
func (c *Client) findFolder(ctx context.Context, name, parentID string) (string, error) {
	q := url.Values{}
	q.Set("name", name)
	if parentID != "" {
		q.Set("parent", parentID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/api/v1/folders?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("could not create folder lookup request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("folder lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("folder lookup returned status %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		Folders []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Trashed bool   `json:"trashed"`
		} `json:"folders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("could not parse folder lookup response: %w", err)
	}

	for _, f := range parsed.Folders {
		if f.Trashed {
			continue
		}
		return f.ID, nil
	}
	return "", nil
}

func (c *Client) createFolder(ctx context.Context, name, parentID string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"name":   name,
		"parent": parentID,
	})
	if err != nil {
		return "", fmt.Errorf("could not encode folder payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/v1/folders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("could not create folder request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("folder creation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("folder creation returned status %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("could not parse folder creation response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("folder creation returned empty id")
	}
	return parsed.ID, nil
}

// upload ships the photo as image/jpeg into the given folder.
func (c *Client) upload(ctx context.Context, path, name, parentID string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open photo %s: %w", path, err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("name", name); err != nil {
		return fmt.Errorf("could not write upload field: %w", err)
	}
	if err := writer.WriteField("parent", parentID); err != nil {
		return fmt.Errorf("could not write upload field: %w", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("could not create upload part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("could not copy photo into upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("could not finish upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/v1/files", body)
	if err != nil {
		return fmt.Errorf("could not create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload returned status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
