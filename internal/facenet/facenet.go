// Package facenet is a client for the face embedding extractor service.
// The service accepts a photo and returns one fixed-dimension encoding per
// detected face; which model produces them is the service's business.
package facenet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/nccpresi/attendance-backend/internal/constants"
)

type Client struct {
	url  string
	dim  int
	http *http.Client
}

// New creates a facenet client. The URL must point at the service root.
func New(serviceURL string, dim int) (*Client, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid facenet url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid facenet url: %q", serviceURL)
	}
	if dim <= 0 {
		dim = constants.EmbeddingDim
	}

	return &Client{
		url: u.String(),
		dim: dim,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Extract sends the image at path to the extractor and returns one
// encoding per detected face. An empty slice means no face was found.
func (c *Client) Extract(ctx context.Context, path string) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read image file: %w", err)
	}

	// Shrink large photos before shipping them over the wire. If the
	// bytes do not decode as an image the extractor gets them as-is and
	// reports the problem itself.
	if resized, err := resizeImage(data, constants.MaxImageSize); err == nil {
		data = resized
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "photo.jpg")
	if err != nil {
		return nil, fmt.Errorf("could not create multipart field: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("could not write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/api/v1/encodings", body)
	if err != nil {
		return nil, fmt.Errorf("could not create extractor request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extractor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, msg)
	}

	var parsed struct {
		Encodings [][]float32 `json:"encodings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse extractor response: %w", err)
	}

	for i, enc := range parsed.Encodings {
		if len(enc) != c.dim {
			return nil, fmt.Errorf("extractor returned %d-dimensional encoding at index %d, expected %d",
				len(enc), i, c.dim)
		}
	}
	return parsed.Encodings, nil
}
