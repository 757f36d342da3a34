package landmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"
	"time"
)

// ServiceClient is a PointDetector backed by an HTTP landmark
// detection service. The service accepts a JPEG body and answers with
// the landmark points of zero or one face.
type ServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServiceClient creates a client for the given service URL.
func NewServiceClient(serverURL string) (*ServiceClient, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("landmark service URL is empty")
	}

	return &ServiceClient{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type detectResponse struct {
	Faces []struct {
		Points []Point `json:"points"`
	} `json:"faces"`
}

// DetectPoints sends img to the service and returns the first face's
// landmark points. No detected face yields an empty slice, not an
// error.
func (c *ServiceClient) DetectPoints(ctx context.Context, img image.Image) ([]Point, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/landmarks", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("landmark service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("landmark service returned HTTP %d", resp.StatusCode)
	}

	var parsed detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode landmark response: %w", err)
	}

	if len(parsed.Faces) == 0 {
		return nil, nil
	}
	return parsed.Faces[0].Points, nil
}
