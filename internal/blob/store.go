package blob

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
)

type storeConfig struct {
	APIKey string
	APIURL string
}

var cfg storeConfig

// Ref points at a stored blob.
type Ref struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// ConfigureFromEnv loads blob store config from environment
// Required: BLOB_API_KEY; Optional: BLOB_API_URL
func ConfigureFromEnv() error {
	cfg = storeConfig{
		APIKey: os.Getenv("BLOB_API_KEY"),
		APIURL: os.Getenv("BLOB_API_URL"),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.blobstash.io/v1/upload"
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("blob store not configured: set BLOB_API_KEY")
	}
	return nil
}

// Store uploads one file and returns its reference. Callers in the payment
// flow treat an error here as non-fatal and keep the card without a file.
func Store(filename string, data io.Reader) (*Ref, error) {
	if cfg.APIKey == "" {
		if err := ConfigureFromEnv(); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, cfg.APIURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if raw, readErr := io.ReadAll(resp.Body); readErr == nil && len(raw) > 0 {
			return nil, fmt.Errorf("blob upload failed: status=%d body=%s", resp.StatusCode, string(raw))
		}
		return nil, fmt.Errorf("blob upload failed: status=%d", resp.StatusCode)
	}

	var ref Ref
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return nil, fmt.Errorf("blob upload: decode response: %w", err)
	}
	return &ref, nil
}
