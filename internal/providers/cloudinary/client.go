package cloudinary

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Folders the service mirrors assets into, matching the media library layout.
const (
	FolderUploads   = "uploaded_videos"
	FolderProcessed = "processed_videos"
)

type Options struct {
	CloudName  string
	APIKey     string
	APISecret  string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client mirrors remote video assets into Cloudinary via the signed upload
// API. Cloudinary fetches the asset itself when the file parameter is a
// remote URL, so no bytes pass through this process.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	now        func() time.Time
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.cloudinary.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		cloudName:  strings.TrimSpace(opts.CloudName),
		apiKey:     strings.TrimSpace(opts.APIKey),
		apiSecret:  opts.APISecret,
		now:        time.Now,
	}
}

// UploadResult is the subset of the upload response the service keeps.
type UploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

type uploadError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UploadVideoURL mirrors the asset at remoteURL into the given folder and
// returns its stable Cloudinary URL and public id.
func (c *Client) UploadVideoURL(ctx context.Context, remoteURL, folder string) (*UploadResult, error) {
	if c == nil {
		return nil, errors.New("cloudinary client not configured")
	}
	if c.cloudName == "" || c.apiKey == "" || c.apiSecret == "" {
		return nil, errors.New("cloudinary: credentials are missing")
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return nil, errors.New("cloudinary: remote url required")
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	signed := map[string]string{
		"folder":    folder,
		"timestamp": timestamp,
	}
	form := url.Values{
		"file":      {remoteURL},
		"folder":    {folder},
		"timestamp": {timestamp},
		"api_key":   {c.apiKey},
		"signature": {signature(signed, c.apiSecret)},
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/video/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: upload request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("cloudinary: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr uploadError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("cloudinary: upload status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("cloudinary: upload status %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("cloudinary: decode response: %w", err)
	}
	if result.SecureURL == "" {
		return nil, errors.New("cloudinary: response missing secure_url")
	}
	return &result, nil
}

// signature computes the SHA-1 upload signature: the signed parameters
// serialized as key=value pairs, sorted by key, joined with '&', with the
// API secret appended.
func signature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
