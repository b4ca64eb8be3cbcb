// Package youtube implements the provider capability contract against
// the YouTube Data API v3. All error translation from the wire happens
// here; callers only ever see the three sentinel kinds defined by the
// provider package.
package youtube

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
	"strconv"
	"strings"
	"time"

	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/provider"
	"github.com/okian/clipscore/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultBaseURL   = "https://www.googleapis.com/youtube/v3"
	defaultUploadURL = "https://www.googleapis.com/upload/youtube/v3"
	defaultTimeout   = 10 * time.Second

	// batchChunkSize caps ids per list call, matching the provider's
	// documented maximum.
	batchChunkSize = 50

	// quotaCostPerList and dailyQuotaLimit describe the provider's
	// practical quota accounting for a one-part list call.
	quotaCostPerList = 1
	dailyQuotaLimit  = 10000
)

// Client is a process-scoped provider client. Construct once and reuse;
// it holds no per-call state beyond the shared HTTP client. The client
// never retries; retry policy belongs to its callers.
type Client struct {
	http      *http.Client
	baseURL   string
	uploadURL string
	apiKey    string
	timeout   time.Duration
}

var _ provider.Client = (*Client)(nil)

// New creates a provider client with configuration options.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		baseURL:   defaultBaseURL,
		uploadURL: defaultUploadURL,
		timeout:   defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Wire shapes for the provider's videos.list response.
type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID             string               `json:"id"`
	Status         *videoStatusPart     `json:"status"`
	Statistics     *videoStatisticsPart `json:"statistics"`
	ContentDetails *contentDetailsPart  `json:"contentDetails"`
}

type videoStatusPart struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type videoStatisticsPart struct {
	ViewCount string `json:"viewCount"`
	LikeCount string `json:"likeCount"`
}

type contentDetailsPart struct {
	Duration string `json:"duration"`
}

type apiErrorResponse struct {
	Error struct {
		Code   int    `json:"code"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// Status reports whether the video is currently publicly visible.
func (c *Client) Status(ctx context.Context, videoID string) (model.VideoStatus, error) {
	const op = "status"

	resp, err := c.list(ctx, op, "status", []string{videoID})
	if err != nil {
		return model.VideoStatus{}, err
	}
	if len(resp.Items) == 0 {
		metrics.RecordProviderCall(op, "not_found")
		return model.VideoStatus{}, fmt.Errorf("status %s: %w", videoID, provider.ErrNotFound)
	}

	item := resp.Items[0]
	public := item.Status != nil && item.Status.PrivacyStatus == "public"
	return model.VideoStatus{Public: public}, nil
}

// Metrics fetches the engagement snapshot for one video.
func (c *Client) Metrics(ctx context.Context, videoID string) (model.VideoMetrics, error) {
	const op = "metrics"

	resp, err := c.list(ctx, op, "statistics,contentDetails", []string{videoID})
	if err != nil {
		return model.VideoMetrics{}, err
	}
	if len(resp.Items) == 0 {
		metrics.RecordProviderCall(op, "not_found")
		return model.VideoMetrics{}, fmt.Errorf("metrics %s: %w", videoID, provider.ErrNotFound)
	}

	return itemMetrics(resp.Items[0]), nil
}

// MetricsBatch fetches metrics for a set of videos. Videos absent from
// the provider's response are simply missing from the result map; an
// absent entry never fails the whole call.
func (c *Client) MetricsBatch(ctx context.Context, videoIDs []string) (map[string]model.VideoMetrics, error) {
	const op = "metrics_batch"

	out := make(map[string]model.VideoMetrics, len(videoIDs))
	for start := 0; start < len(videoIDs); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		resp, err := c.list(ctx, op, "statistics,contentDetails", videoIDs[start:end])
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			if item.ID == "" {
				continue
			}
			out[item.ID] = itemMetrics(item)
		}
	}
	return out, nil
}

// Quota probes the provider's quota accounting. It issues a minimal
// one-part list call and reports the per-call cost against the daily
// budget; schedulers may use it to stretch pacing delays.
func (c *Client) Quota(ctx context.Context) (provider.QuotaStatus, error) {
	const op = "quota"

	// A known, stable video id keeps the probe to a single cheap unit.
	if _, err := c.list(ctx, op, "snippet", []string{"dQw4w9WgXcQ"}); err != nil {
		return provider.QuotaStatus{}, err
	}
	return provider.QuotaStatus{Cost: quotaCostPerList, Limit: dailyQuotaLimit}, nil
}

// Upload submits a new video and returns its id. Out of the hot sync
// path, but shares the same failure taxonomy.
func (c *Client) Upload(ctx context.Context, payload io.Reader, meta provider.UploadMetadata) (string, error) {
	const op = "upload"

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=utf-8")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return "", fmt.Errorf("upload metadata part: %w", provider.ErrUnavailable)
	}
	snippet := map[string]any{
		"snippet": map[string]any{
			"title":       meta.Title,
			"description": meta.Description,
			"tags":        meta.Tags,
		},
		"status": map[string]any{"privacyStatus": "public"},
	}
	if err := json.NewEncoder(metaPart).Encode(snippet); err != nil {
		return "", fmt.Errorf("upload metadata encode: %w", provider.ErrUnavailable)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", "application/octet-stream")
	mediaPart, err := mw.CreatePart(mediaHeader)
	if err != nil {
		return "", fmt.Errorf("upload media part: %w", provider.ErrUnavailable)
	}
	if _, err := io.Copy(mediaPart, payload); err != nil {
		return "", fmt.Errorf("upload media copy: %w", provider.ErrUnavailable)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("upload finalize: %w", provider.ErrUnavailable)
	}

	q := url.Values{}
	q.Set("part", "snippet,status")
	q.Set("uploadType", "multipart")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	endpoint := c.uploadURL + "/videos?" + q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", provider.ErrUnavailable)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordProviderCall(op, "unavailable")
		return "", fmt.Errorf("upload: %v: %w", err, provider.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := translateStatus(op, resp); err != nil {
		return "", err
	}

	var item videoItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		metrics.RecordProviderCall(op, "unavailable")
		return "", fmt.Errorf("upload decode: %v: %w", err, provider.ErrUnavailable)
	}
	if item.ID == "" {
		metrics.RecordProviderCall(op, "unavailable")
		return "", fmt.Errorf("upload: empty id in response: %w", provider.ErrUnavailable)
	}
	metrics.RecordProviderCall(op, "ok")
	return item.ID, nil
}

// list issues a videos.list call for the given parts and ids.
func (c *Client) list(ctx context.Context, op, parts string, videoIDs []string) (*videoListResponse, error) {
	q := url.Values{}
	q.Set("part", parts)
	q.Set("id", strings.Join(videoIDs, ","))
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + "/videos?" + q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		metrics.RecordProviderCall(op, "unavailable")
		return nil, fmt.Errorf("%s request: %v: %w", op, err, provider.ErrUnavailable)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordProviderCall(op, "unavailable")
		return nil, fmt.Errorf("%s: %v: %w", op, err, provider.ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := translateStatus(op, resp); err != nil {
		return nil, err
	}

	var out videoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.RecordProviderCall(op, "unavailable")
		return nil, fmt.Errorf("%s decode: %v: %w", op, err, provider.ErrUnavailable)
	}
	metrics.RecordProviderCall(op, "ok")
	return &out, nil
}

// translateStatus maps a non-2xx response onto the failure taxonomy.
func translateStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests || isQuotaError(resp) {
		metrics.RecordProviderCall(op, "quota_exceeded")
		return fmt.Errorf("%s: http %d: %w", op, resp.StatusCode, provider.ErrQuotaExceeded)
	}

	// Auth failures (401/403 without a quota reason), 5xx and anything
	// unexpected are retryable on the next run.
	metrics.RecordProviderCall(op, "unavailable")
	return fmt.Errorf("%s: http %d: %w", op, resp.StatusCode, provider.ErrUnavailable)
}

// isQuotaError inspects a 403 body for the provider's quota reasons.
func isQuotaError(resp *http.Response) bool {
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return false
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return false
	}
	for _, e := range apiErr.Error.Errors {
		switch e.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

// itemMetrics converts a wire item to the domain snapshot. Counts are
// reported as decimal strings; unparsable counts read as zero.
func itemMetrics(item videoItem) model.VideoMetrics {
	var m model.VideoMetrics
	if item.Statistics != nil {
		m.Views = parseCount(item.Statistics.ViewCount)
		m.Likes = parseCount(item.Statistics.LikeCount)
	}
	if item.ContentDetails != nil {
		m.WatchMinutes = ParseDurationMinutes(item.ContentDetails.Duration)
	}
	return m
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
