// Package storage durably persists uploaded source videos: once to an
// S3-compatible object store via a basic-auth PUT, and once to the local
// on-disk layout the burn path reads from directly
// (DATA_ROOT/videos/<uuid>/source.<ext>, per spec.md §6). Adapted from
// the teacher's Supabase Storage REST client — same retry/backoff
// shape, different backing object store and an added local mirror.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	uploadTimeout = 180 * time.Second

	maxRetries     = 4
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// Storage uploads to an S3-compatible bucket and mirrors every upload
// onto the local data root, so the Burn Orchestrator and Prober always
// have a local path regardless of whether the object-store leg is
// reachable at render time.
type Storage struct {
	endpoint   string
	accessKey  string
	secretKey  string
	bucket     string
	dataRoot   string
	client     *http.Client
}

func New(endpoint, accessKey, secretKey, bucket, dataRoot string) *Storage {
	return &Storage{
		endpoint:  endpoint,
		accessKey: accessKey,
		secretKey: secretKey,
		bucket:    bucket,
		dataRoot:  dataRoot,
		client: &http.Client{
			Timeout: uploadTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// LocalPath returns the on-disk path an ingested video's source media
// is mirrored to.
func (s *Storage) LocalPath(videoID uuid.UUID, ext string) string {
	return filepath.Join(s.dataRoot, "videos", videoID.String(), "source"+ext)
}

// PutSource uploads data to the object store under videoID's key and
// writes the same bytes to the local mirror. The local write happens
// first and is authoritative — a burn must never block on object
// store availability.
func (s *Storage) PutSource(ctx context.Context, videoID uuid.UUID, ext string, data []byte, contentType string) (string, error) {
	localPath := s.LocalPath(videoID, ext)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("creating video directory: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing local source mirror: %w", err)
	}

	if s.endpoint != "" {
		key := filepath.Join(videoID.String(), "source"+ext)
		if err := s.upload(ctx, key, data, contentType); err != nil {
			return "", fmt.Errorf("uploading source to object storage: %w", err)
		}
	}

	return localPath, nil
}

// upload PUTs data to bucket/key with retries and exponential backoff,
// the same shape as the teacher's Upload, generalized to any
// S3-compatible endpoint via path-style addressing.
func (s *Storage) upload(ctx context.Context, key string, data []byte, contentType string) error {
	url := fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("upload cancelled: %w", ctx.Err())
			case <-time.After(retryDelay(attempt)):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPut, url, bytes.NewReader(data))
		if err != nil {
			cancel()
			return fmt.Errorf("creating upload request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Content-Length", fmt.Sprintf("%d", len(data)))
		req.SetBasicAuth(s.accessKey, s.secretKey)

		resp, err := s.client.Do(req)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("uploading: %w", err)
			if isRetryableError(err) {
				continue
			}
			return lastErr
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			return nil
		}

		lastErr = fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
		if isRetryableStatus(resp.StatusCode) {
			continue
		}
		return lastErr
	}

	return fmt.Errorf("upload failed after %d attempts: %w", maxRetries+1, lastErr)
}

func retryDelay(attempt int) time.Duration {
	delay := float64(baseRetryDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxRetryDelay) {
		delay = float64(maxRetryDelay)
	}
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "broken pipe")
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
