// Package client is a typed consumer of the film api, used by tools and
// services that watch uploads, cut segments and publish clips.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"filmroom/dto"
	"filmroom/entities"
)

var ErrInvalidWindow = errors.New("segment window is invalid")

// APIError carries the upstream status and its detail message, so callers
// see the server's own explanation rather than a generic failure.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("film api: HTTP %d: %s", e.StatusCode, e.Detail)
}

// Credentials is passed explicitly into the client; nothing reads tokens
// from ambient state.
type Credentials struct {
	Token string
}

type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
}

func New(baseURL string, creds Credentials) *Client {
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var payload struct {
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		detail = payload.Detail
	}
	if detail == "" {
		detail = string(raw)
	}
	if detail == "" {
		detail = "request failed"
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}

func teamPath(teamId uuid.UUID) string {
	return "/api/v1/teams/" + teamId.String()
}

func (c *Client) ListUploads(ctx context.Context, teamId uuid.UUID) ([]*entities.Upload, error) {
	var uploads []*entities.Upload
	err := c.do(ctx, http.MethodGet, teamPath(teamId)+"/film", nil, &uploads)
	return uploads, err
}

func (c *Client) GetUpload(ctx context.Context, teamId, uploadId uuid.UUID) (*entities.Upload, error) {
	upload := &entities.Upload{}
	err := c.do(ctx, http.MethodGet, teamPath(teamId)+"/film/"+uploadId.String(), nil, upload)
	if err != nil {
		return nil, err
	}
	return upload, nil
}

func (c *Client) DeleteUpload(ctx context.Context, teamId, uploadId uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, teamPath(teamId)+"/film/"+uploadId.String(), nil, nil)
}

func (c *Client) ListSegments(ctx context.Context, teamId, uploadId uuid.UUID) ([]*entities.Segment, error) {
	var segments []*entities.Segment
	err := c.do(ctx, http.MethodGet, teamPath(teamId)+"/film/"+uploadId.String()+"/segments", nil, &segments)
	return segments, err
}

// CreateSegment validates the window before anything goes over the wire; the
// server checks it again regardless.
func (c *Client) CreateSegment(ctx context.Context, teamId, uploadId uuid.UUID, req dto.CreateSegmentRequest) (*entities.Segment, error) {
	if req.StartSecond < 0 || req.EndSecond <= req.StartSecond {
		return nil, ErrInvalidWindow
	}
	segment := &entities.Segment{}
	err := c.do(ctx, http.MethodPost, teamPath(teamId)+"/film/"+uploadId.String()+"/segments", req, segment)
	if err != nil {
		return nil, err
	}
	return segment, nil
}

// PublishSegment promotes a segment to a clip. Publishing is one-way, and
// publishing twice creates two clips.
func (c *Client) PublishSegment(ctx context.Context, teamId, uploadId, segmentId uuid.UUID) (*entities.Clip, error) {
	clip := &entities.Clip{}
	path := teamPath(teamId) + "/film/" + uploadId.String() + "/segments/" + segmentId.String() + "/publish"
	err := c.do(ctx, http.MethodPost, path, nil, clip)
	if err != nil {
		return nil, err
	}
	return clip, nil
}

func (c *Client) ListClips(ctx context.Context, teamId uuid.UUID) ([]*entities.Clip, error) {
	var clips []*entities.Clip
	err := c.do(ctx, http.MethodGet, teamPath(teamId)+"/clips", nil, &clips)
	return clips, err
}

func (c *Client) GetClip(ctx context.Context, teamId, clipId uuid.UUID) (*entities.Clip, error) {
	clip := &entities.Clip{}
	err := c.do(ctx, http.MethodGet, teamPath(teamId)+"/clips/"+clipId.String(), nil, clip)
	if err != nil {
		return nil, err
	}
	return clip, nil
}

func (c *Client) DeleteClip(ctx context.Context, teamId, clipId uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, teamPath(teamId)+"/clips/"+clipId.String(), nil, nil)
}
