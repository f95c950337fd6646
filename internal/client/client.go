// Package client talks to a running wastenot server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/wastenot/internal/domain"
	"github.com/vbonduro/wastenot/internal/photostore"
	"github.com/vbonduro/wastenot/internal/vision"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateDonation(ctx context.Context, input domain.DonationInput) (*domain.Donation, error) {
	var out domain.Donation
	if err := c.doJSON(ctx, http.MethodPost, "/donations", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDonations(ctx context.Context, filter domain.DonationFilter) ([]domain.Donation, error) {
	q := url.Values{}
	if filter.Claimed != nil {
		q.Set("claimed", strconv.FormatBool(*filter.Claimed))
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	path := "/donations"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	out := []domain.Donation{}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDonation(ctx context.Context, id string) (*domain.Donation, error) {
	var out domain.Donation
	if err := c.doJSON(ctx, http.MethodGet, "/donations/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClaimDonation(ctx context.Context, id string) (*domain.Donation, error) {
	var out domain.Donation
	if err := c.doJSON(ctx, http.MethodPost, "/donations/"+url.PathEscape(id)+"/claim", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, profile domain.Profile) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.doJSON(ctx, http.MethodPut, "/users/profile", profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfileDetails changes only the non-nil descriptive fields; the
// server applies the edit atomically with respect to stats updates.
func (c *Client) UpdateProfileDetails(ctx context.Context, details domain.ProfileDetails) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.doJSON(ctx, http.MethodPatch, "/users/profile", details, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeFood uploads an image for analysis. The server sniffs the format
// itself, so mimeType only names the uploaded part.
func (c *Client) AnalyzeFood(ctx context.Context, imageData []byte, mimeType string) (*domain.FoodAnalysis, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "upload"+photostore.ExtForMIME(mimeType))
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := fw.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai/analyze-food", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out domain.FoodAnalysis
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError turns an error response back into the domain error the server
// mapped it from.
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest:
		if strings.HasPrefix(body.Error, domain.ErrValidation.Error()) {
			return fmt.Errorf("%w%s", domain.ErrValidation, strings.TrimPrefix(body.Error, domain.ErrValidation.Error()))
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, body.Error)
	case http.StatusUnprocessableEntity:
		return vision.ErrNoFood
	default:
		return fmt.Errorf("%w: server returned %d: %s", domain.ErrPersistence, resp.StatusCode, body.Error)
	}
}
