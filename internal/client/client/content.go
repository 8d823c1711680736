package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/netx"
)

type suggestionsRequest struct {
	URL  string      `json:"url"`
	Plan models.Plan `json:"plan"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type generateRequest struct {
	Platform string      `json:"platform"`
	Prompt   string      `json:"prompt"`
	Plan     models.Plan `json:"plan"`
}

type generateResponse struct {
	Content string `json:"content"`
}

type HTTPContentClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPContentClient(baseURL string, timeout time.Duration) *HTTPContentClient {
	return &HTTPContentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPContentClient) Suggestions(ctx context.Context, url string, plan models.Plan) ([]string, error) {
	var resp suggestionsResponse
	if err := c.post(ctx, "/suggestions", suggestionsRequest{URL: url, Plan: plan}, &resp); err != nil {
		return nil, err
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	return resp.Suggestions, nil
}

func (c *HTTPContentClient) Generate(ctx context.Context, platform, prompt string, plan models.Plan) (string, error) {
	var resp generateResponse
	req := generateRequest{Platform: platform, Prompt: prompt, Plan: plan}
	if err := c.post(ctx, "/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *HTTPContentClient) post(ctx context.Context, path string, in, out any) error {
	err := netx.PostJSON(ctx, c.http, c.baseURL+path, in, out)
	if err == nil {
		return nil
	}

	var se *netx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusForbidden {
		return ErrFeatureNotAvailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
