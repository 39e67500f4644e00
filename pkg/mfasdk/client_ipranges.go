package mfasdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListIPRanges(ctx context.Context) (*IPRangesResponse, error) {
	var out IPRangesResponse
	if err := c.call(ctx, http.MethodGet, "/v1/ipranges", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateIPRange(ctx context.Context, req CreateIPRangeRequest) (*IPRange, error) {
	var out IPRange
	if err := c.call(ctx, http.MethodPost, "/v1/ipranges", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteIPRange(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/v1/ipranges/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}
