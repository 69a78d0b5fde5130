package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/maxwellzeha/jonduplastics/catalog"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/pricing"
)

func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var resp struct {
		Products []catalog.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products", nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) Product(ctx context.Context, id int) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, &p, false); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ConfiguratorOptions(ctx context.Context) (*catalog.Options, error) {
	var o catalog.Options
	if err := c.do(ctx, http.MethodGet, "/configurator/options", nil, &o, false); err != nil {
		return nil, err
	}
	return &o, nil
}

// Quote prices a selection on the server.
func (c *Client) Quote(ctx context.Context, sel pricing.Selection) (*pricing.Quote, error) {
	req := models.QuoteRequest{
		Material:   sel.Material,
		Width:      sel.Width,
		Height:     sel.Height,
		HasArtwork: sel.HasArtwork,
		Quantity:   sel.Quantity,
	}
	var q pricing.Quote
	if err := c.do(ctx, http.MethodPost, "/pricing/quote", req, &q, false); err != nil {
		return nil, err
	}
	return &q, nil
}

// SetupSQL fetches the script that provisions the backing schema.
func (c *Client) SetupSQL(ctx context.Context) (string, error) {
	var script string
	if err := c.do(ctx, http.MethodGet, "/setup/sql", nil, &script, false); err != nil {
		return "", err
	}
	return script, nil
}
