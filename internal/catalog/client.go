package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/drstein77/storefront/internal/logger"
	"github.com/drstein77/storefront/internal/models"
	"go.uber.org/zap"
)

// BrandSampleSize is how many products are scanned to derive the brand facet.
const BrandSampleSize = 100

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 1 << 10

type Log interface {
	Debug(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Endpoint identifies which upstream product listing a Request targets.
type Endpoint int

const (
	EndpointList Endpoint = iota
	EndpointSearch
	EndpointCategory
)

func (e Endpoint) String() string {
	switch e {
	case EndpointSearch:
		return "search"
	case EndpointCategory:
		return "category"
	default:
		return "list"
	}
}

// Request describes one product listing call.
type Request struct {
	Endpoint Endpoint
	Search   string
	Category string
	Limit    int
	Skip     int
}

// URI renders the path and query string relative to the API base.
func (r Request) URI() string {
	path := "/products"
	q := url.Values{}
	switch r.Endpoint {
	case EndpointSearch:
		path = "/products/search"
		q.Set("q", r.Search)
	case EndpointCategory:
		path = "/products/category/" + url.PathEscape(r.Category)
	}
	if r.Limit > 0 {
		q.Set("limit", strconv.Itoa(r.Limit))
	}
	if r.Skip > 0 {
		q.Set("skip", strconv.Itoa(r.Skip))
	}
	if enc := q.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// FacetSample holds facet values derived from a listing sample.
type FacetSample struct {
	Brands      []string
	PriceBounds models.PriceRange
}

// Client talks to the upstream product API.
type Client struct {
	baseURL string
	client  *http.Client
	log     Log
}

// NewClient builds a client for baseURL, e.g. https://dummyjson.com.
func NewClient(baseURL string, timeout time.Duration, log Log) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Products runs a listing, search or category request.
func (c *Client) Products(ctx context.Context, req Request) (*models.ProductPage, error) {
	var page models.ProductPage
	if err := c.get(ctx, "products", req.URI(), &page); err != nil {
		return nil, err
	}
	if page.Products == nil {
		page.Products = []models.Product{}
	}
	return &page, nil
}

// Categories returns the category facet catalog.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.get(ctx, "categories", "/products/categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// FacetSample scans the first BrandSampleSize products. Upstream has no
// brand endpoint, so brands and price bounds are derived from the sample.
func (c *Client) FacetSample(ctx context.Context) (*FacetSample, error) {
	page, err := c.Products(ctx, Request{Endpoint: EndpointList, Limit: BrandSampleSize})
	if err != nil {
		return nil, err
	}
	return SampleFacets(page.Products), nil
}

// Brands returns the distinct brands of the facet sample.
func (c *Client) Brands(ctx context.Context) ([]string, error) {
	s, err := c.FacetSample(ctx)
	if err != nil {
		return nil, err
	}
	return s.Brands, nil
}

// Product fetches a single product by id.
func (c *Client) Product(ctx context.Context, id models.ProductID) (*models.Product, error) {
	var p models.Product
	if err := c.get(ctx, "product", "/products/"+url.PathEscape(string(id)), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SampleFacets extracts distinct non-empty brands in first-seen order and the price span.
func SampleFacets(products []models.Product) *FacetSample {
	out := &FacetSample{Brands: []string{}}
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if i == 0 || p.Price < out.PriceBounds.Min {
			out.PriceBounds.Min = p.Price
		}
		if i == 0 || p.Price > out.PriceBounds.Max {
			out.PriceBounds.Max = p.Price
		}
		if p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		out.Brands = append(out.Brands, p.Brand)
	}
	return out
}

func (c *Client) get(ctx context.Context, op, uri string, dst any) error {
	if c == nil || c.baseURL == "" {
		return &Error{Kind: KindTransport, Op: op, Err: errors.New("client base URL is empty")}
	}

	target := c.baseURL + uri
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		c.log.Error("upstream request failed", zap.String("url", target), zap.Error(err))
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer res.Body.Close()

	c.log.Debug("upstream request",
		zap.String("url", target),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &Error{
			Kind:   KindTransport,
			Op:     op,
			Status: res.StatusCode,
			Err:    fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: res.StatusCode, Err: err}
	}
	return nil
}
