package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"coverTonic/artwork"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://itunes.apple.com"
	DefaultCountry   = "de"
	DefaultUserAgent = "coverTonic/1.0"

	maxResponseBytes = 2 * 1024 * 1024
	maxArtworkBytes  = 10 * 1024 * 1024
	searchLimit      = 25
)

var sizeSegment = regexp.MustCompile(`/\d+x\d+(bb)?(-\d+)?\.(jpg|jpeg|png|webp)$`)

type Options struct {
	BaseURL           string
	Country           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
	Logger            logrus.FieldLogger
}

// Client talks to an iTunes-Search-compatible catalog and implements
// artwork.Catalog.
type Client struct {
	baseURL   string
	country   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	log       logrus.FieldLogger
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		country:   opts.Country,
		userAgent: opts.UserAgent,
		client:    opts.HTTPClient,
		log:       opts.Logger,
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.country == "" {
		c.country = DefaultCountry
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		c.client = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// shape is how one entity class is queried. Artist rows carry no artwork,
// so series are looked up and searched through their albums.
type shape struct {
	lookupParam  string
	lookupEntity string
	lookupLimit  int
	searchEntity string
	searchAttr   string
}

func shapeFor(class artwork.EntityClass) (shape, error) {
	switch class {
	case artwork.Work:
		return shape{lookupParam: "upc", lookupEntity: "album", lookupLimit: 1, searchEntity: "album", searchAttr: "albumTerm"}, nil
	case artwork.Series:
		return shape{lookupParam: "id", lookupEntity: "album", lookupLimit: 2, searchEntity: "album", searchAttr: "artistTerm"}, nil
	default:
		return shape{}, fmt.Errorf("unsupported entity class: %v", class)
	}
}

type item struct {
	WrapperType    string `json:"wrapperType"`
	CollectionType string `json:"collectionType"`
	ArtistType     string `json:"artistType"`
	CollectionName string `json:"collectionName"`
	ArtistName     string `json:"artistName"`
	ArtworkURL100  string `json:"artworkUrl100"`
	ArtworkURL60   string `json:"artworkUrl60"`
}

func (it item) name(class artwork.EntityClass) string {
	if class == artwork.Series {
		return it.ArtistName
	}
	return it.CollectionName
}

func (it item) isCollection() bool {
	return it.WrapperType == "" || it.WrapperType == "collection"
}

func (it item) artwork() artwork.ArtworkRef {
	u := it.ArtworkURL100
	if u == "" {
		u = it.ArtworkURL60
	}
	return artwork.ArtworkRef{URL: u}
}

type response struct {
	ResultCount int    `json:"resultCount"`
	Results     []item `json:"results"`
}

// Lookup finds the entity by its native id and returns its artwork.
func (c *Client) Lookup(ctx context.Context, class artwork.EntityClass, id string) (artwork.ArtworkRef, error) {
	s, err := shapeFor(class)
	if err != nil {
		return artwork.ArtworkRef{}, err
	}
	q := url.Values{}
	q.Set(s.lookupParam, id)
	q.Set("entity", s.lookupEntity)
	q.Set("limit", strconv.Itoa(s.lookupLimit))
	q.Set("country", c.country)

	var resp response
	if err := c.getJSON(ctx, "/lookup", q, &resp); err != nil {
		return artwork.ArtworkRef{}, err
	}
	for _, it := range resp.Results {
		if !it.isCollection() {
			continue
		}
		if ref := it.artwork(); !ref.IsZero() {
			return ref, nil
		}
	}
	return artwork.ArtworkRef{}, artwork.ErrNotFound
}

// Search runs a name search over albums and returns results in catalog
// order. Series results are named by artist and carry that album's artwork.
func (c *Client) Search(ctx context.Context, class artwork.EntityClass, text string) ([]artwork.NamedResult, error) {
	s, err := shapeFor(class)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("term", text)
	q.Set("entity", s.searchEntity)
	q.Set("attribute", s.searchAttr)
	q.Set("limit", strconv.Itoa(searchLimit))
	q.Set("country", c.country)

	var resp response
	if err := c.getJSON(ctx, "/search", q, &resp); err != nil {
		return nil, err
	}
	results := make([]artwork.NamedResult, 0, len(resp.Results))
	for _, it := range resp.Results {
		if !it.isCollection() {
			continue
		}
		results = append(results, artwork.NamedResult{Name: it.name(class), Artwork: it.artwork()})
	}
	return results, nil
}

// Fetch downloads the artwork at width x width.
func (c *Client) Fetch(ctx context.Context, ref artwork.ArtworkRef, width int) ([]byte, error) {
	u := SizedURL(ref.URL, width)
	body, err := c.get(ctx, u, maxArtworkBytes)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty artwork response")
	}
	return body, nil
}

// SizedURL rewrites the size segment of a catalog artwork URL
// (".../100x100bb.jpg") to width x width. URLs without one are returned as-is.
func SizedURL(raw string, width int) string {
	loc := sizeSegment.FindStringSubmatchIndex(raw)
	if loc == nil {
		return raw
	}
	ext := raw[loc[6]:loc[7]]
	return raw[:loc[0]] + fmt.Sprintf("/%dx%dbb.%s", width, width, ext)
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v interface{}) error {
	body, err := c.get(ctx, c.baseURL+path+"?"+q.Encode(), maxResponseBytes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse catalog response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string, limit int64) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debugf("GET %s", u)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, artwork.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("catalog returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return body, nil
}
