package geonames

import (
	"bytes"
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

	"github.com/alexivanou/ddigeo/internal/config"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Feature classes used by the geocoder fallback chain
const (
	FeatureClassAdmin  = "A"
	FeatureClassPlaces = "P"
)

// NoStateCode is the adminCode1 GeoNames reports for places without a
// first-order subdivision
const NoStateCode = "00"

// ErrMissingQuery is returned when a query carries neither a name nor an
// admin region lookup
var ErrMissingQuery = errors.New("geonames: one of name or name_equals is required")

// Provider is the narrow geocoding contract the geocoder depends on.
// Geocode returns (nil, nil) when the service has no match.
type Provider interface {
	Geocode(ctx context.Context, q Query) (*Result, error)
	GetByID(ctx context.Context, geonameID int) (*Result, error)
}

// Query holds searchJSON parameters. Empty fields are not sent.
type Query struct {
	Name         string
	NameEquals   string
	FeatureClass []string
	FeatureCode  string
	Country      string
	CountryBias  string
	AdminCode1   string
}

func (q Query) validate() error {
	if q.Name != "" || q.NameEquals != "" {
		return nil
	}
	// state back-fill lookups search by code only
	if q.Country != "" && q.FeatureCode != "" && q.AdminCode1 != "" {
		return nil
	}
	return ErrMissingQuery
}

func (q Query) String() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("name", q.Name)
	add("name_equals", q.NameEquals)
	add("featureClass", strings.Join(q.FeatureClass, ","))
	add("featureCode", q.FeatureCode)
	add("country", q.Country)
	add("countryBias", q.CountryBias)
	add("adminCode1", q.AdminCode1)
	return strings.Join(parts, " ")
}

// Result is a single GeoNames toponym
type Result struct {
	GeonameID   int     `json:"geonameId"`
	Name        string  `json:"name"`
	FeatureCode string  `json:"fcode"`
	Class       string  `json:"fcl"`
	Latitude    float64 `json:"-"`
	Longitude   float64 `json:"-"`
	countryCode string
	adminCode1  string
}

// CountryCode returns the ISO country code when GeoNames supplied one
func (r *Result) CountryCode() (string, bool) {
	return r.countryCode, r.countryCode != ""
}

// AdminCode1 returns the first-order admin code; the "00" sentinel counts as absent
func (r *Result) AdminCode1() (string, bool) {
	if r.adminCode1 == "" || r.adminCode1 == NoStateCode {
		return "", false
	}
	return r.adminCode1, true
}

func (r *Result) String() string {
	return fmt.Sprintf("%s [%d %s]", r.Name, r.GeonameID, r.FeatureCode)
}

// NewResult builds a result from already parsed values
func NewResult(id int, name, fcode string, lat, lng float64, countryCode, adminCode1 string) *Result {
	return &Result{
		GeonameID:   id,
		Name:        name,
		FeatureCode: fcode,
		Latitude:    lat,
		Longitude:   lng,
		countryCode: countryCode,
		adminCode1:  adminCode1,
	}
}

// toponym is the wire form; lat/lng arrive as strings
type toponym struct {
	GeonameID   int             `json:"geonameId"`
	Name        string          `json:"name"`
	FeatureCode string          `json:"fcode"`
	Class       string          `json:"fcl"`
	Lat         json.RawMessage `json:"lat"`
	Lng         json.RawMessage `json:"lng"`
	CountryCode string          `json:"countryCode"`
	AdminCode1  string          `json:"adminCode1"`
}

func (t toponym) result() (*Result, error) {
	lat, err := parseCoord(t.Lat)
	if err != nil {
		return nil, fmt.Errorf("invalid lat for %d: %w", t.GeonameID, err)
	}
	lng, err := parseCoord(t.Lng)
	if err != nil {
		return nil, fmt.Errorf("invalid lng for %d: %w", t.GeonameID, err)
	}
	return NewResult(t.GeonameID, t.Name, t.FeatureCode, lat, lng, t.CountryCode, t.AdminCode1), nil
}

func parseCoord(raw json.RawMessage) (float64, error) {
	s := strings.Trim(string(bytes.TrimSpace(raw)), `"`)
	if s == "" || s == "null" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

type searchResponse struct {
	TotalResultsCount int       `json:"totalResultsCount"`
	Geonames          []toponym `json:"geonames"`
}

type statusEnvelope struct {
	Status *APIError `json:"status"`
}

// APIError is the status payload GeoNames returns instead of results
type APIError struct {
	Message string `json:"message"`
	Value   int    `json:"value"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("geonames error %d: %s", e.Value, e.Message)
}

// Client talks to the GeoNames JSON web services
type Client struct {
	username   string
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *zap.Logger
}

// NewClient creates a new GeoNames client
func NewClient(cfg config.GeonamesConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://api.geonames.org"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}

	return &Client{
		username:   cfg.Username,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		logger:     logger.With(zap.String("component", "geonames")),
	}
}

// Geocode runs a searchJSON query and returns the most relevant match
func (c *Client) Geocode(ctx context.Context, q Query) (*Result, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("username", c.username)
	params.Set("orderBy", "relevance")
	params.Set("maxRows", "1")
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.NameEquals != "" {
		params.Set("name_equals", q.NameEquals)
	}
	for _, fc := range q.FeatureClass {
		params.Add("featureClass", fc)
	}
	if q.FeatureCode != "" {
		params.Set("featureCode", q.FeatureCode)
	}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.CountryBias != "" {
		params.Set("countryBias", q.CountryBias)
	}
	if q.AdminCode1 != "" {
		params.Set("adminCode1", q.AdminCode1)
	}

	var resp searchResponse
	if err := c.get(ctx, "searchJSON", params, &resp); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", q.String(), err)
	}

	c.logger.Debug("geonames search",
		zap.String("query", q.String()),
		zap.Int("total", resp.TotalResultsCount))

	if resp.TotalResultsCount == 0 || len(resp.Geonames) == 0 {
		return nil, nil
	}
	return resp.Geonames[0].result()
}

// GetByID fetches a single toponym; results are memoized for the cache TTL
func (c *Client) GetByID(ctx context.Context, geonameID int) (*Result, error) {
	key := strconv.Itoa(geonameID)
	if cached, found := c.cache.Get(key); found {
		if res, ok := cached.(*Result); ok {
			c.logger.Debug("geonames get cache hit", zap.Int("geonames_id", geonameID))
			return res, nil
		}
	}

	params := url.Values{}
	params.Set("username", c.username)
	params.Set("geonameId", key)

	var t toponym
	if err := c.get(ctx, "getJSON", params, &t); err != nil {
		return nil, fmt.Errorf("get %d: %w", geonameID, err)
	}
	if t.GeonameID == 0 {
		return nil, fmt.Errorf("get %d: empty response", geonameID)
	}

	res, err := t.result()
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, res, cache.DefaultExpiration)
	return res, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("geonames request",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var env statusEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Status != nil {
		return env.Status
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
