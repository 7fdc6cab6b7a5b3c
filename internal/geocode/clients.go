package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blood8879/match-archive-sub002/internal/provider"
)

// parseCoordinate converts provider decimal strings into a Coordinate,
// rejecting values outside the valid latitude/longitude ranges.
func parseCoordinate(lat, lon string) (Coordinate, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing longitude %q: %w", lon, err)
	}
	if !(la >= -90 && la <= 90) || !(lo >= -180 && lo <= 180) {
		return Coordinate{}, fmt.Errorf("coordinate out of range: %s,%s", lat, lon)
	}
	return Coordinate{Latitude: la, Longitude: lo}, nil
}

// ---- Kakao Local ----

const (
	kakaoAddressDefault = "https://dapi.kakao.com/v2/local/search/address.json"
	kakaoKeywordDefault = "https://dapi.kakao.com/v2/local/search/keyword.json"
)

// KakaoClient resolves Korean addresses through the Kakao Local API.
// It is only usable when an API key is configured.
type KakaoClient struct {
	apiKey     string
	addressURL string
	keywordURL string
	client     *http.Client
}

// NewKakaoClient constructs a KakaoClient. An empty apiKey yields a client
// that reports itself unavailable.
func NewKakaoClient(apiKey string, client *http.Client) *KakaoClient {
	return &KakaoClient{
		apiKey:     apiKey,
		addressURL: kakaoAddressDefault,
		keywordURL: kakaoKeywordDefault,
		client:     client,
	}
}

// NewKakaoClientWithURLs constructs a KakaoClient pointing at custom URLs (for tests).
func NewKakaoClientWithURLs(addressURL, keywordURL, apiKey string) *KakaoClient {
	return &KakaoClient{
		apiKey:     apiKey,
		addressURL: addressURL,
		keywordURL: keywordURL,
		client:     provider.NewHTTPClient(provider.DefaultTimeout),
	}
}

func (c *KakaoClient) name() string { return "kakao" }

func (c *KakaoClient) available() bool { return c != nil && c.apiKey != "" }

// lookup runs the structured address search and, only when it finds
// nothing, the looser keyword search. A failed address search abandons the
// provider.
func (c *KakaoClient) lookup(ctx context.Context, address string) provider.Outcome[Coordinate] {
	out := c.search(ctx, "kakao_address", c.addressURL, address)
	if out.Kind != provider.KindNoMatch {
		return out
	}
	return c.search(ctx, "kakao_keyword", c.keywordURL, address)
}

func (c *KakaoClient) search(ctx context.Context, stage, baseURL, address string) provider.Outcome[Coordinate] {
	start := time.Now()
	out := c.doSearch(ctx, baseURL, address)
	provider.Record(stage, out.Kind, time.Since(start))
	return out
}

func (c *KakaoClient) doSearch(ctx context.Context, baseURL, address string) provider.Outcome[Coordinate] {
	endpoint := baseURL + "?query=" + url.QueryEscape(address)
	header := http.Header{}
	header.Set("Authorization", "KakaoAK "+c.apiKey)

	var raw kakaoResponse
	if err := provider.GetJSON(ctx, c.client, endpoint, header, &raw); err != nil {
		return provider.Failure[Coordinate](fmt.Errorf("kakao search: %w", err))
	}
	if len(raw.Documents) == 0 {
		return provider.NoMatch[Coordinate]()
	}

	first := raw.Documents[0]
	coord, err := parseCoordinate(first.Y, first.X)
	if err != nil {
		return provider.Failure[Coordinate](fmt.Errorf("kakao search: %w", err))
	}
	return provider.Success(coord)
}

// ---- Nominatim ----

const (
	nominatimDefault = "https://nominatim.openstreetmap.org/search"
	defaultUserAgent = "match-archive/1.0"
)

// NominatimClient resolves free-text addresses through OpenStreetMap
// Nominatim. No credential is required.
type NominatimClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimClient constructs a NominatimClient against the public endpoint.
func NewNominatimClient(userAgent string, client *http.Client) *NominatimClient {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &NominatimClient{baseURL: nominatimDefault, userAgent: userAgent, client: client}
}

// NewNominatimClientWithURL constructs a NominatimClient pointing at a custom base URL (for tests).
func NewNominatimClientWithURL(baseURL, userAgent string) *NominatimClient {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    provider.NewHTTPClient(provider.DefaultTimeout),
	}
}

func (c *NominatimClient) name() string { return "nominatim" }

func (c *NominatimClient) available() bool { return c != nil }

func (c *NominatimClient) lookup(ctx context.Context, address string) provider.Outcome[Coordinate] {
	start := time.Now()
	out := c.doLookup(ctx, address)
	provider.Record(c.name(), out.Kind, time.Since(start))
	return out
}

func (c *NominatimClient) doLookup(ctx context.Context, address string) provider.Outcome[Coordinate] {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	endpoint := c.baseURL + "?" + params.Encode()

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	var raw []nominatimResult
	if err := provider.GetJSON(ctx, c.client, endpoint, header, &raw); err != nil {
		return provider.Failure[Coordinate](fmt.Errorf("nominatim search: %w", err))
	}
	if len(raw) == 0 {
		return provider.NoMatch[Coordinate]()
	}

	coord, err := parseCoordinate(raw[0].Lat, raw[0].Lon)
	if err != nil {
		return provider.Failure[Coordinate](fmt.Errorf("nominatim search: %w", err))
	}
	return provider.Success(coord)
}
