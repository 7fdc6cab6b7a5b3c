package geocode_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blood8879/match-archive-sub002/internal/geocode"
)

const testAddress = "서울특별시 강남구 테헤란로 152"

// countingServer wraps a handler and counts the requests it receives.
type countingServer struct {
	*httptest.Server
	calls atomic.Int32
}

func newCountingServer(t *testing.T, h http.HandlerFunc) *countingServer {
	t.Helper()
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func kakaoHandler(docs ...map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if docs == nil {
			docs = []map[string]string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"documents": docs, "meta": map[string]any{"total_count": len(docs)}})
	}
}

func nominatimHandler(results ...map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if results == nil {
			results = []map[string]string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(results)
	}
}

func failingHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream error", status)
	}
}

type servers struct {
	address, keyword, nominatim *countingServer
}

func (s servers) calls() (int32, int32, int32) {
	return s.address.calls.Load(), s.keyword.calls.Load(), s.nominatim.calls.Load()
}

func newServers(t *testing.T, address, keyword, nominatim http.HandlerFunc) servers {
	t.Helper()
	return servers{
		address:   newCountingServer(t, address),
		keyword:   newCountingServer(t, keyword),
		nominatim: newCountingServer(t, nominatim),
	}
}

func buildResolver(s servers, kakaoKey string) *geocode.Resolver {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return geocode.NewResolver(
		geocode.NewKakaoClientWithURLs(s.address.URL, s.keyword.URL, kakaoKey),
		geocode.NewNominatimClientWithURL(s.nominatim.URL, "match-archive-test"),
		log,
	)
}

func TestResolveCoordinates_BlankAddressMakesNoCalls(t *testing.T) {
	s := newServers(t,
		kakaoHandler(map[string]string{"x": "127.0", "y": "37.0"}),
		kakaoHandler(),
		nominatimHandler(map[string]string{"lat": "1", "lon": "2"}),
	)
	r := buildResolver(s, "test-key")

	for _, addr := range []string{"", "   ", "\t\n"} {
		assert.Nil(t, r.ResolveCoordinates(context.Background(), addr), "address %q", addr)
	}

	a, k, n := s.calls()
	assert.Zero(t, a)
	assert.Zero(t, k)
	assert.Zero(t, n)
}

func TestResolveCoordinates_PrimaryMatchShortCircuits(t *testing.T) {
	var gotQuery, gotAuth string
	s := newServers(t,
		func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("query")
			gotAuth = r.Header.Get("Authorization")
			kakaoHandler(map[string]string{"x": "127.036", "y": "37.501"})(w, r)
		},
		kakaoHandler(),
		nominatimHandler(map[string]string{"lat": "1", "lon": "2"}),
	)
	r := buildResolver(s, "test-key")

	coord := r.ResolveCoordinates(context.Background(), testAddress)
	require.NotNil(t, coord)
	assert.Equal(t, geocode.Coordinate{Latitude: 37.501, Longitude: 127.036}, *coord)
	assert.Equal(t, testAddress, gotQuery)
	assert.Equal(t, "KakaoAK test-key", gotAuth)

	a, k, n := s.calls()
	assert.Equal(t, int32(1), a)
	assert.Zero(t, k, "keyword search must not run after an address match")
	assert.Zero(t, n, "secondary provider must not be called after a primary match")
}

func TestResolveCoordinates_AddressTrimmedBeforeLookup(t *testing.T) {
	var gotQuery string
	s := newServers(t,
		func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("query")
			kakaoHandler(map[string]string{"x": "127.036", "y": "37.501"})(w, r)
		},
		kakaoHandler(),
		nominatimHandler(),
	)
	r := buildResolver(s, "test-key")

	require.NotNil(t, r.ResolveCoordinates(context.Background(), "  "+testAddress+"  "))
	assert.Equal(t, testAddress, gotQuery)
}

func TestResolveCoordinates_KeywordStageAfterAddressNoMatch(t *testing.T) {
	s := newServers(t,
		kakaoHandler(),
		kakaoHandler(map[string]string{"x": "126.9780", "y": "37.5665"}),
		nominatimHandler(map[string]string{"lat": "1", "lon": "2"}),
	)
	r := buildResolver(s, "test-key")

	coord := r.ResolveCoordinates(context.Background(), "서울시청")
	require.NotNil(t, coord)
	assert.Equal(t, 37.5665, coord.Latitude)
	assert.Equal(t, 126.978, coord.Longitude)

	a, k, n := s.calls()
	assert.Equal(t, int32(1), a)
	assert.Equal(t, int32(1), k)
	assert.Zero(t, n)
}

func TestResolveCoordinates_FallsBackWhenPrimaryFindsNothing(t *testing.T) {
	var gotUA, gotFormat, gotLimit string
	s := newServers(t,
		kakaoHandler(),
		kakaoHandler(),
		func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotFormat = r.URL.Query().Get("format")
			gotLimit = r.URL.Query().Get("limit")
			nominatimHandler(
				map[string]string{"lat": "52.3676", "lon": "4.9041"},
				map[string]string{"lat": "0", "lon": "0"},
			)(w, r)
		},
	)
	r := buildResolver(s, "test-key")

	coord := r.ResolveCoordinates(context.Background(), "Dam 1, Amsterdam")
	require.NotNil(t, coord)
	assert.Equal(t, geocode.Coordinate{Latitude: 52.3676, Longitude: 4.9041}, *coord, "only the first entry is used")
	assert.Equal(t, "match-archive-test", gotUA)
	assert.Equal(t, "json", gotFormat)
	assert.Equal(t, "1", gotLimit)

	a, k, n := s.calls()
	assert.Equal(t, int32(1), a)
	assert.Equal(t, int32(1), k)
	assert.Equal(t, int32(1), n)
}

func TestResolveCoordinates_PrimaryErrorSkipsKeywordStage(t *testing.T) {
	s := newServers(t,
		failingHandler(http.StatusInternalServerError),
		kakaoHandler(map[string]string{"x": "127.0", "y": "37.0"}),
		nominatimHandler(map[string]string{"lat": "37.5", "lon": "127.0"}),
	)
	r := buildResolver(s, "test-key")

	coord := r.ResolveCoordinates(context.Background(), testAddress)
	require.NotNil(t, coord)
	assert.Equal(t, geocode.Coordinate{Latitude: 37.5, Longitude: 127.0}, *coord)

	a, k, n := s.calls()
	assert.Equal(t, int32(1), a)
	assert.Zero(t, k, "a failed address search abandons the provider")
	assert.Equal(t, int32(1), n)
}

func TestResolveCoordinates_UnconfiguredPrimaryIsSkipped(t *testing.T) {
	s := newServers(t,
		kakaoHandler(map[string]string{"x": "127.0", "y": "37.0"}),
		kakaoHandler(map[string]string{"x": "127.0", "y": "37.0"}),
		nominatimHandler(map[string]string{"lat": "37.5", "lon": "127.0"}),
	)
	r := buildResolver(s, "")

	coord := r.ResolveCoordinates(context.Background(), testAddress)
	require.NotNil(t, coord)

	a, k, n := s.calls()
	assert.Zero(t, a)
	assert.Zero(t, k)
	assert.Equal(t, int32(1), n)
}

func TestResolveCoordinates_NilPrimaryIsSkipped(t *testing.T) {
	nominatim := newCountingServer(t, nominatimHandler(map[string]string{"lat": "37.5", "lon": "127.0"}))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := geocode.NewResolver(nil, geocode.NewNominatimClientWithURL(nominatim.URL, ""), log)

	coord := r.ResolveCoordinates(context.Background(), testAddress)
	require.NotNil(t, coord)
	assert.Equal(t, int32(1), nominatim.calls.Load())
}

func TestResolveCoordinates_AllProvidersExhausted(t *testing.T) {
	s := newServers(t,
		kakaoHandler(),
		failingHandler(http.StatusTooManyRequests),
		failingHandler(http.StatusServiceUnavailable),
	)
	r := buildResolver(s, "test-key")

	assert.Nil(t, r.ResolveCoordinates(context.Background(), testAddress))

	a, k, n := s.calls()
	assert.Equal(t, int32(1), a)
	assert.Equal(t, int32(1), k)
	assert.Equal(t, int32(1), n)
}

func TestResolveCoordinates_MalformedPayloadsAreProviderErrors(t *testing.T) {
	s := newServers(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not json"))
		},
		kakaoHandler(),
		nominatimHandler(map[string]string{"lat": "north", "lon": "4.9"}),
	)
	r := buildResolver(s, "test-key")

	assert.Nil(t, r.ResolveCoordinates(context.Background(), testAddress))

	a, k, n := s.calls()
	assert.Equal(t, int32(1), a)
	assert.Zero(t, k)
	assert.Equal(t, int32(1), n)
}

func TestResolveCoordinates_OutOfRangeCoordinateRejected(t *testing.T) {
	s := newServers(t,
		kakaoHandler(map[string]string{"x": "127.0", "y": "137.0"}),
		kakaoHandler(),
		nominatimHandler(map[string]string{"lat": "37.5", "lon": "127.0"}),
	)
	r := buildResolver(s, "test-key")

	coord := r.ResolveCoordinates(context.Background(), testAddress)
	require.NotNil(t, coord)
	assert.Equal(t, 37.5, coord.Latitude)
}

func TestResolveCoordinates_CancelledContext(t *testing.T) {
	s := newServers(t,
		kakaoHandler(map[string]string{"x": "127.0", "y": "37.0"}),
		kakaoHandler(),
		nominatimHandler(map[string]string{"lat": "37.5", "lon": "127.0"}),
	)
	r := buildResolver(s, "test-key")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, r.ResolveCoordinates(ctx, testAddress))
}
