package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// Optimized image sizes instead of "original" to keep TV clients light.
	// Posters: w500 is plenty for card rails; backdrops: w1280 covers 1080p.
	tmdbPosterSize   = "w500"
	tmdbBackdropSize = "w1280"
	tmdbProfileSize  = "w500"
)

var errAPIKeyMissing = errors.New("tmdb api key not configured")

type tmdbClient struct {
	apiKey     string
	language   string
	httpc      *http.Client
	retryDelay time.Duration

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		httpc:       httpc,
		retryDelay:  300 * time.Millisecond,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

func (c *tmdbClient) throttle() {
	c.throttleMu.Lock()
	since := time.Since(c.lastRequest)
	if since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
	c.throttleMu.Unlock()
}

// endpoint builds a full request URL. rawQuery entries are appended verbatim,
// which lets callers hand over an already-encoded search query untouched.
func (c *tmdbClient) endpoint(segments []string, params url.Values, rawQuery string) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", normalizeLanguage(c.language))
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	query := q.Encode()
	if rawQuery != "" {
		query += "&" + rawQuery
	}
	return tmdbBaseURL + "/" + strings.Join(segments, "/") + "?" + query
}

// doGET issues a rate-limited GET and decodes the JSON body into v. Transient
// failures (transport errors, 429, 5xx) are retried with exponential backoff;
// other HTTP errors fail immediately.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, v any) error {
	if !c.isConfigured() {
		return errAPIKeyMissing
	}

	return retry.Do(
		func() error {
			c.throttle()

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				log.Printf("[tmdb] http error: %v", err)
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				log.Printf("[tmdb] rate limited or server error: status %d", resp.StatusCode)
				return fmt.Errorf("tmdb request failed: %s", resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("tmdb request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// Listing response shared by movie and TV rails. A missing results array is
// decoded as nil and treated as empty downstream.
type tmdbWorkPageResponse struct {
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
	Results      []tmdbWorkResult `json:"results"`
}

// tmdbWorkResult covers both movie and TV payloads; movies populate
// title/original_title/release_date, shows populate name/original_name/
// first_air_date. The display* accessors pick the right variant.
type tmdbWorkResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	Overview         string  `json:"overview"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	BackdropPath     string  `json:"backdrop_path"`
	PosterPath       string  `json:"poster_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`
}

func (r tmdbWorkResult) displayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

func (r tmdbWorkResult) displayOriginalTitle() string {
	if r.OriginalTitle != "" {
		return r.OriginalTitle
	}
	return r.OriginalName
}

func (r tmdbWorkResult) firstRelease() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

type tmdbGenresResponse struct {
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type tmdbCreditsResponse struct {
	Cast []tmdbCastResult `json:"cast"`
}

type tmdbCastResult struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath string  `json:"profile_path"`
	Popularity  float64 `json:"popularity"`
	Order       int     `json:"order"`
}

type tmdbPersonResponse struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Birthday    string  `json:"birthday"`
	Deathday    string  `json:"deathday"`
	Biography   string  `json:"biography"`
	ProfilePath string  `json:"profile_path"`
	Popularity  float64 `json:"popularity"`
}

type tmdbVideosResponse struct {
	Results []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Key  string `json:"key"`
		Site string `json:"site"`
		Type string `json:"type"`
	} `json:"results"`
}

type tmdbReviewsResponse struct {
	Page    int `json:"page"`
	Results []struct {
		ID      string `json:"id"`
		Author  string `json:"author"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

type tmdbWatchProvidersResponse struct {
	Results map[string]tmdbProviderCountry `json:"results"`
}

type tmdbProviderCountry struct {
	Link     string               `json:"link"`
	Flatrate []tmdbProviderResult `json:"flatrate"`
	Rent     []tmdbProviderResult `json:"rent"`
	Buy      []tmdbProviderResult `json:"buy"`
}

type tmdbProviderResult struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

func (c *tmdbClient) workList(ctx context.Context, mediaType, category string, page int) (*tmdbWorkPageResponse, error) {
	var payload tmdbWorkPageResponse
	params := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.doGET(ctx, c.endpoint([]string{mediaType, category}, params, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) discoverByGenre(ctx context.Context, mediaType string, genreID, page int) (*tmdbWorkPageResponse, error) {
	var payload tmdbWorkPageResponse
	params := url.Values{
		"page":        {strconv.Itoa(page)},
		"with_genres": {strconv.Itoa(genreID)},
	}
	if err := c.doGET(ctx, c.endpoint([]string{"discover", mediaType}, params, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) genres(ctx context.Context, mediaType string) (*tmdbGenresResponse, error) {
	var payload tmdbGenresResponse
	if err := c.doGET(ctx, c.endpoint([]string{"genre", mediaType, "list"}, nil, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) workDetails(ctx context.Context, mediaType string, id int) (*tmdbWorkResult, error) {
	var payload tmdbWorkResult
	if err := c.doGET(ctx, c.endpoint([]string{mediaType, strconv.Itoa(id)}, nil, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) credits(ctx context.Context, mediaType string, id int) (*tmdbCreditsResponse, error) {
	var payload tmdbCreditsResponse
	if err := c.doGET(ctx, c.endpoint([]string{mediaType, strconv.Itoa(id), "credits"}, nil, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) videos(ctx context.Context, mediaType string, id int) (*tmdbVideosResponse, error) {
	var payload tmdbVideosResponse
	if err := c.doGET(ctx, c.endpoint([]string{mediaType, strconv.Itoa(id), "videos"}, nil, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) reviews(ctx context.Context, mediaType string, id, page int) (*tmdbReviewsResponse, error) {
	var payload tmdbReviewsResponse
	params := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.doGET(ctx, c.endpoint([]string{mediaType, strconv.Itoa(id), "reviews"}, params, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) similar(ctx context.Context, mediaType string, id, page int) (*tmdbWorkPageResponse, error) {
	var payload tmdbWorkPageResponse
	params := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.doGET(ctx, c.endpoint([]string{mediaType, strconv.Itoa(id), "similar"}, params, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) watchProviders(ctx context.Context, mediaType string, id int) (*tmdbWatchProvidersResponse, error) {
	var payload tmdbWatchProvidersResponse
	if err := c.doGET(ctx, c.endpoint([]string{mediaType, strconv.Itoa(id), "watch", "providers"}, nil, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) person(ctx context.Context, id int) (*tmdbPersonResponse, error) {
	var payload tmdbPersonResponse
	if err := c.doGET(ctx, c.endpoint([]string{"person", strconv.Itoa(id)}, nil, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) personCredits(ctx context.Context, id int, mediaType string) (*tmdbCreditsWorksResponse, error) {
	var payload tmdbCreditsWorksResponse
	if err := c.doGET(ctx, c.endpoint([]string{"person", strconv.Itoa(id), mediaType + "_credits"}, nil, ""), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type tmdbCreditsWorksResponse struct {
	Cast []tmdbWorkResult `json:"cast"`
}

// search issues a search with a query string that the caller has already
// URL-encoded. It must be passed through without a second encoding pass.
func (c *tmdbClient) search(ctx context.Context, mediaType, encodedQuery string, page int) (*tmdbWorkPageResponse, error) {
	var payload tmdbWorkPageResponse
	params := url.Values{"page": {strconv.Itoa(page)}}
	endpoint := c.endpoint([]string{"search", mediaType}, params, "query="+encodedQuery)
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func buildImageURL(imagePath, size string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return tmdbImageBaseURL + "/" + size + "/" + strings.TrimPrefix(trimmed, "/")
}

func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if len(lang) == 2 {
		return strings.ToLower(lang) + "-US"
	}
	if len(lang) >= 5 {
		return strings.ToLower(lang[:2]) + "-" + strings.ToUpper(lang[3:])
	}
	return "en-US"
}
