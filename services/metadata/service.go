package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/marcuspimenta/BESTV-sub002/models"
	"github.com/marcuspimenta/BESTV-sub002/utils/similarity"
)

// SourceTMDB is the provenance label stamped on everything this service maps.
const SourceTMDB = "tmdb"

var ErrUnknownCategory = errors.New("unknown listing category")

var movieCategories = map[string]bool{
	"now_playing": true,
	"popular":     true,
	"top_rated":   true,
	"upcoming":    true,
}

var tvCategories = map[string]bool{
	"airing_today": true,
	"on_the_air":   true,
	"popular":      true,
	"top_rated":    true,
}

// Service is the repository layer over the TMDB client: it maps remote DTOs
// into domain models and owns the concurrent aggregation use cases.
type Service struct {
	client *tmdbClient
}

// NewService creates a metadata service backed by TMDB.
func NewService(apiKey, language string, httpc *http.Client) *Service {
	return &Service{client: newTMDBClient(apiKey, language, httpc)}
}

// Works returns one page of a browse rail (popular, top_rated, ...) for the
// given work type.
func (s *Service) Works(ctx context.Context, workType models.WorkType, category string, page int) (models.WorkPage, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	mediaType := mediaTypeFor(workType)
	valid := movieCategories
	if workType == models.WorkTypeTVShow {
		valid = tvCategories
	}
	if !valid[category] {
		return models.WorkPage{}, fmt.Errorf("%w: %q for %s", ErrUnknownCategory, category, mediaType)
	}

	payload, err := s.client.workList(ctx, mediaType, category, normalizePage(page))
	if err != nil {
		return models.WorkPage{}, err
	}
	return s.mapPage(payload, workType), nil
}

// Genres lists the browse-row genres for a work type.
func (s *Service) Genres(ctx context.Context, workType models.WorkType) ([]models.Genre, error) {
	payload, err := s.client.genres(ctx, mediaTypeFor(workType))
	if err != nil {
		return nil, err
	}

	genres := make([]models.Genre, 0, len(payload.Genres))
	for _, g := range payload.Genres {
		genres = append(genres, models.Genre{ID: g.ID, Name: g.Name, Source: workType})
	}
	return genres, nil
}

// WorksByGenre returns one page of works belonging to a genre.
func (s *Service) WorksByGenre(ctx context.Context, workType models.WorkType, genreID, page int) (models.WorkPage, error) {
	payload, err := s.client.discoverByGenre(ctx, mediaTypeFor(workType), genreID, normalizePage(page))
	if err != nil {
		return models.WorkPage{}, err
	}
	return s.mapPage(payload, workType), nil
}

// SimilarWorks returns one page of works similar to the given one.
func (s *Service) SimilarWorks(ctx context.Context, workType models.WorkType, id, page int) (models.WorkPage, error) {
	payload, err := s.client.similar(ctx, mediaTypeFor(workType), id, normalizePage(page))
	if err != nil {
		return models.WorkPage{}, err
	}
	return s.mapPage(payload, workType), nil
}

// WorkDetails aggregates the detail screen for a work: base details, videos,
// cast, watch providers and reviews are fetched concurrently and joined. The
// first failing branch cancels the others and fails the whole call; no
// partial result is returned.
func (s *Service) WorkDetails(ctx context.Context, workType models.WorkType, id int) (*models.WorkDetails, error) {
	mediaType := mediaTypeFor(workType)

	var (
		details   *tmdbWorkResult
		videos    *tmdbVideosResponse
		credits   *tmdbCreditsResponse
		providers *tmdbWatchProvidersResponse
		reviews   *tmdbReviewsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := s.client.workDetails(gctx, mediaType, id)
		if err != nil {
			return fmt.Errorf("work details: %w", err)
		}
		details = payload
		return nil
	})
	g.Go(func() error {
		payload, err := s.client.videos(gctx, mediaType, id)
		if err != nil {
			return fmt.Errorf("videos: %w", err)
		}
		videos = payload
		return nil
	})
	g.Go(func() error {
		payload, err := s.client.credits(gctx, mediaType, id)
		if err != nil {
			return fmt.Errorf("credits: %w", err)
		}
		credits = payload
		return nil
	})
	g.Go(func() error {
		payload, err := s.client.watchProviders(gctx, mediaType, id)
		if err != nil {
			return fmt.Errorf("watch providers: %w", err)
		}
		providers = payload
		return nil
	})
	g.Go(func() error {
		payload, err := s.client.reviews(gctx, mediaType, id, 1)
		if err != nil {
			return fmt.Errorf("reviews: %w", err)
		}
		reviews = payload
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.WorkDetails{
		Work:      s.mapWork(*details, workType),
		Videos:    mapVideos(videos),
		Casts:     mapCredits(credits),
		Providers: mapWatchProviders(providers),
		Reviews:   mapReviews(reviews),
	}, nil
}

// CastDetails joins a person's details with their movie and TV filmographies.
// The three fetches run concurrently; any failure fails the join.
func (s *Service) CastDetails(ctx context.Context, castID int) (*models.CastDetails, error) {
	var (
		person  *tmdbPersonResponse
		movies  *tmdbCreditsWorksResponse
		tvShows *tmdbCreditsWorksResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := s.client.person(gctx, castID)
		if err != nil {
			return fmt.Errorf("person details: %w", err)
		}
		person = payload
		return nil
	})
	g.Go(func() error {
		payload, err := s.client.personCredits(gctx, castID, "movie")
		if err != nil {
			return fmt.Errorf("movie credits: %w", err)
		}
		movies = payload
		return nil
	})
	g.Go(func() error {
		payload, err := s.client.personCredits(gctx, castID, "tv")
		if err != nil {
			return fmt.Errorf("tv credits: %w", err)
		}
		tvShows = payload
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.CastDetails{
		Cast:         s.mapPerson(*person),
		MovieCredits: s.mapWorks(movies.Cast, models.WorkTypeMovie),
		TVCredits:    s.mapWorks(tvShows.Cast, models.WorkTypeTVShow),
	}, nil
}

// SearchWorks runs the movie and TV searches concurrently for a free-text
// query and returns both first pages. The query is URL-encoded exactly once
// up front; both branches receive the identical encoded string. Results are
// ranked by title similarity to the raw query.
func (s *Service) SearchWorks(ctx context.Context, query string) (models.WorkPage, models.WorkPage, error) {
	encoded := url.QueryEscape(strings.TrimSpace(query))

	var moviePayload, tvPayload *tmdbWorkPageResponse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := s.client.search(gctx, "movie", encoded, 1)
		if err != nil {
			return fmt.Errorf("movie search: %w", err)
		}
		moviePayload = payload
		return nil
	})
	g.Go(func() error {
		payload, err := s.client.search(gctx, "tv", encoded, 1)
		if err != nil {
			return fmt.Errorf("tv search: %w", err)
		}
		tvPayload = payload
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.WorkPage{}, models.WorkPage{}, err
	}

	moviePage := s.mapPage(moviePayload, models.WorkTypeMovie)
	tvPage := s.mapPage(tvPayload, models.WorkTypeTVShow)
	rankByTitle(query, moviePage.Works)
	rankByTitle(query, tvPage.Works)
	return moviePage, tvPage, nil
}

func (s *Service) mapPage(payload *tmdbWorkPageResponse, workType models.WorkType) models.WorkPage {
	return models.WorkPage{
		Page:         payload.Page,
		TotalPages:   payload.TotalPages,
		TotalResults: payload.TotalResults,
		Works:        s.mapWorks(payload.Results, workType),
	}
}

func (s *Service) mapWorks(results []tmdbWorkResult, workType models.WorkType) []models.Work {
	works := make([]models.Work, 0, len(results))
	for _, r := range results {
		works = append(works, s.mapWork(r, workType))
	}
	return works
}

func (s *Service) mapWork(r tmdbWorkResult, workType models.WorkType) models.Work {
	return models.Work{
		ID:               r.ID,
		Title:            r.displayTitle(),
		OriginalTitle:    r.displayOriginalTitle(),
		Overview:         r.Overview,
		OriginalLanguage: r.OriginalLanguage,
		ReleaseDate:      r.firstRelease(),
		BackdropPath:     buildImageURL(r.BackdropPath, tmdbBackdropSize),
		PosterPath:       buildImageURL(r.PosterPath, tmdbPosterSize),
		Popularity:       r.Popularity,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		Adult:            r.Adult,
		Type:             workType,
		Source:           SourceTMDB,
	}
}

func (s *Service) mapPerson(p tmdbPersonResponse) models.Cast {
	return models.Cast{
		ID:           p.ID,
		Name:         p.Name,
		Birthday:     p.Birthday,
		DeathDay:     p.Deathday,
		Biography:    p.Biography,
		ProfilePath:  p.ProfilePath,
		ThumbnailURL: buildImageURL(p.ProfilePath, tmdbProfileSize),
		Popularity:   p.Popularity,
		Source:       SourceTMDB,
	}
}

func mapCredits(payload *tmdbCreditsResponse) []models.Cast {
	casts := make([]models.Cast, 0, len(payload.Cast))
	for _, c := range payload.Cast {
		casts = append(casts, models.Cast{
			ID:           c.ID,
			Name:         c.Name,
			Character:    c.Character,
			ProfilePath:  c.ProfilePath,
			ThumbnailURL: buildImageURL(c.ProfilePath, tmdbProfileSize),
			Popularity:   c.Popularity,
			Source:       SourceTMDB,
		})
	}
	return casts
}

func mapVideos(payload *tmdbVideosResponse) []models.Video {
	videos := make([]models.Video, 0, len(payload.Results))
	for _, v := range payload.Results {
		video := models.Video{ID: v.ID, Name: v.Name, Key: v.Key, Site: v.Site, Type: v.Type}
		if strings.EqualFold(v.Site, "youtube") && v.Key != "" {
			video.URL = "https://www.youtube.com/watch?v=" + v.Key
		}
		videos = append(videos, video)
	}
	return videos
}

func mapReviews(payload *tmdbReviewsResponse) []models.Review {
	reviews := make([]models.Review, 0, len(payload.Results))
	for _, r := range payload.Results {
		reviews = append(reviews, models.Review{ID: r.ID, Author: r.Author, Content: r.Content, URL: r.URL})
	}
	return reviews
}

func mapWatchProviders(payload *tmdbWatchProvidersResponse) *models.WatchProviders {
	countries := make(map[string]models.WatchProviderGroup, len(payload.Results))
	for code, country := range payload.Results {
		countries[code] = models.WatchProviderGroup{
			Link:     country.Link,
			Flatrate: mapProviders(country.Flatrate),
			Rent:     mapProviders(country.Rent),
			Buy:      mapProviders(country.Buy),
		}
	}
	return &models.WatchProviders{Countries: countries}
}

func mapProviders(results []tmdbProviderResult) []models.WatchProvider {
	if len(results) == 0 {
		return nil
	}
	providers := make([]models.WatchProvider, 0, len(results))
	for _, p := range results {
		providers = append(providers, models.WatchProvider{
			ProviderID:      p.ProviderID,
			ProviderName:    p.ProviderName,
			LogoPath:        p.LogoPath,
			DisplayPriority: p.DisplayPriority,
		})
	}
	// Ascending display priority means "show first".
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].DisplayPriority < providers[j].DisplayPriority
	})
	return providers
}

func rankByTitle(query string, works []models.Work) {
	sort.SliceStable(works, func(i, j int) bool {
		return similarity.Similarity(query, works[i].Title) > similarity.Similarity(query, works[j].Title)
	})
}

func mediaTypeFor(workType models.WorkType) string {
	if workType == models.WorkTypeTVShow {
		return "tv"
	}
	return "movie"
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
