package models

// WorkType discriminates movies from TV shows. The numeric IDs handed out by
// the upstream API are only unique within a type, so the pair (Type, ID) is
// the real identity of a Work.
type WorkType string

const (
	WorkTypeMovie  WorkType = "MOVIE"
	WorkTypeTVShow WorkType = "TV_SHOW"
)

// ParseWorkType maps a raw string onto a WorkType, falling back to MOVIE for
// anything it does not recognise.
func ParseWorkType(s string) WorkType {
	if s == string(WorkTypeTVShow) {
		return WorkTypeTVShow
	}
	return WorkTypeMovie
}

// Work is a movie or a TV show. Everything except Favorite comes from the
// remote source and is immutable after construction; Favorite reflects the
// local store.
type Work struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"originalTitle,omitempty"`
	Overview         string   `json:"overview"`
	OriginalLanguage string   `json:"originalLanguage,omitempty"`
	ReleaseDate      string   `json:"releaseDate,omitempty"`
	BackdropPath     string   `json:"backdropPath,omitempty"`
	PosterPath       string   `json:"posterPath,omitempty"`
	Popularity       float64  `json:"popularity,omitempty"`
	VoteAverage      float64  `json:"voteAverage,omitempty"`
	VoteCount        int      `json:"voteCount,omitempty"`
	Adult            bool     `json:"adult,omitempty"`
	Favorite         bool     `json:"favorite"`
	Type             WorkType `json:"type"`
	Source           string   `json:"source,omitempty"`
}

// WorkPage is the pagination envelope returned by listing and search calls.
type WorkPage struct {
	Page         int    `json:"page"`
	TotalPages   int    `json:"totalPages"`
	TotalResults int    `json:"totalResults"`
	Works        []Work `json:"works"`
}

// Items returns the page contents, treating an absent list as empty.
func (p WorkPage) Items() []Work {
	if p.Works == nil {
		return []Work{}
	}
	return p.Works
}

// Genre partitions browse rows.
type Genre struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Source WorkType `json:"source"`
}

// Video is a trailer/teaser/clip attached to a work.
type Video struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
	Site string `json:"site,omitempty"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Review is a flat fetch-and-display value.
type Review struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// WatchProvider is a single streaming/rent/buy offer. Lower DisplayPriority
// means the provider should be shown first.
type WatchProvider struct {
	ProviderID      int    `json:"providerId"`
	ProviderName    string `json:"providerName"`
	LogoPath        string `json:"logoPath,omitempty"`
	DisplayPriority int    `json:"displayPriority"`
}

// WatchProviderGroup holds the offers for one country.
type WatchProviderGroup struct {
	Link     string          `json:"link,omitempty"`
	Flatrate []WatchProvider `json:"flatrate,omitempty"`
	Rent     []WatchProvider `json:"rent,omitempty"`
	Buy      []WatchProvider `json:"buy,omitempty"`
}

// WatchProviders maps ISO 3166-1 country codes to offers. A missing country
// entry simply means no providers there.
type WatchProviders struct {
	Countries map[string]WatchProviderGroup `json:"countries"`
}

// ForCountry returns the offers for a country and whether any exist.
func (w WatchProviders) ForCountry(code string) (WatchProviderGroup, bool) {
	group, ok := w.Countries[code]
	return group, ok
}

// WorkDetails is the aggregated detail-screen payload.
type WorkDetails struct {
	Work      Work            `json:"work"`
	Videos    []Video         `json:"videos"`
	Casts     []Cast          `json:"casts"`
	Providers *WatchProviders `json:"providers,omitempty"`
	Reviews   []Review        `json:"reviews"`
}
