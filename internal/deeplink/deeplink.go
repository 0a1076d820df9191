// Package deeplink serialises works and cast members into URIs that carry
// every field needed to render the destination screen, so a link can be
// opened without a network round trip.
package deeplink

import (
	"net/url"
	"strconv"

	"github.com/marcuspimenta/BESTV-sub002/models"
)

const (
	// Scheme is the URI scheme all deep links share.
	Scheme = "bestv"

	FeatureWork = "work"
	FeatureCast = "cast"

	entityDetail = "detail"
)

// Recognised query keys. The set is fixed; unknown keys are ignored on parse.
const (
	keyID            = "ID"
	keyTitle         = "TITLE"
	keyLanguage      = "LANGUAGE"
	keyOverview      = "OVERVIEW"
	keyBackgroundURL = "BACKGROUND_URL"
	keyPosterURL     = "POSTER_URL"
	keyOriginalTitle = "ORIGINAL_TITLE"
	keyReleaseDate   = "RELEASE_DATE"
	keyFavorite      = "FAVORITE"
	keyType          = "TYPE"
	keyName          = "NAME"
	keyCharacter     = "CHARACTER"
	keyBirthday      = "BIRTHDAY"
	keyDeathDay      = "DEATH_DAY"
	keyBiography     = "BIOGRAPHY"
	keySource        = "SOURCE"
	keyThumbnailURL  = "THUMBNAIL_URL"
)

// Defaults applied when a key is missing or fails to parse. Malformed links
// must still resolve to something renderable, never to an error.
const (
	defaultID = 1
)

// FormatWork encodes a work as a deep-link URI.
func FormatWork(w models.Work) string {
	q := url.Values{}
	q.Set(keyID, strconv.Itoa(w.ID))
	q.Set(keyTitle, w.Title)
	q.Set(keyLanguage, w.OriginalLanguage)
	q.Set(keyOverview, w.Overview)
	q.Set(keyBackgroundURL, w.BackdropPath)
	q.Set(keyPosterURL, w.PosterPath)
	q.Set(keyOriginalTitle, w.OriginalTitle)
	q.Set(keyReleaseDate, w.ReleaseDate)
	q.Set(keyFavorite, strconv.FormatBool(w.Favorite))
	q.Set(keyType, string(w.Type))
	q.Set(keySource, w.Source)
	return build(FeatureWork, q)
}

// FormatCast encodes a cast member as a deep-link URI.
func FormatCast(c models.Cast) string {
	q := url.Values{}
	q.Set(keyID, strconv.Itoa(c.ID))
	q.Set(keyName, c.Name)
	q.Set(keyCharacter, c.Character)
	q.Set(keyBirthday, c.Birthday)
	q.Set(keyDeathDay, c.DeathDay)
	q.Set(keyBiography, c.Biography)
	q.Set(keyThumbnailURL, c.ThumbnailURL)
	q.Set(keySource, c.Source)
	return build(FeatureCast, q)
}

func build(feature string, q url.Values) string {
	u := url.URL{
		Scheme:   Scheme,
		Host:     feature,
		Path:     "/" + entityDetail,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Feature reports which destination a link points at, or "" when the URI is
// not a recognisable deep link.
func Feature(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != Scheme {
		return ""
	}
	switch u.Host {
	case FeatureWork, FeatureCast:
		return u.Host
	}
	return ""
}

// ParseWork reconstructs a work from a deep link. Parsing is best effort:
// missing or unparseable values fall back to fixed defaults (ID=1,
// TYPE=MOVIE, FAVORITE=false) rather than failing.
func ParseWork(raw string) models.Work {
	q := query(raw)
	return models.Work{
		ID:               intValue(q, keyID),
		Title:            q.Get(keyTitle),
		OriginalTitle:    q.Get(keyOriginalTitle),
		Overview:         q.Get(keyOverview),
		OriginalLanguage: q.Get(keyLanguage),
		ReleaseDate:      q.Get(keyReleaseDate),
		BackdropPath:     q.Get(keyBackgroundURL),
		PosterPath:       q.Get(keyPosterURL),
		Favorite:         boolValue(q, keyFavorite),
		Type:             models.ParseWorkType(q.Get(keyType)),
		Source:           q.Get(keySource),
	}
}

// ParseCast reconstructs a cast member from a deep link with the same
// defaulting policy as ParseWork.
func ParseCast(raw string) models.Cast {
	q := query(raw)
	return models.Cast{
		ID:           intValue(q, keyID),
		Name:         q.Get(keyName),
		Character:    q.Get(keyCharacter),
		Birthday:     q.Get(keyBirthday),
		DeathDay:     q.Get(keyDeathDay),
		Biography:    q.Get(keyBiography),
		ThumbnailURL: q.Get(keyThumbnailURL),
		Source:       q.Get(keySource),
	}
}

func query(raw string) url.Values {
	u, err := url.Parse(raw)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}

func intValue(q url.Values, key string) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v <= 0 {
		return defaultID
	}
	return v
}

func boolValue(q url.Values, key string) bool {
	v, err := strconv.ParseBool(q.Get(key))
	if err != nil {
		return false
	}
	return v
}
