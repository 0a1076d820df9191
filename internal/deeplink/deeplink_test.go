package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcuspimenta/BESTV-sub002/models"
)

func TestWorkRoundTrip(t *testing.T) {
	work := models.Work{
		ID:               550,
		Title:            "Fight Club",
		OriginalTitle:    "Fight Club",
		Overview:         "An insomniac office worker crosses paths with a soap maker.",
		OriginalLanguage: "en",
		ReleaseDate:      "1999-10-15",
		BackdropPath:     "https://image.tmdb.org/t/p/w1280/backdrop.jpg",
		PosterPath:       "https://image.tmdb.org/t/p/w500/poster.jpg",
		Favorite:         true,
		Type:             models.WorkTypeMovie,
		Source:           "tmdb",
	}

	raw := FormatWork(work)
	assert.Equal(t, FeatureWork, Feature(raw))

	got := ParseWork(raw)
	assert.Equal(t, work, got)
}

func TestCastRoundTrip(t *testing.T) {
	cast := models.Cast{
		ID:           287,
		Name:         "Brad Pitt",
		Character:    "Tyler Durden",
		Birthday:     "1963-12-18",
		Biography:    "William Bradley Pitt is an American actor.",
		ThumbnailURL: "https://image.tmdb.org/t/p/w500/profile.jpg",
		Source:       "tmdb",
	}

	raw := FormatCast(cast)
	assert.Equal(t, FeatureCast, Feature(raw))
	assert.Equal(t, cast, ParseCast(raw))
}

func TestParseWorkMissingTypeDefaultsToMovie(t *testing.T) {
	got := ParseWork("bestv://work/detail?ID=42&TITLE=Some+Movie")
	assert.Equal(t, models.WorkTypeMovie, got.Type)
	assert.Equal(t, 42, got.ID)
	assert.Equal(t, "Some Movie", got.Title)
}

func TestParseWorkDefaultsOnBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing id", "bestv://work/detail?TITLE=x"},
		{"non-numeric id", "bestv://work/detail?ID=abc"},
		{"negative id", "bestv://work/detail?ID=-3"},
		{"garbage uri", "::not a uri::"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseWork(tc.raw)
			assert.Equal(t, 1, got.ID)
			assert.Equal(t, models.WorkTypeMovie, got.Type)
			assert.False(t, got.Favorite)
		})
	}
}

func TestParseWorkFavorite(t *testing.T) {
	assert.True(t, ParseWork("bestv://work/detail?ID=7&FAVORITE=true").Favorite)
	assert.False(t, ParseWork("bestv://work/detail?ID=7&FAVORITE=maybe").Favorite)
	assert.False(t, ParseWork("bestv://work/detail?ID=7").Favorite)
}

func TestFeatureRejectsForeignURIs(t *testing.T) {
	assert.Equal(t, "", Feature("https://example.com/work/detail?ID=1"))
	assert.Equal(t, "", Feature("bestv://settings/detail"))
	assert.Equal(t, "", Feature(""))
}
