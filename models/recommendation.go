package models

// RecommendationRow is one published home-screen entry. Action carries the
// work's deep link plus a uniquifier so two publish passes never hand the
// platform colliding intents.
type RecommendationRow struct {
	WorkID        int    `json:"workId"`
	Title         string `json:"title"`
	ImageURL      string `json:"imageUrl"`
	BackgroundURL string `json:"backgroundUrl,omitempty"`
	Action        string `json:"action"`
	Rank          int    `json:"rank"`
}
