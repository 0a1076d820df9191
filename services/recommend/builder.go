// Package recommend builds the home-screen recommendation rows from the
// currently popular works and hands them to a publisher on every scheduled
// pass.
package recommend

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/marcuspimenta/BESTV-sub002/internal/deeplink"
	"github.com/marcuspimenta/BESTV-sub002/models"
)

// Tag identifies the periodic refresh job in the scheduler. Fixed so that a
// reschedule always replaces the previous job instead of stacking a new one.
const Tag = "recommendation-update"

const (
	defaultLimit  = 15
	posterWorkers = 4
	posterTimeout = 10 * time.Second
)

type workLister interface {
	Works(ctx context.Context, workType models.WorkType, category string, page int) (models.WorkPage, error)
}

// Builder assembles recommendation rows from popular works.
type Builder struct {
	metadata  workLister
	publisher Publisher
	httpc     *http.Client
	limit     int
}

// NewBuilder creates a builder publishing at most limit rows per pass.
func NewBuilder(metadata workLister, publisher Publisher, httpc *http.Client, limit int) *Builder {
	if httpc == nil {
		httpc = &http.Client{Timeout: posterTimeout}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Builder{
		metadata:  metadata,
		publisher: publisher,
		httpc:     httpc,
		limit:     limit,
	}
}

// Update runs one publish pass: fetch the popular works, resolve each poster,
// and replace the published row set. Rows keep the fetch order (the remote
// source's popularity rank). A work whose poster cannot be resolved is logged
// and skipped; one bad poster must not block the whole batch.
func (b *Builder) Update(ctx context.Context) error {
	page, err := b.metadata.Works(ctx, models.WorkTypeMovie, "popular", 1)
	if err != nil {
		return fmt.Errorf("fetch popular works: %w", err)
	}

	works := page.Items()
	if len(works) > b.limit {
		works = works[:b.limit]
	}

	resolved := make([]*models.RecommendationRow, len(works))
	p := pool.New().WithMaxGoroutines(posterWorkers)
	for i, work := range works {
		p.Go(func() {
			if err := b.resolvePoster(ctx, work.PosterPath); err != nil {
				log.Printf("[recommend] skipping %q: %v", work.Title, err)
				return
			}
			resolved[i] = &models.RecommendationRow{
				WorkID:        work.ID,
				Title:         work.Title,
				ImageURL:      work.PosterPath,
				BackgroundURL: work.BackdropPath,
				Action:        actionFor(work),
			}
		})
	}
	p.Wait()

	rows := make([]models.RecommendationRow, 0, len(resolved))
	for _, row := range resolved {
		if row == nil {
			continue
		}
		row.Rank = len(rows) + 1
		rows = append(rows, *row)
	}

	if err := b.publisher.Replace(rows); err != nil {
		return fmt.Errorf("publish recommendations: %w", err)
	}

	log.Printf("[recommend] published %d of %d recommendation rows", len(rows), len(works))
	return nil
}

// resolvePoster confirms the poster image is actually retrievable before the
// row is published.
func (b *Builder) resolvePoster(ctx context.Context, posterURL string) error {
	if posterURL == "" {
		return fmt.Errorf("no poster available")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, posterURL, nil)
	if err != nil {
		return fmt.Errorf("build poster request: %w", err)
	}

	resp, err := b.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("fetch poster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch poster: %s", resp.Status)
	}
	return nil
}

// actionFor builds the row's deep-link action. The uuid fragment uniquifies
// the action string so two publish passes never hand the platform identical
// intents.
func actionFor(work models.Work) string {
	return deeplink.FormatWork(work) + "#" + uuid.NewString()
}
