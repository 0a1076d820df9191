// Package favorites persists which works the user has marked favorite. The
// store is the only durable state the application owns; everything else is
// refetched from the remote source on demand.
package favorites

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/marcuspimenta/BESTV-sub002/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	ErrPathRequired = errors.New("database path not provided")
	ErrIDRequired   = errors.New("work id is required")
)

// Service stores favorites keyed by (type, id) in two tables, one per work
// type. Writes are serialized by SQLite itself; concurrent toggles on the
// same key resolve last-write-wins.
type Service struct {
	db *sql.DB
}

// NewService opens (creating if needed) the favorites database and applies
// pending migrations.
func NewService(dbPath string) (*Service, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, ErrPathRequired
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open favorites db: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate favorites db: %w", err)
	}

	return &Service{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Service) Close() error {
	return s.db.Close()
}

// IsFavorite reports whether the work is marked favorite.
func (s *Service) IsFavorite(ctx context.Context, work models.Work) (bool, error) {
	if work.ID <= 0 {
		return false, ErrIDRequired
	}

	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE id = ?", tableFor(work.Type))
	var count int
	if err := s.db.QueryRowContext(ctx, query, work.ID).Scan(&count); err != nil {
		return false, fmt.Errorf("query favorite: %w", err)
	}
	return count > 0, nil
}

// SetFavorite marks or unmarks a work. Marking stores a snapshot of the work
// so the favorites rail renders without a network round trip; unmarking
// deletes the row. Both are idempotent.
func (s *Service) SetFavorite(ctx context.Context, work models.Work, favorite bool) error {
	if work.ID <= 0 {
		return ErrIDRequired
	}

	table := tableFor(work.Type)
	if !favorite {
		query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
		if _, err := s.db.ExecContext(ctx, query, work.ID); err != nil {
			return fmt.Errorf("delete favorite: %w", err)
		}
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, title, original_title, overview, original_language, release_date,
		 backdrop_path, poster_path, popularity, vote_average, vote_count, adult, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 title = excluded.title,
		 original_title = excluded.original_title,
		 overview = excluded.overview,
		 original_language = excluded.original_language,
		 release_date = excluded.release_date,
		 backdrop_path = excluded.backdrop_path,
		 poster_path = excluded.poster_path,
		 popularity = excluded.popularity,
		 vote_average = excluded.vote_average,
		 vote_count = excluded.vote_count,
		 adult = excluded.adult,
		 source = excluded.source`, table)

	_, err := s.db.ExecContext(ctx, query,
		work.ID, work.Title, work.OriginalTitle, work.Overview, work.OriginalLanguage,
		work.ReleaseDate, work.BackdropPath, work.PosterPath, work.Popularity,
		work.VoteAverage, work.VoteCount, work.Adult, work.Source)
	if err != nil {
		return fmt.Errorf("save favorite: %w", err)
	}
	return nil
}

// List returns every favorite work, movies first, each in save order.
func (s *Service) List(ctx context.Context) ([]models.Work, error) {
	works := make([]models.Work, 0)
	for _, workType := range []models.WorkType{models.WorkTypeMovie, models.WorkTypeTVShow} {
		typed, err := s.listType(ctx, workType)
		if err != nil {
			return nil, err
		}
		works = append(works, typed...)
	}
	return works, nil
}

func (s *Service) listType(ctx context.Context, workType models.WorkType) ([]models.Work, error) {
	query := fmt.Sprintf(`SELECT id, title, original_title, overview, original_language,
		release_date, backdrop_path, poster_path, popularity, vote_average, vote_count, adult, source
		FROM %s ORDER BY saved_at, id`, tableFor(workType))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	works := make([]models.Work, 0)
	for rows.Next() {
		w := models.Work{Type: workType, Favorite: true}
		if err := rows.Scan(&w.ID, &w.Title, &w.OriginalTitle, &w.Overview, &w.OriginalLanguage,
			&w.ReleaseDate, &w.BackdropPath, &w.PosterPath, &w.Popularity,
			&w.VoteAverage, &w.VoteCount, &w.Adult, &w.Source); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		works = append(works, w)
	}
	return works, rows.Err()
}

// Decorate stamps the Favorite flag onto works fetched from the remote
// source. The input slice is modified in place and returned.
func (s *Service) Decorate(ctx context.Context, works []models.Work) ([]models.Work, error) {
	ids := make(map[models.WorkType]map[int]bool, 2)
	for _, workType := range []models.WorkType{models.WorkTypeMovie, models.WorkTypeTVShow} {
		typed, err := s.favoriteIDs(ctx, workType)
		if err != nil {
			return works, err
		}
		ids[workType] = typed
	}

	for i := range works {
		works[i].Favorite = ids[works[i].Type][works[i].ID]
	}
	return works, nil
}

func (s *Service) favoriteIDs(ctx context.Context, workType models.WorkType) (map[int]bool, error) {
	query := fmt.Sprintf("SELECT id FROM %s", tableFor(workType))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list favorite ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func tableFor(workType models.WorkType) string {
	if workType == models.WorkTypeTVShow {
		return "tv_show_favorites"
	}
	return "movie_favorites"
}
