package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/marcuspimenta/BESTV-sub002/models"
)

// Publisher modes. Channel rows are the modern home-screen surface; the
// notification mode mirrors the legacy recommendation rows on platforms
// without channel support.
const (
	ModeChannel      = "channel"
	ModeNotification = "notification"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// Publisher receives the full row set on every publish pass. Replace has
// full-replace semantics: whatever was published before is gone afterwards.
type Publisher interface {
	Replace(rows []models.RecommendationRow) error
	Rows() ([]models.RecommendationRow, error)
}

// NewPublisher selects a publisher implementation by mode, defaulting to
// channel rows.
func NewPublisher(mode string, fsys afero.Fs, storageDir string) (Publisher, error) {
	if strings.EqualFold(strings.TrimSpace(mode), ModeNotification) {
		return NewNotificationPublisher(), nil
	}
	return NewChannelPublisher(fsys, storageDir)
}

// ChannelPublisher persists the published rows as a JSON document so they
// survive restarts, replacing the whole document on every pass.
type ChannelPublisher struct {
	mu   sync.RWMutex
	fs   afero.Fs
	path string
}

// NewChannelPublisher creates a channel publisher storing rows inside the
// provided directory.
func NewChannelPublisher(fsys afero.Fs, storageDir string) (*ChannelPublisher, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := fsys.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create recommendation dir: %w", err)
	}
	return &ChannelPublisher{
		fs:   fsys,
		path: filepath.Join(storageDir, "recommendations.json"),
	}, nil
}

// Replace swaps the published row set atomically.
func (p *ChannelPublisher) Replace(rows []models.RecommendationRow) error {
	if rows == nil {
		rows = []models.RecommendationRow{}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	tmp := p.path + ".tmp"
	if err := afero.WriteFile(p.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write recommendations temp file: %w", err)
	}
	if err := p.fs.Rename(tmp, p.path); err != nil {
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("replace recommendations file: %w", err)
	}
	return nil
}

// Rows returns the currently published rows, empty when nothing has been
// published yet.
func (p *ChannelPublisher) Rows() ([]models.RecommendationRow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	data, err := afero.ReadFile(p.fs, p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.RecommendationRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read recommendations: %w", err)
	}

	rows := make([]models.RecommendationRow, 0)
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return rows, nil
}

// NotificationPublisher keeps the published rows in memory only, matching
// the transient nature of notification-based recommendations.
type NotificationPublisher struct {
	mu   sync.RWMutex
	rows []models.RecommendationRow
}

func NewNotificationPublisher() *NotificationPublisher {
	return &NotificationPublisher{rows: []models.RecommendationRow{}}
}

func (p *NotificationPublisher) Replace(rows []models.RecommendationRow) error {
	if rows == nil {
		rows = []models.RecommendationRow{}
	}
	p.mu.Lock()
	p.rows = rows
	p.mu.Unlock()
	return nil
}

func (p *NotificationPublisher) Rows() ([]models.RecommendationRow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rows := make([]models.RecommendationRow, len(p.rows))
	copy(rows, p.rows)
	return rows, nil
}
