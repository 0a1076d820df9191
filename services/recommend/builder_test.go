package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcuspimenta/BESTV-sub002/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type fakeLister struct {
	page models.WorkPage
	err  error
}

func (f *fakeLister) Works(ctx context.Context, workType models.WorkType, category string, page int) (models.WorkPage, error) {
	if f.err != nil {
		return models.WorkPage{}, f.err
	}
	return f.page, nil
}

func popularWorks(n int) models.WorkPage {
	works := make([]models.Work, 0, n)
	for i := 1; i <= n; i++ {
		works = append(works, models.Work{
			ID:         i,
			Title:      fmt.Sprintf("Work %d", i),
			PosterPath: fmt.Sprintf("https://img.example/posters/%d.jpg", i),
			Type:       models.WorkTypeMovie,
			Source:     "tmdb",
		})
	}
	return models.WorkPage{Page: 1, Works: works}
}

func posterTransport(failFor map[string]bool) roundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		status := http.StatusOK
		if failFor[req.URL.Path] {
			status = http.StatusNotFound
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(bytes.NewBufferString("img")),
			Header:     make(http.Header),
		}, nil
	}
}

func TestUpdatePublishesInFetchOrder(t *testing.T) {
	lister := &fakeLister{page: popularWorks(5)}
	publisher := NewNotificationPublisher()
	httpc := &http.Client{Transport: posterTransport(nil)}

	b := NewBuilder(lister, publisher, httpc, 15)
	require.NoError(t, b.Update(context.Background()))

	rows, err := publisher.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, row := range rows {
		assert.Equal(t, i+1, row.WorkID)
		assert.Equal(t, i+1, row.Rank)
		assert.Contains(t, row.Action, "bestv://work/detail?")
	}
}

func TestUpdateSkipsWorksWithBrokenPosters(t *testing.T) {
	lister := &fakeLister{page: popularWorks(5)}
	publisher := NewNotificationPublisher()
	httpc := &http.Client{Transport: posterTransport(map[string]bool{"/posters/3.jpg": true})}

	b := NewBuilder(lister, publisher, httpc, 15)
	require.NoError(t, b.Update(context.Background()))

	rows, err := publisher.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 4, "one broken poster must not block the batch")

	ids := make([]int, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.WorkID)
	}
	assert.Equal(t, []int{1, 2, 4, 5}, ids)
	for i, row := range rows {
		assert.Equal(t, i+1, row.Rank, "ranks must stay dense after a skip")
	}
}

func TestUpdateActionsAreUnique(t *testing.T) {
	lister := &fakeLister{page: popularWorks(3)}
	publisher := NewNotificationPublisher()
	httpc := &http.Client{Transport: posterTransport(nil)}

	b := NewBuilder(lister, publisher, httpc, 15)
	require.NoError(t, b.Update(context.Background()))
	first, _ := publisher.Rows()

	require.NoError(t, b.Update(context.Background()))
	second, _ := publisher.Rows()

	seen := map[string]bool{}
	for _, row := range append(first, second...) {
		assert.False(t, seen[row.Action], "duplicate action %q", row.Action)
		seen[row.Action] = true
	}
}

func TestUpdateReplacesPreviousRows(t *testing.T) {
	lister := &fakeLister{page: popularWorks(5)}
	publisher := NewNotificationPublisher()
	httpc := &http.Client{Transport: posterTransport(nil)}

	b := NewBuilder(lister, publisher, httpc, 15)
	require.NoError(t, b.Update(context.Background()))

	lister.page = popularWorks(2)
	require.NoError(t, b.Update(context.Background()))

	rows, err := publisher.Rows()
	require.NoError(t, err)
	assert.Len(t, rows, 2, "publish is full-replace, not append")
}

func TestUpdateHonorsLimit(t *testing.T) {
	lister := &fakeLister{page: popularWorks(20)}
	publisher := NewNotificationPublisher()
	httpc := &http.Client{Transport: posterTransport(nil)}

	b := NewBuilder(lister, publisher, httpc, 5)
	require.NoError(t, b.Update(context.Background()))

	rows, err := publisher.Rows()
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestUpdateFailsWhenFetchFails(t *testing.T) {
	lister := &fakeLister{err: errors.New("tmdb down")}
	publisher := NewNotificationPublisher()

	b := NewBuilder(lister, publisher, &http.Client{Transport: posterTransport(nil)}, 15)
	err := b.Update(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "fetch popular works"))

	rows, _ := publisher.Rows()
	assert.Empty(t, rows, "a failed fetch must not touch the published rows")
}

func TestChannelPublisherPersistsRows(t *testing.T) {
	fsys := afero.NewMemMapFs()

	p, err := NewChannelPublisher(fsys, "data")
	require.NoError(t, err)

	rows := []models.RecommendationRow{
		{WorkID: 1, Title: "Work 1", Action: "bestv://work/detail?ID=1#a", Rank: 1},
		{WorkID: 2, Title: "Work 2", Action: "bestv://work/detail?ID=2#b", Rank: 2},
	}
	require.NoError(t, p.Replace(rows))

	got, err := p.Rows()
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	// A fresh publisher over the same filesystem sees the published rows.
	reopened, err := NewChannelPublisher(fsys, "data")
	require.NoError(t, err)
	got, err = reopened.Rows()
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestChannelPublisherEmptyBeforeFirstPublish(t *testing.T) {
	p, err := NewChannelPublisher(afero.NewMemMapFs(), "data")
	require.NoError(t, err)

	rows, err := p.Rows()
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestNewPublisherModeSelection(t *testing.T) {
	p, err := NewPublisher(ModeNotification, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &NotificationPublisher{}, p)

	p, err = NewPublisher(ModeChannel, afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	assert.IsType(t, &ChannelPublisher{}, p)

	_, err = NewPublisher(ModeChannel, afero.NewMemMapFs(), "")
	assert.ErrorIs(t, err, ErrStorageDirRequired)
}
