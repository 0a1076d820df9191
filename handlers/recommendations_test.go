package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marcuspimenta/BESTV-sub002/models"
	"github.com/marcuspimenta/BESTV-sub002/services/recommend"
	"github.com/marcuspimenta/BESTV-sub002/services/scheduler"
)

type fakeRows struct {
	rows []models.RecommendationRow
	err  error
}

func (f *fakeRows) Rows() ([]models.RecommendationRow, error) {
	return f.rows, f.err
}

type fakeRunner struct {
	lastTag string
	err     error
}

func (f *fakeRunner) RunNow(tag string) error {
	f.lastTag = tag
	return f.err
}

func TestRecommendationRows(t *testing.T) {
	h := NewRecommendationsHandler(&fakeRows{rows: []models.RecommendationRow{
		{WorkID: 1, Title: "First", Rank: 1},
	}}, &fakeRunner{})

	rec := httptest.NewRecorder()
	h.Rows(rec, httptest.NewRequest(http.MethodGet, "/api/recommendations", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Rows []models.RecommendationRow `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Rows) != 1 || resp.Rows[0].Title != "First" {
		t.Errorf("unexpected rows: %+v", resp.Rows)
	}
}

func TestRecommendationRefreshKicksScheduledJob(t *testing.T) {
	runner := &fakeRunner{}
	h := NewRecommendationsHandler(&fakeRows{}, runner)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/recommendations/refresh", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	if runner.lastTag != recommend.Tag {
		t.Errorf("kicked tag %q, want %q", runner.lastTag, recommend.Tag)
	}
}

func TestRecommendationRefreshUnknownJob(t *testing.T) {
	h := NewRecommendationsHandler(&fakeRows{}, &fakeRunner{err: scheduler.ErrUnknownTag})

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/recommendations/refresh", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRecommendationRefreshWhileRunning(t *testing.T) {
	h := NewRecommendationsHandler(&fakeRows{}, &fakeRunner{err: scheduler.ErrTaskRunning})

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/recommendations/refresh", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestDeepLinkResolveWork(t *testing.T) {
	h := NewDeepLinkHandler()

	uri := "bestv%3A%2F%2Fwork%2Fdetail%3FID%3D550%26TITLE%3DFight%2BClub%26TYPE%3DMOVIE"
	rec := httptest.NewRecorder()
	h.Resolve(rec, httptest.NewRequest(http.MethodGet, "/api/deeplink?uri="+uri, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Feature string      `json:"feature"`
		Work    models.Work `json:"work"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Feature != "work" || resp.Work.ID != 550 || resp.Work.Title != "Fight Club" {
		t.Errorf("unexpected resolution: %+v", resp)
	}
}

func TestDeepLinkResolveRejectsForeignScheme(t *testing.T) {
	h := NewDeepLinkHandler()

	rec := httptest.NewRecorder()
	h.Resolve(rec, httptest.NewRequest(http.MethodGet, "/api/deeplink?uri=https%3A%2F%2Fexample.com", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeepLinkResolveRequiresURI(t *testing.T) {
	h := NewDeepLinkHandler()

	rec := httptest.NewRecorder()
	h.Resolve(rec, httptest.NewRequest(http.MethodGet, "/api/deeplink", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTasksList(t *testing.T) {
	h := NewTasksHandler(fakeJobs{{Tag: "recommendation-update", LastStatus: scheduler.StatusSuccess}})

	rec := httptest.NewRecorder()
	h.ListTasks(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Tasks []scheduler.JobStatus `json:"tasks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].Tag != "recommendation-update" {
		t.Errorf("unexpected tasks: %+v", resp.Tasks)
	}
}

type fakeJobs []scheduler.JobStatus

func (f fakeJobs) Jobs() []scheduler.JobStatus { return f }
