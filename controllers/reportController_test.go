package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fixmycity-be/middlewares"
	"fixmycity-be/models"
	"fixmycity-be/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockReportStore struct {
	createFunc    func(ctx context.Context, report *models.Report) (*models.Report, error)
	getFunc       func(ctx context.Context, id string) (*models.Report, error)
	listFunc      func(ctx context.Context, opts repositories.ListOptions) ([]models.Report, int64, error)
	statusFunc    func(ctx context.Context, id, status string) (*models.Report, error)
	assignFunc    func(ctx context.Context, id, assignee string) (*models.Report, error)
	deleteFunc    func(ctx context.Context, id string) (bool, error)
	mergeVoteFunc func(ctx context.Context, id, userID string, vote int) (*models.Report, error)
	analyticsFunc func(ctx context.Context) (*repositories.Analytics, error)
	mergeCalls    int
	createCalls   int
	deleteCalls   int
}

func (m *mockReportStore) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	m.createCalls++
	return m.createFunc(ctx, report)
}

func (m *mockReportStore) GetByID(ctx context.Context, id string) (*models.Report, error) {
	return m.getFunc(ctx, id)
}

func (m *mockReportStore) List(ctx context.Context, opts repositories.ListOptions) ([]models.Report, int64, error) {
	return m.listFunc(ctx, opts)
}

func (m *mockReportStore) UpdateStatus(ctx context.Context, id, status string) (*models.Report, error) {
	return m.statusFunc(ctx, id, status)
}

func (m *mockReportStore) Assign(ctx context.Context, id, assignee string) (*models.Report, error) {
	return m.assignFunc(ctx, id, assignee)
}

func (m *mockReportStore) Delete(ctx context.Context, id string) (bool, error) {
	m.deleteCalls++
	return m.deleteFunc(ctx, id)
}

func (m *mockReportStore) MergeVote(ctx context.Context, id, userID string, vote int) (*models.Report, error) {
	m.mergeCalls++
	return m.mergeVoteFunc(ctx, id, userID, vote)
}

func (m *mockReportStore) Analytics(ctx context.Context) (*repositories.Analytics, error) {
	if m.analyticsFunc == nil {
		return &repositories.Analytics{}, nil
	}
	return m.analyticsFunc(ctx)
}

type mockBlobStore struct {
	putFunc func(ctx context.Context, data []byte, ext string) (string, error)
	calls   int
}

func (m *mockBlobStore) Put(ctx context.Context, data []byte, ext string) (string, error) {
	m.calls++
	return m.putFunc(ctx, data, ext)
}

func newReportRouter(rc *ReportController, subject string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reports", rc.Create)
	r.POST("/reports/:id/vote", func(c *gin.Context) {
		if subject != "" {
			c.Set(middlewares.CtxSubject, subject)
		}
		rc.Vote(c)
	})
	r.GET("/reports/analytics", rc.Analytics)
	r.POST("/reports/admin/assign/:id/:userId", rc.Assign)
	r.POST("/reports/admin/status/:id/:status", rc.UpdateStatus)
	r.DELETE("/reports/admin/delete/:id", rc.Delete)
	return r
}

func voteRequest(t *testing.T, r http.Handler, id string, value int) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(gin.H{"value": value})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/reports/"+id+"/vote", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVote_OutOfRangeRejectedBeforeStore(t *testing.T) {
	store := &mockReportStore{
		mergeVoteFunc: func(ctx context.Context, id, userID string, vote int) (*models.Report, error) {
			t.Fatal("store must not be touched for invalid votes")
			return nil, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "voter@example.com")

	for _, value := range []int{0, 6, -1, 100} {
		w := voteRequest(t, r, "656b5b7e9c1e4b2a3c4d5e6f", value)
		assert.Equal(t, http.StatusBadRequest, w.Code, "value %d", value)
	}
	assert.Equal(t, 0, store.mergeCalls)
}

func TestVote_DelegatesToStoreWithTokenSubject(t *testing.T) {
	var gotID, gotUser string
	var gotVote int

	store := &mockReportStore{
		mergeVoteFunc: func(ctx context.Context, id, userID string, vote int) (*models.Report, error) {
			gotID, gotUser, gotVote = id, userID, vote
			return &models.Report{
				Title:             "Pothole",
				UrgencyScore:      3,
				UrgencyVotesCount: 1,
			}, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "voter@example.com")

	w := voteRequest(t, r, "656b5b7e9c1e4b2a3c4d5e6f", 3)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "656b5b7e9c1e4b2a3c4d5e6f", gotID)
	assert.Equal(t, "voter@example.com", gotUser)
	assert.Equal(t, 3, gotVote)
	assert.Equal(t, 1, store.mergeCalls)
}

func TestVote_UnknownReport(t *testing.T) {
	store := &mockReportStore{
		mergeVoteFunc: func(ctx context.Context, id, userID string, vote int) (*models.Report, error) {
			return nil, models.ErrNotFound
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "voter@example.com")

	w := voteRequest(t, r, "656b5b7e9c1e4b2a3c4d5e6f", 3)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	store := &mockReportStore{
		createFunc: func(ctx context.Context, report *models.Report) (*models.Report, error) {
			return report, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	form := "description=broken+lamp&lat=52.1&lng=4.3"
	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.createCalls)
}

func TestCreate_InvalidCoordinates(t *testing.T) {
	store := &mockReportStore{
		createFunc: func(ctx context.Context, report *models.Report) (*models.Report, error) {
			return report, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	form := "title=Pothole&category=Road&lat=not-a-number&lng=4.3"
	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, store.createCalls)
}

func multipartReportRequest(t *testing.T, withPhoto bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Broken streetlight"))
	require.NoError(t, mw.WriteField("category", "Electricity"))
	require.NoError(t, mw.WriteField("lat", "52.37"))
	require.NoError(t, mw.WriteField("lng", "4.89"))
	if withPhoto {
		fw, err := mw.CreateFormFile("photo", "lamp.jpg")
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake-jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/reports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreate_PhotoStoredBeforePersisting(t *testing.T) {
	var stored *models.Report
	store := &mockReportStore{
		createFunc: func(ctx context.Context, report *models.Report) (*models.Report, error) {
			stored = report
			return report, nil
		},
	}
	blobs := &mockBlobStore{
		putFunc: func(ctx context.Context, data []byte, ext string) (string, error) {
			assert.Equal(t, []byte("fake-jpeg-bytes"), data)
			assert.Equal(t, ".jpg", ext)
			return "/uploads/abc123.jpg", nil
		},
	}
	rc := NewReportController(store, blobs, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartReportRequest(t, true))

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, stored)
	assert.Equal(t, "/uploads/abc123.jpg", stored.PhotoURL)
	assert.Equal(t, 1, blobs.calls)
}

func TestCreate_BlobFailureIsNonFatal(t *testing.T) {
	var stored *models.Report
	store := &mockReportStore{
		createFunc: func(ctx context.Context, report *models.Report) (*models.Report, error) {
			stored = report
			return report, nil
		},
	}
	blobs := &mockBlobStore{
		putFunc: func(ctx context.Context, data []byte, ext string) (string, error) {
			return "", errors.New("disk full")
		},
	}
	rc := NewReportController(store, blobs, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartReportRequest(t, true))

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, stored)
	assert.Empty(t, stored.PhotoURL)
}

func TestAssign_ReturnsUpdatedReport(t *testing.T) {
	store := &mockReportStore{
		assignFunc: func(ctx context.Context, id, assignee string) (*models.Report, error) {
			assert.Equal(t, "656b5b7e9c1e4b2a3c4d5e6f", id)
			assert.Equal(t, "worker-7", assignee)
			return &models.Report{Status: models.StatusAcknowledged}, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	req := httptest.NewRequest(http.MethodPost, "/reports/admin/assign/656b5b7e9c1e4b2a3c4d5e6f/worker-7", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusAcknowledged, got.Status)
}

func TestDelete_MissingReport(t *testing.T) {
	store := &mockReportStore{
		deleteFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	req := httptest.NewRequest(http.MethodDelete, "/reports/admin/delete/656b5b7e9c1e4b2a3c4d5e6f", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, store.deleteCalls)
}

func TestDelete_Existing(t *testing.T) {
	store := &mockReportStore{
		deleteFunc: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	req := httptest.NewRequest(http.MethodDelete, "/reports/admin/delete/656b5b7e9c1e4b2a3c4d5e6f", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateStatus_PermissiveStatusString(t *testing.T) {
	var gotStatus string
	store := &mockReportStore{
		statusFunc: func(ctx context.Context, id, status string) (*models.Report, error) {
			gotStatus = status
			return &models.Report{Status: models.ReportStatus(status)}, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	// The status enumeration is open: arbitrary strings pass through.
	req := httptest.NewRequest(http.MethodPost, "/reports/admin/status/656b5b7e9c1e4b2a3c4d5e6f/wontfix", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "wontfix", gotStatus)
}

func TestAnalytics_StorageErrorSurfaces(t *testing.T) {
	store := &mockReportStore{
		analyticsFunc: func(ctx context.Context) (*repositories.Analytics, error) {
			return nil, errors.New("count query failed")
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	req := httptest.NewRequest(http.MethodGet, "/reports/analytics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalytics_SummaryReturned(t *testing.T) {
	store := &mockReportStore{
		analyticsFunc: func(ctx context.Context) (*repositories.Analytics, error) {
			return &repositories.Analytics{TotalReports: 12, OpenReports: 4}, nil
		},
	}
	rc := NewReportController(store, &mockBlobStore{}, nil, zap.NewNop())
	r := newReportRouter(rc, "")

	req := httptest.NewRequest(http.MethodGet, "/reports/analytics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got repositories.Analytics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(12), got.TotalReports)
	assert.Equal(t, int64(4), got.OpenReports)
}
