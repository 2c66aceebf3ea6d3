package controllers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"fixmycity-be/cache"
	"fixmycity-be/middlewares"
	"fixmycity-be/models"
	"fixmycity-be/repositories"
	"fixmycity-be/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const analyticsCacheKey = "analytics:reports"

// ReportStore is the report repository surface the handlers call.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) (*models.Report, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, opts repositories.ListOptions) ([]models.Report, int64, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Report, error)
	Assign(ctx context.Context, id, assignee string) (*models.Report, error)
	Delete(ctx context.Context, id string) (bool, error)
	MergeVote(ctx context.Context, id, userID string, vote int) (*models.Report, error)
	Analytics(ctx context.Context) (*repositories.Analytics, error)
}

type ReportController struct {
	reports ReportStore
	blobs   storage.BlobStore
	cache   *cache.Cache
	log     *zap.Logger
}

func NewReportController(reports ReportStore, blobs storage.BlobStore, cache *cache.Cache, log *zap.Logger) *ReportController {
	return &ReportController{reports: reports, blobs: blobs, cache: cache, log: log}
}

// Create handles report submission: multipart form with title, category,
// lat, lng, an optional description, and an optional photo. Open to anyone.
// A failing photo upload is non-fatal; the report just goes in without one.
func (rc *ReportController) Create(c *gin.Context) {
	title := c.PostForm("title")
	category := c.PostForm("category")
	if title == "" || category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and category are required"})
		return
	}
	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	lat, latErr := strconv.ParseFloat(c.PostForm("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.PostForm("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required and must be numbers"})
		return
	}

	report := models.Report{
		Title:       title,
		Description: c.PostForm("description"),
		Category:    models.ReportCategory(category),
		Location:    models.Location{Lat: lat, Lng: lng},
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if fileHeader, err := c.FormFile("photo"); err == nil {
		if url, err := rc.storePhoto(ctx, fileHeader); err != nil {
			rc.log.Warn("photo upload failed, creating report without photo", zap.Error(err))
		} else {
			report.PhotoURL = url
		}
	}

	created, err := rc.reports.Create(ctx, &report)
	if err != nil {
		rc.log.Error("creating report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create report"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (rc *ReportController) storePhoto(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return rc.blobs.Put(ctx, data, filepath.Ext(fileHeader.Filename))
}

// List returns a filtered, paginated page of reports. Authenticated callers
// of any role.
func (rc *ReportController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	opts := repositories.ListOptions{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", "newest"),
		Page:     page,
		Limit:    limit,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	reports, total, err := rc.reports.List(ctx, opts)
	if err != nil {
		rc.log.Error("listing reports failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reports"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	c.JSON(http.StatusOK, gin.H{
		"reports":      reports,
		"totalReports": total,
		"totalPages":   totalPages,
		"currentPage":  page,
	})
}

// Get returns a single report by ID.
func (rc *ReportController) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	report, err := rc.reports.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		rc.log.Error("retrieving report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Vote records the caller's 1..5 urgency rating. The voter identity comes
// from the verified token, and the range check runs before any store call.
func (rc *ReportController) Vote(c *gin.Context) {
	subject, exists := c.Get(middlewares.CtxSubject)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Value int `json:"value"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Value < models.MinUrgency || input.Value > models.MaxUrgency {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrVoteOutOfRange.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	report, err := rc.reports.MergeVote(ctx, c.Param("id"), subject.(string), input.Value)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		rc.log.Error("merging vote failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "report": report})
}

// Assign sets the assignee and acknowledges the report. Admin only (enforced
// by middleware before this handler runs).
func (rc *ReportController) Assign(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	report, err := rc.reports.Assign(ctx, c.Param("id"), c.Param("userId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		rc.log.Error("assigning report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateStatus sets any status string. Admin only.
func (rc *ReportController) UpdateStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	report, err := rc.reports.UpdateStatus(ctx, c.Param("id"), c.Param("status"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		rc.log.Error("updating status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// Delete removes a report permanently. Admin only.
func (rc *ReportController) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	id := c.Param("id")
	existed, err := rc.reports.Delete(ctx, id)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		rc.log.Error("deleting report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}
	if err != nil || !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": id})
}

// Analytics serves the triage dashboard summary, cached in Redis for a
// minute when Redis is configured.
func (rc *ReportController) Analytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var cached repositories.Analytics
	if rc.cache.Get(ctx, analyticsCacheKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	analytics, err := rc.reports.Analytics(ctx)
	if err != nil {
		rc.log.Error("computing analytics failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}

	rc.cache.Set(ctx, analyticsCacheKey, analytics)
	c.JSON(http.StatusOK, analytics)
}
