package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"steam-catalog/internal/jobs"
	"steam-catalog/internal/models"
	"steam-catalog/internal/services"
)

type APIHandler struct {
	db         *gorm.DB
	dispatcher jobs.Dispatcher
	importer   *services.Importer

	// import job state
	jobMu     sync.Mutex
	importJob *importJob
}

type importJob struct {
	Running    bool                   `json:"running"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt *time.Time             `json:"finished_at"`
	Result     *services.ImportResult `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, dispatcher jobs.Dispatcher, importer *services.Importer) *APIHandler {
	handler := &APIHandler{
		db:         db,
		dispatcher: dispatcher,
		importer:   importer,
	}

	apps := r.Group("/apps")
	{
		apps.GET("", handler.ListApps)
		apps.GET("/:appid", handler.GetApp)
		apps.GET("/:appid/news", handler.ListAppNews)
		apps.GET("/:appid/workshop", handler.ListAppWorkshopItems)

		apps.POST("/:appid/fetch-details", handler.TriggerFetchDetails)
		apps.POST("/:appid/fetch-news", handler.TriggerFetchNews)
		apps.POST("/:appid/fetch-workshop", handler.TriggerFetchWorkshop)
	}

	r.POST("/import", handler.StartImport)
	imp := r.Group("/import")
	{
		imp.POST("/start", handler.StartImport)
		imp.GET("/status", handler.ImportStatus)
	}

	return handler
}

// ListApps: GET /api/v1/apps?search=&type=game&page=1&page_size=20
func (h *APIHandler) ListApps(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	appType := strings.TrimSpace(c.Query("type"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 20
	}

	q := h.db.Model(&models.SteamApp{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR CAST(appid AS CHAR) LIKE ?", like, like)
	}
	if appType != "" {
		q = q.Joins("JOIN steam_app_details ON steam_app_details.steam_app_id = steam_apps.id").
			Where("steam_app_details.type = ?", appType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	var apps []models.SteamApp
	err := q.Preload("Detail").Preload("PriceInfo").
		Order("steam_apps.appid ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&apps).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "ok",
		"data": gin.H{
			"items":     apps,
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

// GetApp: GET /api/v1/apps/:appid with every nested collection preloaded.
func (h *APIHandler) GetApp(c *gin.Context) {
	appid, ok := h.parseAppid(c)
	if !ok {
		return
	}

	var app models.SteamApp
	err := h.db.
		Preload("Detail").
		Preload("PriceInfo").
		Preload("Requirements").
		Preload("Screenshots").
		Preload("Movies").
		Preload("Dlcs").
		Preload("Demos").
		Preload("Packages").
		Preload("PackageGroups.Subs").
		Preload("Achievements").
		Preload("Descriptors").
		Preload("Ratings").
		Preload("Categories").
		Preload("Genres").
		Preload("Developers").
		Preload("Publishers").
		Where("appid = ?", appid).
		First(&app).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": "ok", "data": app})
}

// ListAppNews: GET /api/v1/apps/:appid/news?page=1&page_size=20
func (h *APIHandler) ListAppNews(c *gin.Context) {
	appid, ok := h.parseAppid(c)
	if !ok {
		return
	}

	app, found := h.findApp(c, appid)
	if !found {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	q := h.db.Model(&models.SteamAppNews{}).Where("steam_app_id = ?", app.ID)
	_ = q.Count(&total).Error

	var news []models.SteamAppNews
	err := q.Order("date DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&news).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "ok",
		"data": gin.H{"items": news, "page": page, "page_size": pageSize, "total": total},
	})
}

// ListAppWorkshopItems: GET /api/v1/apps/:appid/workshop?page=1&page_size=20
func (h *APIHandler) ListAppWorkshopItems(c *gin.Context) {
	appid, ok := h.parseAppid(c)
	if !ok {
		return
	}

	app, found := h.findApp(c, appid)
	if !found {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	q := h.db.Model(&models.SteamAppWorkshopItem{}).Where("steam_app_id = ?", app.ID)
	_ = q.Count(&total).Error

	var items []models.SteamAppWorkshopItem
	err := q.Order("subscriptions DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  "ok",
		"data": gin.H{"items": items, "page": page, "page_size": pageSize, "total": total},
	})
}

func (h *APIHandler) TriggerFetchDetails(c *gin.Context) {
	h.triggerJob(c, jobs.KindDetails, "")
}

func (h *APIHandler) TriggerFetchNews(c *gin.Context) {
	h.triggerJob(c, jobs.KindNews, "")
}

func (h *APIHandler) TriggerFetchWorkshop(c *gin.Context) {
	h.triggerJob(c, jobs.KindWorkshop, services.FirstWorkshopCursor)
}

func (h *APIHandler) triggerJob(c *gin.Context, kind jobs.Kind, cursor string) {
	appid, ok := h.parseAppid(c)
	if !ok {
		return
	}

	if _, found := h.findApp(c, appid); !found {
		return
	}

	err := h.dispatcher.Dispatch(jobs.Job{Kind: kind, Appid: appid, Cursor: cursor})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"code": 200, "msg": "queued", "data": gin.H{"kind": kind, "appid": appid}})
}

// StartImport: POST /api/v1/import/start runs one full import pass in the
// background. A second start while one is running is rejected.
func (h *APIHandler) StartImport(c *gin.Context) {
	h.jobMu.Lock()
	if h.importJob != nil && h.importJob.Running {
		st := *h.importJob
		h.jobMu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "import already running", "status": st})
		return
	}
	job := &importJob{Running: true, StartedAt: time.Now()}
	h.importJob = job
	h.jobMu.Unlock()

	go h.runImportJob(job)
	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": "started", "status": job})
}

func (h *APIHandler) ImportStatus(c *gin.Context) {
	h.jobMu.Lock()
	var st *importJob
	if h.importJob != nil {
		cp := *h.importJob
		st = &cp
	}
	h.jobMu.Unlock()

	if st == nil {
		c.JSON(http.StatusOK, gin.H{"code": 200, "status": gin.H{"running": false}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "status": st})
}

func (h *APIHandler) runImportJob(job *importJob) {
	result, err := h.importer.Import(context.Background())

	h.jobMu.Lock()
	defer h.jobMu.Unlock()
	if h.importJob != job {
		return
	}
	now := time.Now()
	job.Running = false
	job.FinishedAt = &now
	job.Result = result
	if err != nil {
		job.Error = err.Error()
	}
}

func (h *APIHandler) parseAppid(c *gin.Context) (uint, bool) {
	appid, err := strconv.ParseUint(c.Param("appid"), 10, 32)
	if err != nil || appid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appid"})
		return 0, false
	}
	return uint(appid), true
}

func (h *APIHandler) findApp(c *gin.Context, appid uint) (*models.SteamApp, bool) {
	var app models.SteamApp
	err := h.db.Where("appid = ?", appid).First(&app).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return nil, false
	}
	return &app, true
}
