package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/pipeline"
	"github.com/LJTian/TrendingThreads/internal/schedule"
	"github.com/LJTian/TrendingThreads/internal/storage"
)

// ThreadLog reads back a day of delivered threads.
type ThreadLog interface {
	Day(t time.Time) ([]generator.Thread, error)
}

// Archive lists archived threads; optional.
type Archive interface {
	ListThreads(limit int, date string) ([]storage.ThreadRecord, error)
}

// Trigger runs the pipeline once for the current slot.
type Trigger interface {
	RunOnce(ctx context.Context) (*generator.Thread, error)
}

type Server struct {
	schedule *schedule.Schedule
	log      ThreadLog
	archive  Archive
	trigger  Trigger
	now      func() time.Time
}

func NewServer(sched *schedule.Schedule, log ThreadLog, archive Archive, trigger Trigger) *Server {
	return &Server{schedule: sched, log: log, archive: archive, trigger: trigger, now: time.Now}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/schedule", s.getSchedule)
		v1.GET("/threads", s.listThreads)
		v1.POST("/run", s.run)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type slotView struct {
	Label    string          `json:"label"`
	Category string          `json:"category"`
	Format   schedule.Format `json:"format"`
	Sources  []string        `json:"sources"`
}

func (s *Server) getSchedule(c *gin.Context) {
	slots := s.schedule.Slots()
	views := make([]slotView, 0, len(slots))
	for _, sl := range slots {
		names := make([]string, 0, len(sl.Sources))
		for _, src := range sl.Sources {
			names = append(names, src.Kind().String()+":"+src.Label())
		}
		views = append(views, slotView{Label: sl.Label, Category: sl.Category, Format: sl.Format, Sources: names})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data": gin.H{
			"timezone": s.schedule.Location().String(),
			"current":  s.schedule.Resolve(s.now()).Label,
			"slots":    views,
		},
	})
}

func (s *Server) listThreads(c *gin.Context) {
	date := c.Query("date")

	if c.Query("source") == "archive" {
		if s.archive == nil {
			c.JSON(http.StatusNotFound, gin.H{"code": "not_configured", "message": "archive is not configured"})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil || limit <= 0 {
			limit = 20
		}
		items, err := s.archive.ListThreads(limit, date)
		if err != nil {
			internalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": items})
		return
	}

	day := s.now().In(s.schedule.Location())
	if date != "" {
		t, err := time.ParseInLocation("2006-01-02", date, s.schedule.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": "date must be YYYY-MM-DD"})
			return
		}
		day = t
	}
	threads, err := s.log.Day(day)
	if err != nil {
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": threads})
}

// runTimeout bounds a manually triggered run, matching the scheduled path.
const runTimeout = 5 * time.Minute

func (s *Server) run(c *gin.Context) {
	// A client hanging up must not abort the run half way through delivery.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), runTimeout)
	defer cancel()

	th, err := s.trigger.RunOnce(ctx)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, pipeline.ErrNoNews) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"code": "run_failed", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": th})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
