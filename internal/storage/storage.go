package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LJTian/TrendingThreads/internal/collector"
	"github.com/LJTian/TrendingThreads/internal/generator"
	"github.com/LJTian/TrendingThreads/internal/schedule"
)

const (
	listCacheTTL   = 5 * time.Minute
	contentMaxRune = 2000
)

// ThreadRecord is one delivered thread in the archive.
type ThreadRecord struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	RunID         string         `gorm:"size:40;uniqueIndex" json:"runId"`
	TimeSlot      string         `gorm:"size:5;index" json:"timeSlot"`
	Category      string         `gorm:"size:128" json:"category"`
	Format        string         `gorm:"size:16" json:"format"`
	Channel       string         `gorm:"size:32;index" json:"channel"`
	Content       string         `gorm:"type:text" json:"content"`
	CharCount     int            `json:"charCount"`
	SourceNews    datatypes.JSON `gorm:"type:jsonb" json:"sourceNews"`
	GeneratedAt   time.Time      `gorm:"index" json:"generatedAt"`
	PublishedDate string         `gorm:"size:10;index" json:"publishedDate"` // YYYY-MM-DD in the schedule zone

	CreatedAt time.Time `json:"createdAt"`
}

// Store archives delivered threads in Postgres with an optional Redis list cache.
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
	loc   *time.Location
}

func NewStore(dsn string, rdb *redis.Client, loc *time.Location) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&ThreadRecord{}); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Store{DB: db, Redis: rdb, loc: loc}, nil
}

// toValidUTF8 keeps scraped text from breaking Postgres text columns.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// toRecord converts a delivered thread into its archive row.
func toRecord(th *generator.Thread, channel string, loc *time.Location) (ThreadRecord, error) {
	news, err := json.Marshal(th.SourceNews)
	if err != nil {
		return ThreadRecord{}, fmt.Errorf("encode source news: %w", err)
	}
	generated, err := time.Parse(time.RFC3339, th.GeneratedAt)
	if err != nil {
		generated = time.Now()
	}
	return ThreadRecord{
		RunID:         th.RunID,
		TimeSlot:      th.TimeSlot,
		Category:      toValidUTF8(th.Category),
		Format:        string(th.Format),
		Channel:       channel,
		Content:       truncateRunesDB(toValidUTF8(th.Content), contentMaxRune),
		CharCount:     th.CharCount,
		SourceNews:    datatypes.JSON(news),
		GeneratedAt:   generated,
		PublishedDate: generated.In(loc).Format("2006-01-02"),
	}, nil
}

// Thread converts the row back into the generator shape.
func (r ThreadRecord) Thread() generator.Thread {
	var news []collector.NewsItem
	if len(r.SourceNews) > 0 {
		if err := json.Unmarshal(r.SourceNews, &news); err != nil {
			slog.Warn("decode archived source news failed", "run_id", r.RunID, "error", err)
		}
	}
	return generator.Thread{
		RunID:       r.RunID,
		TimeSlot:    r.TimeSlot,
		Category:    r.Category,
		Format:      schedule.Format(r.Format),
		Content:     r.Content,
		SourceNews:  news,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		CharCount:   r.CharCount,
	}
}

// SaveThread archives th; the run id makes repeated saves idempotent.
func (s *Store) SaveThread(th *generator.Thread, channel string) error {
	rec, err := toRecord(th, channel, s.loc)
	if err != nil {
		return err
	}
	if rec.RunID == "" {
		return s.DB.Create(&rec).Error
	}
	return s.DB.Where("run_id = ?", rec.RunID).FirstOrCreate(&rec).Error
}

// ListThreads returns the newest archived threads, optionally for one date
// (YYYY-MM-DD). Results are cached in Redis for a few minutes.
func (s *Store) ListThreads(limit int, date string) ([]ThreadRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("threads:list:%d:%s", limit, date)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []ThreadRecord
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []ThreadRecord
	db := s.DB.Model(&ThreadRecord{})
	if date != "" {
		db = db.Where("published_date = ?", date)
	}
	if err := db.Order("generated_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}
	return list, nil
}
