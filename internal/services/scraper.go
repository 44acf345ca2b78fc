package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/codingclub/hackportal/internal/config"
	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/logger"
	"github.com/codingclub/hackportal/pkg/response"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ScraperService imports announcements from the external feed on a cron
// schedule. Each feed item is content-addressed by hash so re-running the
// import, or overlapping feed windows, never duplicates an update.
type ScraperService struct {
	db            *gorm.DB
	cfg           *config.ScraperConfig
	client        *http.Client
	cronScheduler *cron.Cron
}

func NewScraperService(db *gorm.DB, cfg *config.ScraperConfig) *ScraperService {
	return &ScraperService{
		db:     db,
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// feedItem is one entry of the external announcement feed.
type feedItem struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"` // RFC 3339
}

// ScrapeResult summarizes one import run.
type ScrapeResult struct {
	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (s *ScraperService) StartScheduler() {
	if !s.cfg.Enabled || s.cfg.FeedURL == "" {
		logger.Infof("[Scraper] Disabled, scheduler not started")
		return
	}

	s.cronScheduler = cron.New()

	if _, err := s.cronScheduler.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.Run(); err != nil {
			logger.Warnf("[Scraper] Import run failed: %v", err)
		}
	}); err != nil {
		logger.Warnf("[Scraper] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[Scraper] Scheduler started (cron: %s)", s.cfg.Schedule)
}

func (s *ScraperService) StopScheduler() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// Run fetches the feed once and imports new items. Also invoked on demand by
// the admin trigger endpoint.
func (s *ScraperService) Run() (*ScrapeResult, error) {
	if s.cfg.FeedURL == "" {
		return nil, response.NewBadRequest("no feed URL configured")
	}

	items, err := s.fetch()
	if err != nil {
		return nil, err
	}

	result := &ScrapeResult{Fetched: len(items)}
	for i := range items {
		imported, err := s.importItem(&items[i])
		if err != nil {
			logger.Warnf("[Scraper] Failed to import %q: %v", items[i].Title, err)
			continue
		}
		if imported {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	logger.Infof("[Scraper] Run complete: fetched=%d imported=%d skipped=%d",
		result.Fetched, result.Imported, result.Skipped)
	LogInfo("scraper", "import", fmt.Sprintf("feed import: fetched=%d imported=%d skipped=%d",
		result.Fetched, result.Imported, result.Skipped), nil, "", "", nil)
	return result, nil
}

func (s *ScraperService) fetch() ([]feedItem, error) {
	resp, err := s.client.Get(s.cfg.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var items []feedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return items, nil
}

// importItem stores one feed item unless its hash is already present.
// Returns true when a new update was created.
func (s *ScraperService) importItem(item *feedItem) (bool, error) {
	if item.Title == "" {
		return false, nil
	}

	hash := ComputeSourceHash(item.Title, item.URL, item.PublishedAt)

	var count int64
	if err := s.db.Model(&models.Update{}).Where("source_hash = ?", hash).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	publishedAt := time.Now()
	if item.PublishedAt != "" {
		if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			publishedAt = t
		}
	}

	update := models.Update{
		Title:       item.Title,
		Body:        item.Body,
		URL:         item.URL,
		Source:      models.UpdateSourceScraped,
		SourceHash:  hash,
		PublishedAt: publishedAt,
	}
	if err := s.db.Create(&update).Error; err != nil {
		// a concurrent run may have inserted the same hash
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ComputeSourceHash content-addresses a feed item by its identifying fields.
func ComputeSourceHash(title, url, publishedAt string) string {
	sum := sha256.Sum256([]byte(title + "|" + url + "|" + publishedAt))
	return hex.EncodeToString(sum[:])
}
