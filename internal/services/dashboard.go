package services

import (
	"github.com/codingclub/hackportal/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStats struct {
	TotalUsers       int64 `json:"total_users"`
	VerifiedUsers    int64 `json:"verified_users"`
	TotalTeams       int64 `json:"total_teams"`
	FullTeams        int64 `json:"full_teams"`
	TeamlessUsers    int64 `json:"teamless_users"`
	PendingRequests  int64 `json:"pending_requests"`
	PendingResources int64 `json:"pending_resources"`
	TotalResources   int64 `json:"total_resources"`
	TotalIdeas       int64 `json:"total_ideas"`
	TotalUpdates     int64 `json:"total_updates"`
}

type TeamSizeStat struct {
	Size  int   `json:"size"`
	Count int64 `json:"count"`
}

type DashboardResponse struct {
	Stats     DashboardStats `json:"stats"`
	TeamSizes []TeamSizeStat `json:"team_sizes"`
}

// GetStats rolls up the counters for the admin dashboard.
func (s *DashboardService) GetStats() (*DashboardResponse, error) {
	var stats DashboardStats

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("is_verified = ?", true).Count(&stats.VerifiedUsers)
	s.db.Model(&models.Team{}).Count(&stats.TotalTeams)
	s.db.Model(&models.User{}).Where("team_id IS NULL").Count(&stats.TeamlessUsers)
	s.db.Model(&models.JoinRequest{}).Count(&stats.PendingRequests)
	s.db.Model(&models.Resource{}).Where("status = ?", models.ResourceStatusPending).Count(&stats.PendingResources)
	s.db.Model(&models.Resource{}).Count(&stats.TotalResources)
	s.db.Model(&models.Idea{}).Count(&stats.TotalIdeas)
	s.db.Model(&models.Update{}).Count(&stats.TotalUpdates)

	var sizes []TeamSizeStat
	rows, err := s.db.Model(&models.User{}).
		Select("COUNT(*) as members").
		Where("team_id IS NOT NULL").
		Group("team_id").
		Rows()
	if err == nil {
		defer rows.Close()
		bySize := make(map[int]int64)
		for rows.Next() {
			var members int
			if err := rows.Scan(&members); err == nil {
				bySize[members]++
			}
		}
		for size := 1; size <= models.MaxTeamSize; size++ {
			if count, ok := bySize[size]; ok {
				sizes = append(sizes, TeamSizeStat{Size: size, Count: count})
				if size == models.MaxTeamSize {
					stats.FullTeams = count
				}
			}
		}
	}

	return &DashboardResponse{Stats: stats, TeamSizes: sizes}, nil
}
