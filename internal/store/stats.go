package store

import (
	"github.com/dzuokumor/Civic-voice/internal/model"
)

// DashboardStats summarizes the corpus and revenue for the moderator
// dashboard.
type DashboardStats struct {
	TotalReports    int64           `json:"totalReports"`
	PendingReports  int64           `json:"pendingReports"`
	VerifiedReports int64           `json:"verifiedReports"`
	RejectedReports int64           `json:"rejectedReports"`
	ByCategory      []CategoryCount `json:"byCategory"`
	TotalPurchases  int64           `json:"totalPurchases"`
	RevenueCents    int64           `json:"revenueCents"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Stats computes dashboard statistics.
func (s *Store) Stats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := s.db.Model(&model.Report{}).Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}

	byStatus := []struct {
		status string
		dest   *int64
	}{
		{model.StatusPending, &stats.PendingReports},
		{model.StatusVerified, &stats.VerifiedReports},
		{model.StatusRejected, &stats.RejectedReports},
	}
	for _, c := range byStatus {
		if err := s.db.Model(&model.Report{}).Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(&model.Report{}).
		Select("category, count(*) as count").
		Where("status = ?", model.StatusVerified).
		Group("category").
		Order("count DESC").
		Scan(&stats.ByCategory).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&model.DataPurchase{}).Count(&stats.TotalPurchases).Error; err != nil {
		return nil, err
	}

	var revenue *int64
	if err := s.db.Model(&model.DataPurchase{}).Select("SUM(amount_cents)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue != nil {
		stats.RevenueCents = *revenue
	}

	return &stats, nil
}
