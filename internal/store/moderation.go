package store

import (
	"errors"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Decide applies a moderation decision to a pending report. The status write
// is a compare-and-swap on status = 'pending' inside one transaction with the
// audit log insert, so two concurrent decisions on the same report yield
// exactly one success, one Conflict and a single log entry. The caller must
// have already checked that the actor holds the moderator role.
func (s *Store) Decide(reportID, actorID, action, notes string) (*model.Report, error) {
	if action != model.ActionVerified && action != model.ActionRejected {
		return nil, validationErr("action", "must be verified or rejected")
	}

	var report model.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&model.Report{}).
			Where("id = ? AND status = ?", reportID, model.StatusPending).
			Updates(map[string]interface{}{
				"status":     action,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already decided, by this call's loser or an earlier one.
			return ErrConflict
		}

		log := model.VerificationLog{
			ID:        uuid.New().String(),
			ReportID:  reportID,
			UserID:    actorID,
			Action:    action,
			Notes:     notes,
			CreatedAt: now,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		report.Status = action
		report.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}
