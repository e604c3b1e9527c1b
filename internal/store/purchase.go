package store

import (
	"errors"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quote counts the verified reports matching f and prices the export in
// integer minor currency units. An empty match is a Validation error: no
// token may be issued for an empty export.
func (s *Store) Quote(f ReportFilters, priceCents int64) (count int64, amountCents int64, err error) {
	err = s.db.Model(&model.Report{}).Scopes(scopeVerified(f)).Count(&count).Error
	if err != nil {
		return 0, 0, err
	}
	amountCents = count * priceCents
	if amountCents == 0 {
		return 0, 0, validationErr("filters", "no reports match the specified criteria")
	}
	return count, amountCents, nil
}

// PaymentConfirmation carries what the payment processor reported about an
// intent: its terminal status plus the metadata echoed back from Quote time.
type PaymentConfirmation struct {
	IntentID     string
	Status       string
	AmountCents  int64
	ResearcherID string
	ReportCount  int64
	Filters      []byte
}

// ConfirmPurchase turns a succeeded payment into a download token scoped to
// the filter snapshot frozen in the payment metadata. The unique index on the
// payment reference makes confirmation idempotent: a second confirmation of
// the same intent fails with Conflict instead of issuing a second token.
func (s *Store) ConfirmPurchase(pc PaymentConfirmation, actorID string, validity time.Duration) (*model.DataPurchase, error) {
	if pc.Status != "succeeded" {
		return nil, validationErr("payment_intent_id", "payment not completed")
	}
	if pc.ResearcherID != actorID {
		return nil, ErrForbidden
	}

	filters := pc.Filters
	if len(filters) == 0 {
		filters = []byte("{}")
	}

	now := time.Now().UTC()
	purchase := &model.DataPurchase{
		ID:              uuid.New().String(),
		UserID:          actorID,
		PaymentIntentID: pc.IntentID,
		AmountCents:     pc.AmountCents,
		ReportCount:     pc.ReportCount,
		Filters:         filters,
		Status:          model.PurchaseStatusCompleted,
		CreatedAt:       now,
		ExpiresAt:       now.Add(validity),
	}

	if err := s.db.Create(purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return purchase, nil
}

// ResolvePurchase exchanges a download token for the full set of verified
// reports matching its frozen criteria. The snapshot freezes the criteria,
// not the rows: resolution always re-runs the scope against current data.
func (s *Store) ResolvePurchase(tokenID, actorID string, now time.Time) (*model.DataPurchase, []model.Report, error) {
	var purchase model.DataPurchase
	err := s.db.Where("id = ? AND user_id = ?", tokenID, actorID).First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if purchase.Expired(now) {
		return nil, nil, ErrExpired
	}

	f, err := ParseFilterSnapshot(purchase.Filters)
	if err != nil {
		return nil, nil, err
	}

	var reports []model.Report
	err = s.db.Model(&model.Report{}).Scopes(scopeVerified(f)).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, nil, err
	}
	return &purchase, reports, nil
}

// PurgeExpiredPurchases hard-deletes purchase tokens whose expiry lies more
// than the retention window in the past. Reports and verification logs are
// never deleted.
func (s *Store) PurgeExpiredPurchases(retention time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-retention)
	res := s.db.Where("expires_at < ?", cutoff).Delete(&model.DataPurchase{})
	return res.RowsAffected, res.Error
}
