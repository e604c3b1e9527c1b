package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	st := newTestStore(t)

	seedVerified(t, st, "infrastructure")
	seedVerified(t, st, "infrastructure")
	seedVerified(t, st, "public_safety")

	count, amount, err := st.Quote(store.ReportFilters{}, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, int64(150), amount)

	count, amount, err = st.Quote(store.ReportFilters{Category: "public_safety"}, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(50), amount)
}

func TestQuote_EmptyMatchIsRejected(t *testing.T) {
	st := newTestStore(t)

	// Pending reports never count.
	_, err := st.CreateReport(validReport(), nil)
	require.NoError(t, err)

	_, _, err = st.Quote(store.ReportFilters{}, 50)
	assert.True(t, store.IsValidation(err))
}

func succeededPayment(researcherID string) store.PaymentConfirmation {
	return store.PaymentConfirmation{
		IntentID:     "pi_test_1",
		Status:       "succeeded",
		AmountCents:  100,
		ResearcherID: researcherID,
		ReportCount:  2,
		Filters:      []byte(`{"category":"infrastructure"}`),
	}
}

func TestConfirmPurchase(t *testing.T) {
	st := newTestStore(t)

	purchase, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "pi_test_1", purchase.PaymentIntentID)
	assert.Equal(t, int64(100), purchase.AmountCents)
	assert.Equal(t, int64(2), purchase.ReportCount)
	assert.False(t, purchase.Expired(time.Now().UTC()))
	assert.True(t, purchase.Expired(time.Now().UTC().Add(25*time.Hour)))
}

func TestConfirmPurchase_SecondConfirmationConflicts(t *testing.T) {
	st := newTestStore(t)

	_, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", 24*time.Hour)
	require.NoError(t, err)

	_, err = st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", 24*time.Hour)
	assert.True(t, errors.Is(err, store.ErrConflict))
}

func TestConfirmPurchase_OwnerMismatch(t *testing.T) {
	st := newTestStore(t)

	_, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-2", 24*time.Hour)
	assert.True(t, errors.Is(err, store.ErrForbidden))
}

func TestConfirmPurchase_PaymentNotSucceeded(t *testing.T) {
	st := newTestStore(t)

	pc := succeededPayment("researcher-1")
	pc.Status = "requires_payment_method"
	_, err := st.ConfirmPurchase(pc, "researcher-1", 24*time.Hour)
	assert.True(t, store.IsValidation(err))
}

func TestResolvePurchase(t *testing.T) {
	st := newTestStore(t)

	seedVerified(t, st, "infrastructure")
	seedVerified(t, st, "infrastructure")
	seedVerified(t, st, "public_safety")

	purchase, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", 24*time.Hour)
	require.NoError(t, err)

	resolved, reports, err := st.ResolvePurchase(purchase.ID, "researcher-1", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, purchase.ID, resolved.ID)
	// Only verified reports in the frozen category.
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.Equal(t, "infrastructure", r.Category)
	}
}

func TestResolvePurchase_SnapshotFreezesCriteriaNotRows(t *testing.T) {
	st := newTestStore(t)

	seedVerified(t, st, "infrastructure")
	purchase, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", 24*time.Hour)
	require.NoError(t, err)

	// A report verified after purchase still matches the frozen criteria.
	seedVerified(t, st, "infrastructure")

	_, reports, err := st.ResolvePurchase(purchase.ID, "researcher-1", time.Now().UTC())
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestResolvePurchase_WrongOwnerLooksMissing(t *testing.T) {
	st := newTestStore(t)

	purchase, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", 24*time.Hour)
	require.NoError(t, err)

	_, _, err = st.ResolvePurchase(purchase.ID, "researcher-2", time.Now().UTC())
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestResolvePurchase_Expired(t *testing.T) {
	st := newTestStore(t)

	purchase, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", time.Minute)
	require.NoError(t, err)

	_, _, err = st.ResolvePurchase(purchase.ID, "researcher-1", time.Now().UTC().Add(2*time.Minute))
	assert.True(t, errors.Is(err, store.ErrExpired))
}

func TestPurgeExpiredPurchases(t *testing.T) {
	st := newTestStore(t)

	stale, err := st.ConfirmPurchase(succeededPayment("researcher-1"), "researcher-1", time.Hour)
	require.NoError(t, err)
	pc := succeededPayment("researcher-1")
	pc.IntentID = "pi_test_2"
	fresh, err := st.ConfirmPurchase(pc, "researcher-1", 24*time.Hour)
	require.NoError(t, err)

	// Only tokens expired longer ago than the retention window are purged.
	future := time.Now().UTC().Add(2*time.Hour + 30*24*time.Hour)
	purged, err := st.PurgeExpiredPurchases(30*24*time.Hour, future)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, _, err = st.ResolvePurchase(stale.ID, "researcher-1", time.Now().UTC())
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, _, err = st.ResolvePurchase(fresh.ID, "researcher-1", time.Now().UTC())
	assert.NoError(t, err)
}
