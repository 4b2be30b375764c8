package loyalty

import (
	"testing"
	"time"

	"salon_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := today.AddDate(0, 0, offset)
	return &d
}

func instance(id string, expiry *time.Time, credits ...models.PackageServiceCredit) models.ClientPackageInstance {
	return models.ClientPackageInstance{
		ID:           id,
		PackageID:    "pkg-" + id,
		PackageName:  "Pacote " + id,
		PurchaseDate: today.AddDate(0, -1, 0),
		ExpiryDate:   expiry,
		PaidPrice:    decimal.NewFromInt(120),
		Status:       models.PackageStatusActive,
		Services:     credits,
	}
}

func credit(serviceID string, total, remaining int) models.PackageServiceCredit {
	return models.PackageServiceCredit{ServiceID: serviceID, TotalQuantity: total, RemainingQuantity: remaining}
}

func TestConsumeCreditsDebitsCoveredService(t *testing.T) {
	pkgs := models.PackageInstances{instance("a", day(30), credit("svc-hair", 4, 4))}

	res := ConsumeCredits(pkgs, []string{"svc-hair"}, today, SoonestExpiringFirst)

	require.True(t, res.AnyConsumed())
	require.Len(t, res.Debits, 1)
	assert.Equal(t, 3, res.Packages[0].Services[0].RemainingQuantity)
	assert.Equal(t, 4, pkgs[0].Services[0].RemainingQuantity, "input must not be mutated")
	assert.Empty(t, res.UncoveredServices)
}

func TestConsumeCreditsNothingCovered(t *testing.T) {
	pkgs := models.PackageInstances{instance("a", day(30), credit("svc-nails", 2, 2))}

	res := ConsumeCredits(pkgs, []string{"svc-hair"}, today, SoonestExpiringFirst)

	assert.False(t, res.AnyConsumed())
	assert.Equal(t, []string{"svc-hair"}, res.UncoveredServices)
	assert.Equal(t, 2, res.Packages[0].Services[0].RemainingQuantity)
}

func TestConsumeCreditsSkipsIneligible(t *testing.T) {
	expired := instance("expired", day(-1), credit("svc-hair", 2, 2))
	cancelled := instance("cancelled", day(10), credit("svc-hair", 2, 2))
	cancelled.Status = models.PackageStatusCancelled
	empty := instance("empty", day(10), credit("svc-hair", 2, 0))

	res := ConsumeCredits(models.PackageInstances{expired, cancelled, empty}, []string{"svc-hair"}, today, ListOrder)

	assert.False(t, res.AnyConsumed())
}

func TestConsumeCreditsExpiringTodayIsEligible(t *testing.T) {
	pkgs := models.PackageInstances{instance("a", day(0), credit("svc-hair", 1, 1))}

	res := ConsumeCredits(pkgs, []string{"svc-hair"}, today, ListOrder)

	assert.True(t, res.AnyConsumed())
}

func TestConsumeCreditsSoonestExpiringFirst(t *testing.T) {
	pkgs := models.PackageInstances{
		instance("no-expiry", nil, credit("svc-hair", 5, 5)),
		instance("late", day(60), credit("svc-hair", 5, 5)),
		instance("soon", day(5), credit("svc-hair", 5, 5)),
	}

	res := ConsumeCredits(pkgs, []string{"svc-hair"}, today, SoonestExpiringFirst)

	require.Len(t, res.Debits, 1)
	assert.Equal(t, "soon", res.Debits[0].InstanceID)

	res = ConsumeCredits(pkgs, []string{"svc-hair"}, today, ListOrder)
	assert.Equal(t, "no-expiry", res.Debits[0].InstanceID)
}

func TestConsumeCreditsOneCreditPerServiceEntry(t *testing.T) {
	pkgs := models.PackageInstances{
		instance("a", day(5), credit("svc-hair", 3, 3)),
		instance("b", day(9), credit("svc-hair", 3, 3)),
	}

	res := ConsumeCredits(pkgs, []string{"svc-hair", "svc-hair"}, today, SoonestExpiringFirst)

	require.Len(t, res.Debits, 2)
	assert.Equal(t, 1, res.Packages[0].Services[0].RemainingQuantity)
	assert.Equal(t, 3, res.Packages[1].Services[0].RemainingQuantity)
}

func TestConsumeCreditsMarksUtilized(t *testing.T) {
	pkgs := models.PackageInstances{
		instance("a", day(5), credit("svc-hair", 2, 1), credit("svc-nails", 1, 0)),
	}

	res := ConsumeCredits(pkgs, []string{"svc-hair"}, today, SoonestExpiringFirst)

	assert.Equal(t, models.PackageStatusUsed, res.Packages[0].Status)
	assert.Equal(t, []string{"a"}, res.Utilized)
}

func TestConsumeCreditsMixedAppointment(t *testing.T) {
	pkgs := models.PackageInstances{instance("a", day(5), credit("svc-hair", 2, 2))}

	res := ConsumeCredits(pkgs, []string{"svc-hair", "svc-brows"}, today, SoonestExpiringFirst)

	assert.True(t, res.AnyConsumed(), "one covered service is enough to skip the stamp")
	assert.Equal(t, []string{"svc-brows"}, res.UncoveredServices)
}

func TestMarkExpired(t *testing.T) {
	used := instance("used", day(-3), credit("svc-hair", 1, 0))
	used.Status = models.PackageStatusUsed
	pkgs := models.PackageInstances{
		instance("old", day(-1), credit("svc-hair", 1, 1)),
		instance("fresh", day(1), credit("svc-hair", 1, 1)),
		used,
	}

	changed := MarkExpired(pkgs, today)

	assert.Equal(t, []string{"old"}, changed)
	assert.Equal(t, models.PackageStatusExpired, pkgs[0].Status)
	assert.Equal(t, models.PackageStatusActive, pkgs[1].Status)
	assert.Equal(t, models.PackageStatusUsed, pkgs[2].Status)
}
