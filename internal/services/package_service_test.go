package services

import (
	"testing"
	"time"

	"salon_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type packageFixture struct {
	svc     PackageService
	clients *fakeClientRepo
	catalog *fakeCatalogRepo
	finance *fakeFinanceRepo
}

func newPackageFixture(t *testing.T, client *models.Client) (*packageFixture, func()) {
	db, mock := newMockDB(t)
	f := &packageFixture{
		clients: newFakeClientRepo(client),
		catalog: newFakeCatalogRepo(),
		finance: &fakeFinanceRepo{},
	}
	f.catalog.packages["p-hair"] = models.Package{
		ID:           "p-hair",
		Name:         "Hidratação x4",
		Price:        decimal.RequireFromString("120.00"),
		ValidityDays: 90,
		Active:       true,
		Items:        models.PackageItems{{ServiceID: "s-hidra", Quantity: 4}},
	}
	f.svc = NewPackageService(f.clients, f.catalog, f.finance, db, testConfig())
	return f, func() {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func TestSellPackageRecordsIncomeAndStamp(t *testing.T) {
	f, expectTx := newPackageFixture(t, &models.Client{ID: "c1", Name: "Ana"})
	expectTx()

	paid := "120,00"
	purchase := "2026-03-01"
	result, err := f.svc.SellPackage("c1", SellPackageRequest{PackageID: "p-hair", PaidPrice: &paid, PurchaseDate: &purchase})
	require.NoError(t, err)

	stored := f.clients.clients["c1"]
	require.Len(t, stored.PurchasedPackages, 1)
	inst := stored.PurchasedPackages[0]
	assert.Equal(t, models.PackageStatusActive, inst.Status)
	assert.Nil(t, inst.OriginalPrice)
	require.Len(t, inst.Services, 1)
	assert.Equal(t, 4, inst.Services[0].TotalQuantity)
	assert.Equal(t, 4, inst.Services[0].RemainingQuantity)
	require.NotNil(t, inst.ExpiryDate)
	assert.Equal(t, "2026-05-30", inst.ExpiryDate.Format("2006-01-02"))

	require.Len(t, f.finance.entries, 1)
	entry := f.finance.entries[0]
	assert.Equal(t, models.TransactionIncome, entry.Type)
	assert.Equal(t, models.CategoryPackageSale, entry.Category)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("120.00")), entry.Amount.String())
	require.NotNil(t, entry.ReferenceID)
	assert.Equal(t, inst.ID, *entry.ReferenceID)

	assert.Equal(t, 1, stored.StampsEarned)
	assert.Equal(t, 1, result.Loyalty.StampsEarned)
	assert.Len(t, result.Notices, 2)
}

func TestSellPackageWithPriceOverrideKeepsOriginal(t *testing.T) {
	f, expectTx := newPackageFixture(t, &models.Client{ID: "c1", Name: "Ana"})
	expectTx()

	paid := "99,90"
	result, err := f.svc.SellPackage("c1", SellPackageRequest{PackageID: "p-hair", PaidPrice: &paid})
	require.NoError(t, err)
	require.NotNil(t, result.Instance.OriginalPrice)
	assert.True(t, result.Instance.OriginalPrice.Equal(decimal.RequireFromString("120")))
	assert.True(t, result.Instance.PaidPrice.Equal(decimal.RequireFromString("99.90")))
	assert.True(t, f.finance.entries[0].Amount.Equal(decimal.RequireFromString("99.90")))
}

func TestSellPackageRejectsInactivePackage(t *testing.T) {
	db, mock := newMockDB(t)
	catalog := newFakeCatalogRepo()
	catalog.packages["p-old"] = models.Package{ID: "p-old", Name: "Antigo", Items: models.PackageItems{{ServiceID: "s", Quantity: 1}}}
	finance := &fakeFinanceRepo{}
	clients := newFakeClientRepo(&models.Client{ID: "c1", Name: "Ana"})
	svc := NewPackageService(clients, catalog, finance, db, testConfig())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.SellPackage("c1", SellPackageRequest{PackageID: "p-old"})
	assert.ErrorIs(t, err, ErrPackageInactive)
	assert.Empty(t, finance.entries)
	assert.Equal(t, 0, clients.clients["c1"].StampsEarned)
}

func TestSellPackageRejectsBadAmountBeforeTransaction(t *testing.T) {
	f, _ := newPackageFixture(t, &models.Client{ID: "c1", Name: "Ana"})
	paid := "cento e vinte"
	_, err := f.svc.SellPackage("c1", SellPackageRequest{PackageID: "p-hair", PaidPrice: &paid})
	assert.ErrorIs(t, err, ErrSaleValidation)
}

func soldInstance(id string, paid string) models.ClientPackageInstance {
	return models.ClientPackageInstance{
		ID:           id,
		PackageID:    "p-hair",
		PackageName:  "Hidratação x4",
		PurchaseDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		PaidPrice:    decimal.RequireFromString(paid),
		Status:       models.PackageStatusActive,
		Services:     []models.PackageServiceCredit{{ServiceID: "s-hidra", TotalQuantity: 4, RemainingQuantity: 4}},
	}
}

func TestDeletePackageInstanceRefundsAndRevertsStamp(t *testing.T) {
	tests := []struct {
		name       string
		stamps     int
		wantStamps int
	}{
		{name: "removes one stamp", stamps: 5, wantStamps: 4},
		{name: "floors at zero", stamps: 0, wantStamps: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &models.Client{
				ID: "c1", Name: "Ana", StampsEarned: tt.stamps,
				PurchasedPackages: models.PackageInstances{soldInstance("i1", "120.00"), soldInstance("i2", "80.00")},
			}
			f, expectTx := newPackageFixture(t, client)
			expectTx()

			result, err := f.svc.DeletePackageInstance("c1", "i1")
			require.NoError(t, err)

			stored := f.clients.clients["c1"]
			require.Len(t, stored.PurchasedPackages, 1)
			assert.Equal(t, "i2", stored.PurchasedPackages[0].ID)
			assert.Equal(t, tt.wantStamps, stored.StampsEarned)

			require.Len(t, f.finance.entries, 1)
			entry := f.finance.entries[0]
			assert.Equal(t, models.TransactionExpense, entry.Type)
			assert.Equal(t, models.CategoryPackageRefund, entry.Category)
			assert.True(t, entry.Amount.Equal(decimal.RequireFromString("120.00")))
			assert.Equal(t, "i1", result.Instance.ID)
		})
	}
}

func TestDeletePartiallyUsedPackageWarns(t *testing.T) {
	inst := soldInstance("i1", "120.00")
	inst.Services[0].RemainingQuantity = 1
	client := &models.Client{ID: "c1", Name: "Ana", StampsEarned: 3, PurchasedPackages: models.PackageInstances{inst}}
	f, expectTx := newPackageFixture(t, client)
	expectTx()

	result, err := f.svc.DeletePackageInstance("c1", "i1")
	require.NoError(t, err)

	var codes []string
	for _, n := range result.Notices {
		codes = append(codes, n.Code)
	}
	assert.Contains(t, codes, models.NoticePartialReversal)
	require.Len(t, f.finance.entries, 1)
	assert.True(t, f.finance.entries[0].Amount.Equal(decimal.RequireFromString("120.00")), "full paid price is refunded")
}

func TestDeletePackageAfterRedemptionKeepsAvailableAtZero(t *testing.T) {
	client := &models.Client{ID: "c1", Name: "Ana", StampsEarned: 3, MimosRedeemed: 1,
		PurchasedPackages: models.PackageInstances{soldInstance("i1", "90.00")}}
	f, expectTx := newPackageFixture(t, client)
	expectTx()

	result, err := f.svc.DeletePackageInstance("c1", "i1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Loyalty.StampsEarned)
	assert.Equal(t, 1, result.Loyalty.MimosRedeemed)
	assert.Equal(t, 0, result.Loyalty.MimosEarnedTotal)
	assert.GreaterOrEqual(t, result.Loyalty.MimosAvailable, 0)
	assert.Equal(t, 0, result.Loyalty.MimosAvailable)

	var codes []string
	for _, n := range result.Notices {
		codes = append(codes, n.Code)
	}
	assert.Contains(t, codes, models.NoticeMimosOverdrawn)
}

func TestDeletePackageInstanceUnknownInstance(t *testing.T) {
	db, mock := newMockDB(t)
	clients := newFakeClientRepo(&models.Client{ID: "c1", Name: "Ana", PurchasedPackages: models.PackageInstances{soldInstance("i1", "10")}})
	finance := &fakeFinanceRepo{}
	svc := NewPackageService(clients, newFakeCatalogRepo(), finance, db, testConfig())

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.DeletePackageInstance("c1", "nope")
	assert.ErrorIs(t, err, ErrPackageInstanceNotFound)
	assert.Empty(t, finance.entries)
}

func TestExpireOverduePackages(t *testing.T) {
	db, mock := newMockDB(t)
	past := time.Now().UTC().AddDate(0, 0, -3)
	future := time.Now().UTC().AddDate(0, 1, 0)

	overdue := soldInstance("i-old", "50")
	overdue.ExpiryDate = &past
	current := soldInstance("i-new", "50")
	current.ExpiryDate = &future
	used := soldInstance("i-used", "50")
	used.ExpiryDate = &past
	used.Status = models.PackageStatusUsed

	clients := newFakeClientRepo(
		&models.Client{ID: "c1", Name: "Ana", PurchasedPackages: models.PackageInstances{overdue, current}},
		&models.Client{ID: "c2", Name: "Bia", PurchasedPackages: models.PackageInstances{used}},
	)
	svc := NewPackageService(clients, newFakeCatalogRepo(), &fakeFinanceRepo{}, db, testConfig())

	mock.ExpectBegin()
	mock.ExpectCommit()
	result, err := svc.ExpireOverduePackages()
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClientsUpdated)
	assert.Equal(t, 1, result.InstancesExpired)

	pkgs := clients.clients["c1"].PurchasedPackages
	assert.Equal(t, models.PackageStatusExpired, pkgs[pkgs.Find("i-old")].Status)
	assert.Equal(t, models.PackageStatusActive, pkgs[pkgs.Find("i-new")].Status)
	assert.Equal(t, models.PackageStatusUsed, clients.clients["c2"].PurchasedPackages[0].Status)
}
