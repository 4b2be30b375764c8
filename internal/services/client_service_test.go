package services

import (
	"testing"

	"salon_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedeemMimoRequiresAvailableMimo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newFakeClientRepo(&models.Client{ID: "c1", Name: "Ana", StampsEarned: 3})
	svc := NewClientService(repo, db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	result, err := svc.RedeemMimo("c1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Client.MimosRedeemed)
	assert.Equal(t, 0, result.Loyalty.MimosAvailable)
	require.Len(t, result.Notices, 1)
	assert.Equal(t, models.NoticeMimoRedeemed, result.Notices[0].Code)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.RedeemMimo("c1")
	assert.ErrorIs(t, err, ErrNoMimosAvailable)
	assert.Equal(t, 1, repo.clients["c1"].MimosRedeemed)
}

func TestAwardStampNotices(t *testing.T) {
	tests := []struct {
		name      string
		stamps    int
		wantCode  string
		wantCount int
	}{
		{name: "regular stamp", stamps: 4, wantCode: models.NoticeStampAwarded, wantCount: 5},
		{name: "twelfth stamp completes card", stamps: 11, wantCode: models.NoticeCardCompleted, wantCount: 12},
		{name: "second card completed", stamps: 23, wantCode: models.NoticeCardCompleted, wantCount: 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := newFakeClientRepo(&models.Client{ID: "c1", Name: "Ana", StampsEarned: tt.stamps})
			svc := NewClientService(repo, db)

			mock.ExpectBegin()
			mock.ExpectCommit()
			result, err := svc.AwardStamp("c1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, repo.clients["c1"].StampsEarned)
			require.Len(t, result.Notices, 1)
			assert.Equal(t, tt.wantCode, result.Notices[0].Code)
		})
	}
}

func TestResetCardZeroesCounters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := newFakeClientRepo(&models.Client{ID: "c1", Name: "Ana", StampsEarned: 14, MimosRedeemed: 2})
	svc := NewClientService(repo, db)

	mock.ExpectBegin()
	mock.ExpectCommit()
	result, err := svc.ResetCard("c1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Client.StampsEarned)
	assert.Equal(t, 0, result.Client.MimosRedeemed)
	assert.Equal(t, 0, repo.clients["c1"].StampsEarned)
}

func TestLoyaltyOnUnknownClient(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewClientService(newFakeClientRepo(), db)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := svc.AwardStamp("missing")
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = svc.LoyaltySummary("missing")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestCreateClientValidation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewClientService(newFakeClientRepo(), db)

	_, err := svc.CreateClient(CreateClientRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrClientValidation)

	bad := "not-an-email"
	_, err = svc.CreateClient(CreateClientRequest{Name: "Ana", Email: &bad})
	assert.ErrorIs(t, err, ErrClientValidation)

	dob := "31/12/1990"
	_, err = svc.CreateClient(CreateClientRequest{Name: "Ana", BirthDate: &dob})
	assert.ErrorIs(t, err, ErrDateFormat)

	email := "ana@example.com"
	client, err := svc.CreateClient(CreateClientRequest{Name: " Ana ", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Ana", client.Name)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, 0, client.StampsEarned)
}
