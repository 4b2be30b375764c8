package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salon_backend/internal/loyalty"
	"salon_backend/internal/models"
	"salon_backend/internal/scheduling"
	"salon_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func perform(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var eb errorBody
	if w.Code >= 400 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eb))
	}
	return w, eb
}

// fakeClientService embeds the interface; methods it does not override panic.
type fakeClientService struct {
	services.ClientService
	redeemErr error
}

func (f *fakeClientService) RedeemMimo(id string) (*services.LoyaltyResult, error) {
	if f.redeemErr != nil {
		return nil, f.redeemErr
	}
	summary := loyalty.Summarize(6, 1)
	return &services.LoyaltyResult{
		Client:  &models.Client{ID: id, StampsEarned: 6, MimosRedeemed: 1},
		Loyalty: summary,
		Notices: []models.Notice{models.NewNotice(models.NoticeSuccess, models.NoticeMimoRedeemed, "ok")},
	}, nil
}

func TestRedeemMimoStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "redeemed", wantCode: http.StatusOK},
		{name: "nothing to redeem", err: fmt.Errorf("%w: 0 available", services.ErrNoMimosAvailable), wantCode: http.StatusConflict, wantErr: "CONFLICT"},
		{name: "unknown client", err: services.ErrClientNotFound, wantCode: http.StatusNotFound, wantErr: "NOT_FOUND"},
		{name: "database down", err: fmt.Errorf("boom"), wantCode: http.StatusInternalServerError, wantErr: "INTERNAL_SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewClientHandler(&fakeClientService{redeemErr: tt.err})
			engine := gin.New()
			engine.POST("/clients/:id/loyalty/redeem", h.RedeemMimo)

			w, eb := perform(t, engine, http.MethodPost, "/clients/c1/loyalty/redeem", "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, eb.Error.Code)
			if tt.err == nil {
				assert.Contains(t, w.Body.String(), models.NoticeMimoRedeemed)
			}
		})
	}
}

type fakeAppointmentService struct {
	services.AppointmentService
	statusErr error
	gotStatus string
	slots     []scheduling.TimeRange
	gotDur    int
}

func (f *fakeAppointmentService) ChangeStatus(id string, req services.ChangeStatusRequest) (*services.AppointmentResult, error) {
	f.gotStatus = req.Status
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &services.AppointmentResult{
		Appointment: &models.Appointment{ID: id, Status: models.AppointmentStatus(req.Status)},
		Notices:     []models.Notice{},
	}, nil
}

func (f *fakeAppointmentService) FreeSlots(_, _ string, duration int) ([]scheduling.TimeRange, error) {
	f.gotDur = duration
	return f.slots, nil
}

func TestChangeStatusErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "completed", body: `{"status":"Concluído"}`, wantCode: http.StatusOK},
		{name: "missing status", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "terminal", body: `{"status":"Agendado"}`, err: services.ErrInvalidStatusTransition, wantCode: http.StatusConflict},
		{name: "unknown", body: `{"status":"Concluído"}`, err: services.ErrAppointmentNotFound, wantCode: http.StatusNotFound},
		{name: "invalid value", body: `{"status":"x"}`, err: services.ErrAppointmentValidation, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAppointmentService{statusErr: tt.err}
			engine := gin.New()
			engine.PATCH("/appointments/:id/status", NewAppointmentHandler(svc).ChangeStatus)

			w, _ := perform(t, engine, http.MethodPatch, "/appointments/a1/status", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestFreeSlotsQueryValidation(t *testing.T) {
	svc := &fakeAppointmentService{slots: []scheduling.TimeRange{{Start: "09:00", End: "09:30"}}}
	engine := gin.New()
	engine.GET("/appointments/slots", NewAppointmentHandler(svc).FreeSlots)

	w, _ := perform(t, engine, http.MethodGet, "/appointments/slots?date=2026-04-10", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = perform(t, engine, http.MethodGet, "/appointments/slots?professional_id=p1&date=2026-04-10&duration=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = perform(t, engine, http.MethodGet, "/appointments/slots?professional_id=p1&date=2026-04-10&duration=60", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 60, svc.gotDur)
	var body struct {
		Slots []scheduling.TimeRange `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, svc.slots, body.Slots)
}

type fakeAuthService struct {
	services.AuthService
	bootstrapErr error
}

func (f *fakeAuthService) Bootstrap(req services.RegisterUserRequest) (*models.User, error) {
	if f.bootstrapErr != nil {
		return nil, f.bootstrapErr
	}
	return &models.User{ID: "u1", Username: req.Username, Role: models.RoleAdmin, IsActive: true}, nil
}

func TestBootstrap(t *testing.T) {
	body := `{"username":"dona","email":"dona@salao.com","password":"s3nha-forte","full_name":"Dona"}`
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{name: "fresh install", body: body, wantCode: http.StatusCreated},
		{name: "already bootstrapped", body: body, err: services.ErrAlreadyBootstrapped, wantCode: http.StatusForbidden},
		{name: "short password", body: `{"username":"dona","email":"dona@salao.com","password":"123","full_name":"Dona"}`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.POST("/auth/bootstrap", NewAuthHandler(&fakeAuthService{bootstrapErr: tt.err}).Bootstrap)

			w, _ := perform(t, engine, http.MethodPost, "/auth/bootstrap", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusCreated {
				assert.NotContains(t, w.Body.String(), "password")
			}
		})
	}
}
