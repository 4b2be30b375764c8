package services

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"salon_backend/internal/config"
	"salon_backend/internal/models"
	"salon_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a sqlmock-backed *sql.DB; the fakes below never issue SQL,
// so only transaction boundaries hit the mock.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		Location: time.UTC,
		Schedule: config.ScheduleConfig{
			OpeningTime:         "09:00",
			ClosingTime:         "18:00",
			SlotIntervalMinutes: 30,
			MaxRecurrences:      52,
		},
	}
}

// --- clients ---

type fakeClientRepo struct {
	clients map[string]*models.Client
	writes  int
}

func newFakeClientRepo(clients ...*models.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: map[string]*models.Client{}}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *fakeClientRepo) copyOf(id string) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	cp.PurchasedPackages = c.PurchasedPackages.Clone()
	return &cp, nil
}

func (r *fakeClientRepo) CreateClient(_ repositories.SQLExecutor, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) GetClientByID(id string) (*models.Client, error) { return r.copyOf(id) }

func (r *fakeClientRepo) GetClientForUpdate(_ repositories.SQLExecutor, id string) (*models.Client, error) {
	return r.copyOf(id)
}

func (r *fakeClientRepo) FindClientsByName(_ repositories.SQLExecutor, name string) ([]models.Client, error) {
	var out []models.Client
	for _, c := range r.clients {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) GetClients(_, _ int, _ *string) ([]models.Client, int, error) {
	all, _ := r.ListAllClients(nil)
	return all, len(all), nil
}

func (r *fakeClientRepo) ListAllClients(_ repositories.SQLExecutor) ([]models.Client, error) {
	out := make([]models.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeClientRepo) UpdateClient(_ repositories.SQLExecutor, client *models.Client) error {
	if _, ok := r.clients[client.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *fakeClientRepo) UpdateLoyalty(_ repositories.SQLExecutor, id string, stamps, mimos int) error {
	c, ok := r.clients[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.StampsEarned, c.MimosRedeemed = stamps, mimos
	r.writes++
	return nil
}

func (r *fakeClientRepo) UpdatePackages(_ repositories.SQLExecutor, id string, pkgs models.PackageInstances) error {
	c, ok := r.clients[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.PurchasedPackages = pkgs.Clone()
	r.writes++
	return nil
}

func (r *fakeClientRepo) DeleteClient(_ repositories.SQLExecutor, id string) error {
	if _, ok := r.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

// --- finance ---

type fakeFinanceRepo struct {
	entries []models.FinancialTransaction
}

func (r *fakeFinanceRepo) CreateTransaction(_ repositories.SQLExecutor, tx *models.FinancialTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	r.entries = append(r.entries, *tx)
	return nil
}

func (r *fakeFinanceRepo) GetTransactions(_ models.TransactionFilters) ([]models.FinancialTransaction, int, error) {
	return r.entries, len(r.entries), nil
}

func (r *fakeFinanceRepo) ListAllTransactions(_ repositories.SQLExecutor) ([]models.FinancialTransaction, error) {
	return r.entries, nil
}

func (r *fakeFinanceRepo) SumByCategory(_, _ time.Time) ([]models.CategoryTotal, error) {
	var out []models.CategoryTotal
	for _, e := range r.entries {
		out = append(out, models.CategoryTotal{Category: e.Category, Type: e.Type, Total: e.Amount})
	}
	return out, nil
}

// --- catalog ---

type fakeCatalogRepo struct {
	services map[string]models.Service
	packages map[string]models.Package
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{services: map[string]models.Service{}, packages: map[string]models.Package{}}
}

func (r *fakeCatalogRepo) CreateService(_ repositories.SQLExecutor, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	r.services[svc.ID] = *svc
	return nil
}

func (r *fakeCatalogRepo) GetServiceByID(id string) (*models.Service, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &svc, nil
}

func (r *fakeCatalogRepo) GetServicesByIDs(_ repositories.SQLExecutor, ids []string) ([]models.Service, error) {
	var out []models.Service
	for _, id := range ids {
		if svc, ok := r.services[id]; ok {
			out = append(out, svc)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetServices(_ repositories.SQLExecutor, _ bool) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range r.services {
		out = append(out, svc)
	}
	return out, nil
}

func (r *fakeCatalogRepo) UpdateService(_ repositories.SQLExecutor, svc *models.Service) error {
	if _, ok := r.services[svc.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.services[svc.ID] = *svc
	return nil
}

func (r *fakeCatalogRepo) DeleteService(_ repositories.SQLExecutor, id string) error {
	if _, ok := r.services[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.services, id)
	return nil
}

func (r *fakeCatalogRepo) CreatePackage(_ repositories.SQLExecutor, pkg *models.Package) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	r.packages[pkg.ID] = *pkg
	return nil
}

func (r *fakeCatalogRepo) GetPackageByID(_ repositories.SQLExecutor, id string) (*models.Package, error) {
	pkg, ok := r.packages[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &pkg, nil
}

func (r *fakeCatalogRepo) GetPackages(_ repositories.SQLExecutor, _ bool) ([]models.Package, error) {
	var out []models.Package
	for _, pkg := range r.packages {
		out = append(out, pkg)
	}
	return out, nil
}

func (r *fakeCatalogRepo) UpdatePackage(_ repositories.SQLExecutor, pkg *models.Package) error {
	if _, ok := r.packages[pkg.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.packages[pkg.ID] = *pkg
	return nil
}

func (r *fakeCatalogRepo) DeletePackage(_ repositories.SQLExecutor, id string) error {
	if _, ok := r.packages[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.packages, id)
	return nil
}

// --- appointments ---

type fakeAppointmentRepo struct {
	appointments map[string]*models.Appointment
	busyDates    map[string]bool // YYYY-MM-DD
	checked      [][2]string     // start/end pairs passed to the availability check
}

func newFakeAppointmentRepo(appts ...*models.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{appointments: map[string]*models.Appointment{}, busyDates: map[string]bool{}}
	for _, a := range appts {
		r.appointments[a.ID] = a
	}
	return r
}

func (r *fakeAppointmentRepo) CreateAppointment(_ repositories.SQLExecutor, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	cp := *appt
	r.appointments[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetAppointmentByID(id string) (*models.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) GetAppointmentForUpdate(_ repositories.SQLExecutor, id string) (*models.Appointment, error) {
	return r.GetAppointmentByID(id)
}

func (r *fakeAppointmentRepo) GetAppointments(_ models.AppointmentFilters) ([]models.Appointment, int, error) {
	all, _ := r.ListAllAppointments(nil)
	return all, len(all), nil
}

func (r *fakeAppointmentRepo) ListAllAppointments(_ repositories.SQLExecutor) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateAppointment(_ repositories.SQLExecutor, appt *models.Appointment) error {
	if _, ok := r.appointments[appt.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *appt
	r.appointments[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) UpdateAppointmentStatus(_ repositories.SQLExecutor, id string, status models.AppointmentStatus, completedAt *time.Time) error {
	a, ok := r.appointments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Status = status
	a.CompletedAt = completedAt
	return nil
}

func (r *fakeAppointmentRepo) DeleteAppointment(_ repositories.SQLExecutor, id string) error {
	if _, ok := r.appointments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) CheckProfessionalAvailability(_ repositories.SQLExecutor, _ string, date time.Time, start, end string, _ *string) (bool, error) {
	r.checked = append(r.checked, [2]string{start, end})
	return !r.busyDates[date.Format("2006-01-02")], nil
}

// --- professionals ---

type fakeProfessionalRepo struct {
	professionals map[string]models.Professional
}

func newFakeProfessionalRepo(ps ...models.Professional) *fakeProfessionalRepo {
	r := &fakeProfessionalRepo{professionals: map[string]models.Professional{}}
	for _, p := range ps {
		r.professionals[p.ID] = p
	}
	return r
}

func (r *fakeProfessionalRepo) CreateProfessional(_ repositories.SQLExecutor, p *models.Professional) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.professionals[p.ID] = *p
	return nil
}

func (r *fakeProfessionalRepo) GetProfessionalByID(id string) (*models.Professional, error) {
	p, ok := r.professionals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProfessionalRepo) GetProfessionals(_ repositories.SQLExecutor, _ bool) ([]models.Professional, error) {
	var out []models.Professional
	for _, p := range r.professionals {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProfessionalRepo) UpdateProfessional(_ repositories.SQLExecutor, p *models.Professional) error {
	r.professionals[p.ID] = *p
	return nil
}

func (r *fakeProfessionalRepo) DeleteProfessional(_ repositories.SQLExecutor, id string) error {
	delete(r.professionals, id)
	return nil
}

// --- settings ---

type fakeSettingRepo struct {
	settings map[string]models.ApplicationSetting
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: map[string]models.ApplicationSetting{}}
}

func (r *fakeSettingRepo) GetAll(_ repositories.SQLExecutor) ([]models.ApplicationSetting, error) {
	var out []models.ApplicationSetting
	for _, s := range r.settings {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeSettingRepo) GetByKey(key string) (*models.ApplicationSetting, error) {
	s, ok := r.settings[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSettingRepo) Upsert(_ repositories.SQLExecutor, setting *models.ApplicationSetting) error {
	r.settings[setting.SettingKey] = *setting
	return nil
}

func (r *fakeSettingRepo) Delete(_ repositories.SQLExecutor, key string) error {
	if _, ok := r.settings[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.settings, key)
	return nil
}
