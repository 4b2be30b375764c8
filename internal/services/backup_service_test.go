package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackup(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "minimal document",
			raw:  `{"clients":[],"appointments":[],"services":[]}`,
		},
		{
			name: "optional collections and unknown fields",
			raw:  `{"clients":[{"id":"c1","name":"Ana","stamps_earned":4,"mimos_redeemed":1,"purchased_packages":[]}],"appointments":[],"services":[],"products":[],"extra":1}`,
		},
		{name: "not json", raw: `clients`, wantErr: true},
		{name: "missing services", raw: `{"clients":[],"appointments":[]}`, wantErr: true},
		{name: "collection is not a list", raw: `{"clients":{},"appointments":[],"services":[]}`, wantErr: true},
		{name: "null collection", raw: `{"clients":null,"appointments":[],"services":[]}`, wantErr: true},
		{
			name:    "negative stamps",
			raw:     `{"clients":[{"id":"c1","stamps_earned":-1}],"appointments":[],"services":[]}`,
			wantErr: true,
		},
		{
			name: "remaining above total",
			raw: `{"clients":[{"id":"c1","purchased_packages":[{"id":"i1","status":"Ativo",
				"services":[{"service_id":"s1","total_quantity":2,"remaining_quantity":3}]}]}],"appointments":[],"services":[]}`,
			wantErr: true,
		},
		{
			name: "unknown package status",
			raw: `{"clients":[{"id":"c1","purchased_packages":[{"id":"i1","status":"Pendente","services":[]}]}],
				"appointments":[],"services":[]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseBackup([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBackup)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}

func TestRestoreRejectsInvalidDocumentBeforeTouchingData(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewBackupService(BackupRepositories{}, db)

	_, err := svc.Restore([]byte(`{"clients":[]}`))
	assert.ErrorIs(t, err, ErrInvalidBackup)
}
