package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("WITHHOLDING_CONFIG", "")
	t.Setenv("DATABASE_URL", "")

	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "dev", s.Stage)
	assert.Equal(t, 8080, s.Server.Port)
	assert.Equal(t, AuditDriverSQLite, s.Audit.Driver)
	assert.Equal(t, uint64(3), s.Audit.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, s.Audit.InitialInterval)
	assert.Equal(t, 5*time.Second, s.Audit.Timeout)
	assert.False(t, s.Engine.StrictJurisdictions)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("DATABASE_URL", "")

	file := filepath.Join(dir, "withholding.yaml")
	body := `
stage: prod
server:
  port: 9090
engine:
  strict_jurisdictions: true
audit:
  driver: postgres
  database_url: postgres://localhost/withholding
`
	require.NoError(t, os.WriteFile(file, []byte(body), 0644))
	t.Setenv("WITHHOLDING_SERVER_PORT", "9191")

	s, err := LoadSettings(file)
	require.NoError(t, err)

	assert.Equal(t, "prod", s.Stage)
	assert.Equal(t, 9191, s.Server.Port, "env overrides file")
	assert.True(t, s.Engine.StrictJurisdictions)
	assert.Equal(t, AuditDriverPostgres, s.Audit.Driver)
	assert.Equal(t, "postgres://localhost/withholding", s.Audit.DatabaseURL)
}

func TestLoadSettings_DatabaseURLFallback(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("WITHHOLDING_CONFIG", "")
	t.Setenv("WITHHOLDING_AUDIT_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://db/audit")

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/audit", s.Audit.DatabaseURL)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSettings_Validate(t *testing.T) {
	base := Settings{Server: ServerSettings{Port: 8080}}

	tests := []struct {
		name    string
		audit   AuditSettings
		wantErr string
	}{
		{"memory", AuditSettings{Driver: AuditDriverMemory}, ""},
		{"sqlite without path", AuditSettings{Driver: AuditDriverSQLite}, "sqlite_path"},
		{"postgres without url", AuditSettings{Driver: AuditDriverPostgres}, "database_url"},
		{"sqs without queue", AuditSettings{Driver: AuditDriverSQS}, "queue_url"},
		{"unknown", AuditSettings{Driver: "mongo"}, "unknown audit driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			s.Audit = tt.audit
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
