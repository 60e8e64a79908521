package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func TestLoad_AllFields(t *testing.T) {
	dir := writeConfig(t, `connection:
  host: gis.internal
  port: 5433
  username: loader
  database: gis
  sslmode: require
  auth_method: aws
  aws_region: eu-central-1

load:
  schema: staging
  chunk_size: 500
  default_srid: 4490
  spatial_index: false
  workers: 4
  create_extension: true
  timeout: 10m
  fail_on_error: true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gis.internal", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "loader", cfg.Connection.Username)
	assert.Equal(t, "gis", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "eu-central-1", cfg.Connection.AWSRegion)
	auth, err := cfg.Connection.Auth()
	require.NoError(t, err)
	assert.Equal(t, shp2pg.AuthMethodAWSIAM, auth)

	assert.Equal(t, "staging", cfg.Load.Schema)
	assert.Equal(t, 500, cfg.Load.ChunkSize)
	assert.Equal(t, 4490, cfg.Load.DefaultSRID)
	require.NotNil(t, cfg.Load.SpatialIndex)
	assert.False(t, *cfg.Load.SpatialIndex)
	assert.Equal(t, 4, cfg.Load.Workers)
	assert.True(t, cfg.Load.CreateExtension)
	assert.True(t, cfg.Load.FailOnError)
	timeout, err := cfg.Load.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Nil(t, cfg.Load.SpatialIndex)
	assert.Zero(t, cfg.Connection.Port)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "load:\n  chunksize: 10\n"))
	assert.ErrorIs(t, err, shp2pg.ErrInvalidConfig)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "connection: [unclosed"))
	assert.ErrorIs(t, err, shp2pg.ErrInvalidConfig)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &ProjectConfig{
		Connection: ConnectionConfig{Port: 70000, AuthMethod: "kerberos"},
		Load:       LoadConfig{ChunkSize: -1, Workers: 99, Timeout: "soon"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, shp2pg.ErrInvalidConfig)
	assert.ErrorIs(t, err, shp2pg.ErrUnsupportedAuthMethod)
	for _, want := range []string{"connection.port", "auth_method", "chunk_size", "workers", "timeout"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestConnectionConfig_Auth(t *testing.T) {
	cases := map[string]shp2pg.AuthMethod{
		"":         shp2pg.AuthMethodStandard,
		"Standard": shp2pg.AuthMethodStandard,
		"aws_iam":  shp2pg.AuthMethodAWSIAM,
		"google":   shp2pg.AuthMethodGoogleIAM,
		" azure ":  shp2pg.AuthMethodAzureEntraID,
	}
	for in, want := range cases {
		got, err := ConnectionConfig{AuthMethod: in}.Auth()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
