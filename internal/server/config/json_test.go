package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.json")

	body := `{
		"endpoint_addr_http": ":6060",
		"database_dsn": "postgres://u:p@db:5432/x",
		"secret_key": "other",
		"access_token_validity_duration": "45m",
		"s3_root_user": "root",
		"s3_root_password": "pw",
		"s3_bucket": "blobs",
		"s3_region": "eu-west-1",
		"s3_base_endpoint": "http://minio:9000/",
		"ledger_finality_delay": "5s"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o660))

	oldArgs := os.Args
	os.Args = []string{"server", "-c", path}
	defer func() { os.Args = oldArgs }()

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":6060", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://u:p@db:5432/x", c.DatabaseDSN)
	assert.Equal(t, "other", c.SecretKey)
	assert.Equal(t, 45*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "root", c.S3RootUser)
	assert.Equal(t, "blobs", c.S3Bucket)
	assert.Equal(t, 5*time.Second, c.LedgerFinalityDelay)
}

func TestParseJson_NoFlagLeavesDefaults(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server"}
	defer func() { os.Args = oldArgs }()

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":5050", c.EndpointAddrHTTP)
}
