package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFiles(t *testing.T, jsonBody, envBody string) {
	t.Helper()
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")
	if jsonBody != "" {
		require.NoError(t, os.WriteFile(jsonPath, []byte(jsonBody), 0o600))
	}
	if envBody != "" {
		require.NoError(t, os.WriteFile(envPath, []byte(envBody), 0o600))
	}
	require.NoError(t, loadFromFiles(jsonPath, envPath))
	t.Cleanup(func() {
		mu.Lock()
		values = defaultValues()
		mu.Unlock()
	})
}

func TestDefaultsWithoutFiles(t *testing.T) {
	withFiles(t, "", "")

	assert.Equal(t, defaultMongoURI, get("MONGO_URI", ""))
	assert.Equal(t, "near2door_db", get("MONGO_DATABASE", ""))
	assert.Equal(t, "@every 15m", values["RECONCILE_SCHEDULE"])
}

func TestDotEnvOverridesJSON(t *testing.T) {
	withFiles(t,
		`{"mongo_database": "from_json", "rate_limit": 50, "log_mongo": true}`,
		"# comment\nMONGO_DATABASE=\"from_env\"\nMONGO_TIMEOUT=3s\n",
	)

	assert.Equal(t, "from_env", get("MONGO_DATABASE", ""))
	assert.Equal(t, 50, integer("RATE_LIMIT", 1))
	assert.True(t, boolean("LOG_MONGO", false))
	assert.Equal(t, 3*time.Second, duration("MONGO_TIMEOUT", time.Second))
}

func TestMalformedNumbersFallBack(t *testing.T) {
	withFiles(t, "", "RATE_LIMIT=lots\nMONGO_TIMEOUT=-1s\n")

	assert.Equal(t, defaultRateLimit, integer("RATE_LIMIT", defaultRateLimit))
	assert.Equal(t, defaultMongoTimeout, duration("MONGO_TIMEOUT", defaultMongoTimeout))
}

func TestEnvironmentWins(t *testing.T) {
	t.Setenv("MONGO_DATABASE", "from_process")
	withFiles(t, "", "MONGO_DATABASE=from_env\n")

	assert.Equal(t, "from_process", get("MONGO_DATABASE", ""))
}

func TestInvalidJSONIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	err := loadFromFiles(path, filepath.Join(dir, ".env"))
	assert.Error(t, err)
}
