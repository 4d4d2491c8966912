package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load away from the developer's own config and .env files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{"MONGODB_URI", "BOOKSHELF_URI", "BOOKSHELF_DATABASE", "BOOKSHELF_PAGE_SIZE", "BOOKSHELF_OUTPUT"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(viper.New(), Options{DotEnv: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.URI)
	assert.Equal(t, "plp_bookstore", cfg.Database)
	assert.Equal(t, "books", cfg.Collection)
	assert.Equal(t, 1, cfg.Page)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "Jane Austen", cfg.ExplainAuthor)
	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.MetricsFile)
}

func TestLoad_Environment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("MONGODB_URI", "mongodb://mongo:27017")
	t.Setenv("BOOKSHELF_PAGE_SIZE", "10")
	t.Setenv("BOOKSHELF_OUTPUT", "json")

	cfg, err := Load(viper.New(), Options{DotEnv: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "mongodb://mongo:27017", cfg.URI)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "json", cfg.Output)

	t.Setenv("BOOKSHELF_URI", "mongodb://preferred:27017")
	cfg, err = Load(viper.New(), Options{DotEnv: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "mongodb://preferred:27017", cfg.URI)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BOOKSHELF_DATABASE=from_dotenv\n"), 0o600))

	cfg, err := Load(viper.New(), Options{DotEnv: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.Database)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "bookshelf.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
database: shop
collection: inventory
page: 2
timeout: 5s
explain_author: J.R.R. Tolkien
`), 0o600))

	cfg, err := Load(viper.New(), Options{File: file, DotEnv: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Database)
	assert.Equal(t, "inventory", cfg.Collection)
	assert.Equal(t, 2, cfg.Page)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "J.R.R. Tolkien", cfg.ExplainAuthor)

	_, err = Load(viper.New(), Options{File: filepath.Join(dir, "nope.yaml"), DotEnv: filepath.Join(dir, "missing.env")})
	assert.Error(t, err)
}

func TestLoad_FlagOverride(t *testing.T) {
	dir := isolate(t)
	t.Setenv("BOOKSHELF_DATABASE", "from_env")

	v := viper.New()
	v.Set(KeyDatabase, "from_flag")
	cfg, err := Load(v, Options{DotEnv: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)
	assert.Equal(t, "from_flag", cfg.Database)
}

func TestValidate(t *testing.T) {
	cfg := Config{URI: "mongodb://x", Database: "d", Collection: "c", Page: 1, PageSize: 5, Timeout: time.Second}
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.PageSize = 0
	bad.Page = 0
	bad.Timeout = 0
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page must be at least 1")
	assert.Contains(t, err.Error(), "page_size must be at least 1")
	assert.Contains(t, err.Error(), "timeout must be positive")

	bad = cfg
	bad.URI = ""
	assert.ErrorContains(t, bad.Validate(), "uri is empty")
}
