package envssm

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byu-oit/env-ssm/internal/logger"
	"github.com/byu-oit/env-ssm/store"
)

func nopLogger() *zerolog.Logger {
	l := logger.Nop()
	return &l
}

func mustString(t *testing.T, c *Container, key string) string {
	t.Helper()
	v, err := c.Get(key).AsString()
	require.NoError(t, err)
	return v
}

func TestLoad_ProcessEnvWhenStoreIsEmpty(t *testing.T) {
	cfg, err := Load(context.Background(), Options{
		Paths:   Paths("/app/stg/db"),
		Store:   store.NewMemory(nil),
		Dotenv:  NoFile,
		Environ: map[string]string{"PASSWORD": "process-secret"},
		Logger:  nopLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "process-secret", mustString(t, cfg, "PASSWORD"))
}

func TestLoad_StoreParameter(t *testing.T) {
	cfg, err := Load(context.Background(), Options{
		Paths:   Paths("/app/stg/db"),
		Store:   store.NewMemory(map[string]string{"/app/stg/db/password": "ch@ng3m3"}),
		Dotenv:  NoFile,
		Environ: map[string]string{},
		Logger:  nopLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "ch@ng3m3", mustString(t, cfg, "PASSWORD"))
	assert.Equal(t, "ch@ng3m3", mustString(t, cfg, "password"))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "PASSWORD=dotenv\nDOTENV_ONLY=d\nSHARED=dotenv\n")
	writeFile(t, dir, "stg.tfvars", "PASSWORD = \"tfvars\"\nSHARED = \"tfvars\"\n")

	ssm := store.NewMemory(map[string]string{
		"/app/PASSWORD":   "store",
		"/app/STORE_ONLY": "s",
		"/app/SHARED":     "store",
	})

	load := func(t *testing.T, processEnv bool) *Container {
		t.Helper()
		cfg, err := Load(context.Background(), Options{
			Paths:      Paths("/app"),
			Store:      ssm,
			Tfvar:      File("stg.tfvars"),
			ProcessEnv: Bool(processEnv),
			Environ:    map[string]string{"PASSWORD": "process"},
			WorkDir:    dir,
			Logger:     nopLogger(),
		})
		require.NoError(t, err)
		return cfg
	}

	cfg := load(t, true)
	assert.Equal(t, "process", mustString(t, cfg, "PASSWORD"))
	assert.Equal(t, "tfvars", mustString(t, cfg, "SHARED"))
	assert.Equal(t, "d", mustString(t, cfg, "DOTENV_ONLY"))
	assert.Equal(t, "s", mustString(t, cfg, "STORE_ONLY"))

	cfg = load(t, false)
	assert.Equal(t, "tfvars", mustString(t, cfg, "PASSWORD"))
}

func TestLoad_DotenvOverridesStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "PASSWORD=dotenv\n")

	cfg, err := Load(context.Background(), Options{
		Paths:   Paths("/app"),
		Store:   store.NewMemory(map[string]string{"/app/PASSWORD": "store"}),
		Environ: map[string]string{},
		WorkDir: dir,
		Logger:  nopLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "dotenv", mustString(t, cfg, "PASSWORD"))

	cfg, err = Load(context.Background(), Options{
		Paths:   Paths("/app"),
		Store:   store.NewMemory(map[string]string{"/app/PASSWORD": "store"}),
		Dotenv:  NoFile,
		Environ: map[string]string{},
		WorkDir: dir,
		Logger:  nopLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "store", mustString(t, cfg, "PASSWORD"))
}

func TestLoad_StoreErrors(t *testing.T) {
	_, err := Load(context.Background(), Options{
		Paths:   Paths("/app"),
		Environ: map[string]string{},
		Logger:  nopLogger(),
	})
	assert.ErrorIs(t, err, ErrNoStore)

	_, err = Load(context.Background(), Options{
		Store:   store.NewMemory(nil),
		Environ: map[string]string{},
		Logger:  nopLogger(),
	})
	assert.ErrorIs(t, err, ErrNoPaths)

	_, err = Load(context.Background(), Options{
		Paths:   []PathSpec{{Path: "  "}},
		Store:   store.NewMemory(nil),
		Environ: map[string]string{},
		Logger:  nopLogger(),
	})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLoad_EnvironmentPathsIgnoredWithoutStore(t *testing.T) {
	cfg, err := Load(context.Background(), Options{
		Dotenv:  NoFile,
		Environ: map[string]string{PathsKey: "/app/stg", "HOST": "localhost"},
		Logger:  nopLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost", mustString(t, cfg, "HOST"))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "custom.env", "FROM_DOTENV=yes\n")
	writeFile(t, dir, "stg.tfvars", "FROM_TFVARS = \"yes\"\n")

	cfg, err := Load(context.Background(), Options{
		Store: store.NewMemory(map[string]string{"app.stg.db.host": "db.internal"}),
		Environ: map[string]string{
			PathsKey:         "app.stg",
			PathDelimiterKey: ".",
			ProcessEnvKey:    "false",
			DotenvKey:        "custom.env",
			TfvarKey:         "stg.tfvars",
			"FROM_PROCESS":   "yes",
		},
		WorkDir: dir,
		Logger:  nopLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, "db.internal", mustString(t, cfg, "db.host"))
	assert.Equal(t, "yes", mustString(t, cfg, "FROM_DOTENV"))
	assert.Equal(t, "yes", mustString(t, cfg, "FROM_TFVARS"))
	assert.False(t, cfg.Has("FROM_PROCESS"))
}

func TestLoad_OptionsBeatEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "custom.env", "FROM_DOTENV=yes\n")

	cfg, err := Load(context.Background(), Options{
		ProcessEnv: Bool(true),
		Dotenv:     NoFile,
		Environ: map[string]string{
			ProcessEnvKey:  "false",
			DotenvKey:      "custom.env",
			"FROM_PROCESS": "yes",
		},
		WorkDir: dir,
		Logger:  nopLogger(),
	})
	require.NoError(t, err)

	assert.True(t, cfg.Has("FROM_PROCESS"))
	assert.False(t, cfg.Has("FROM_DOTENV"))
}

func TestLoad_DisabledDotenvOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "FROM_DOTENV=yes\n")

	cfg, err := Load(context.Background(), Options{
		Environ: map[string]string{DotenvKey: "false"},
		WorkDir: dir,
		Logger:  nopLogger(),
	})
	require.NoError(t, err)
	assert.False(t, cfg.Has("FROM_DOTENV"))
}

func TestLoad_InvalidOverride(t *testing.T) {
	_, err := Load(context.Background(), Options{
		Environ: map[string]string{ProcessEnvKey: "maybe"},
		Logger:  nopLogger(),
	})
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestLoad_UnreadableDotenvFails(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(context.Background(), Options{
		Dotenv:  File(dir),
		Environ: map[string]string{},
		Logger:  nopLogger(),
	})
	assert.Error(t, err)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, Options{
		Paths:   Paths("/app"),
		Store:   store.NewMemory(map[string]string{"/app/KEY": "v"}),
		Dotenv:  NoFile,
		Environ: map[string]string{},
		Logger:  nopLogger(),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFileSource(t *testing.T) {
	assert.Equal(t, NoFile, ParseFileSource(""))
	assert.Equal(t, NoFile, ParseFileSource("FALSE"))
	assert.Equal(t, File("ci.env"), ParseFileSource("ci.env"))
}

func TestEnvironMap(t *testing.T) {
	assert.Equal(t, map[string]string{
		"A":     "1",
		"EMPTY": "",
		"EQ":    "x=y",
	}, EnvironMap([]string{"A=1", "EMPTY=", "EQ=x=y", "malformed"}))
}
