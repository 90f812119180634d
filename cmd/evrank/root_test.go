package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) string {
	t.Helper()
	t.Setenv("EVRANK_LOG_LEVEL", "error")
	path := filepath.Join(t.TempDir(), "evrank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: memory\n"), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (map[string]any, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &body), out.String())
	return body, nil
}

func TestScoreCommand(t *testing.T) {
	body, err := run(t, "", "--config", memoryConfig(t), "score",
		"--user", "test_user_nonexistent",
		"--price", "45000", "--range", "500", "--efficiency", "150",
		"--acceleration", "6.1", "--fast_charge", "170", "--seat_count", "5")
	require.NoError(t, err)
	assert.InDelta(t, -23.03, body["utility"], 1e-9)
	assert.Equal(t, "default", body["source"])
}

func TestRankCommand(t *testing.T) {
	cars := `[
		{"name":"Hyundai Ioniq 5","price":48000,"range":480,"efficiency":165,"acceleration":7.4,"fast_charge":220,"seat_count":5},
		{"name":"Tesla Model 3","price":45000,"range":500,"efficiency":150,"acceleration":6.1,"fast_charge":170,"seat_count":5},
		{"name":"Volkswagen ID.4","price":40000,"range":420,"efficiency":180,"acceleration":8.5,"fast_charge":125,"seat_count":5}
	]`
	body, err := run(t, cars, "--config", memoryConfig(t), "rank", "--user", "u", "--top", "2")
	require.NoError(t, err)

	best := body["best_car"].(map[string]any)
	assert.Equal(t, "Tesla Model 3", best["name"])
	ranked := body["all_cars_ranked"].([]any)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Volkswagen ID.4", ranked[1].(map[string]any)["name"])
}

func TestRankCommand_Errors(t *testing.T) {
	cfg := memoryConfig(t)

	_, err := run(t, "[]", "--config", cfg, "rank", "--user", "u")
	assert.Error(t, err)

	_, err = run(t, "not json", "--config", cfg, "rank", "--user", "u")
	assert.Error(t, err)
}

func TestRedisBackendRequiresURL(t *testing.T) {
	t.Setenv("EVRANK_REDIS_URL", "")
	t.Setenv("UPSTASH_REDIS_URL", "")
	path := filepath.Join(t.TempDir(), "evrank.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: redis\n"), 0o600))

	_, err := run(t, "", "--config", path, "score", "--user", "u")
	assert.Error(t, err)
}
