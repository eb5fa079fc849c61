package cmd

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/quantmind-br/libmgr/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJournal(t *testing.T, env *testEnv) {
	t.Helper()

	database, err := db.New(context.Background(), env.cfg.Paths.DBFile)
	require.NoError(t, err)
	defer database.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, op := range []*db.Operation{
		{Action: db.ActionInstall, Library: "requests", Version: "2.31.0", Status: db.StatusOK},
		{Action: db.ActionUninstall, Library: "urllib3", Version: "2.2.1", Status: db.StatusOK},
		{Action: db.ActionSkip, Library: "pip", Status: db.StatusSkipped, Detail: "protected"},
	} {
		op.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, database.Record(context.Background(), op))
	}
}

func TestHistoryCmd_JSON(t *testing.T) {
	env := newTestEnv(t)
	seedJournal(t, env)

	out, err := env.run(t, "history", "--json")
	require.NoError(t, err)

	var ops []db.Operation
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.Len(t, ops, 3)
	assert.Equal(t, "pip", ops[0].Library)
	assert.Equal(t, "requests", ops[2].Library)
}

func TestHistoryCmd_Filters(t *testing.T) {
	env := newTestEnv(t)
	seedJournal(t, env)

	out, err := env.run(t, "history", "--json", "--action", "uninstall")
	require.NoError(t, err)
	var ops []db.Operation
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, "urllib3", ops[0].Library)

	out, err = env.run(t, "history", "--json", "--library", "Requests")
	require.NoError(t, err)
	ops = nil
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.Len(t, ops, 1)

	out, err = env.run(t, "history", "--json", "-n", "2")
	require.NoError(t, err)
	ops = nil
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	assert.Len(t, ops, 2)
}

func TestHistoryCmd_Table(t *testing.T) {
	env := newTestEnv(t)
	seedJournal(t, env)

	out, err := env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "urllib3")
	assert.Contains(t, out, "protected")
}

func TestHistoryCmd_EmptyJournal(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "history", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
	assert.NoFileExists(t, env.cfg.Paths.DBFile)
}

func TestHistoryCmd_InvalidAction(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "history", "--action", "upgrade")
	assert.ErrorContains(t, err, "invalid action")
}
