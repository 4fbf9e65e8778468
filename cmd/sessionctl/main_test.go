package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/sessionlock/pkg/codec"
	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/aretw0/sessionlock/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sessionctl version ")
}

func TestSessionCommands(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	out, err := run(t, "session", "create", "s1", "--timeout", "15", "--addr", addr, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Created session 's1'")
	assert.Equal(t, 15*time.Minute, mr.TTL("session:s1"))

	out, err = run(t, "session", "inspect", "s1", "-o", "json", "--addr", addr, "--log-level", "error")
	require.NoError(t, err)
	var view recordView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, view.Exists)
	assert.Equal(t, "InitializeItem", view.Flags)
	assert.Equal(t, 15, view.Timeout)

	out, err = run(t, "session", "inspect", "s1", "-o", "yaml", "--addr", addr, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "key: session:s1")

	_, err = run(t, "session", "touch", "s1", "--timeout", "40", "--addr", addr, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, 40*time.Minute, mr.TTL("session:s1"))

	out, err = run(t, "lock", "status", "s1", "--addr", addr, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "session:s1:lock")
	assert.Contains(t, out, "free")

	require.NoError(t, mr.Set("session:s1:lock", "crashed-holder"))
	_, err = run(t, "lock", "break", "s1", "--addr", addr, "--log-level", "error")
	require.NoError(t, err)
	assert.False(t, mr.Exists("session:s1:lock"))

	out, err = run(t, "session", "rm", "s1", "--addr", addr, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed session 's1'")
	assert.False(t, mr.Exists("session:s1"))
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := resolveFormat("xml", &bytes.Buffer{})
	assert.Error(t, err)

	format, err := resolveFormat(formatAuto, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, formatJSON, format)
}

func TestSnapshotViewRedactsItems(t *testing.T) {
	r, err := codec.NewRedactor(codec.DefaultRedactPatterns)
	require.NoError(t, err)

	items := domain.NewItems()
	items.Set("user", "ana")
	items.Set("api_token", "s3cr3t")
	rec := domain.NewRecord(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC), 20)
	rec.Items = items

	view := snapshotView(session.Snapshot{Key: "session:s1", Exists: true, TTL: time.Minute, Record: rec}, r)
	assert.Equal(t, "ana", view.Items["user"])
	assert.Equal(t, codec.Mask, view.Items["api_token"])
	assert.Equal(t, "1m0s", view.TTL)
	assert.Nil(t, view.LockDate)
}
