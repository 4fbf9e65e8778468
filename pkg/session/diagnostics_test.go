package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	snap, err := e.sync.Inspect(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, snap.Exists)
	assert.Equal(t, "session:ghost", snap.Key)

	e.seed(t, "s1", lockedRecord(7))
	snap, err = e.sync.Inspect(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.NoError(t, snap.Problem)
	require.NotNil(t, snap.Record)
	assert.Equal(t, int64(7), snap.Record.LockID)
	assert.Equal(t, 20*time.Minute, snap.TTL)
	assert.False(t, e.mr.Exists(e.cfg.LockKey("s1")), "inspect takes no claim")

	e.mr.HSet(e.cfg.SessionKey("bad"), "created", "x")
	snap, err = e.sync.Inspect(ctx, "bad")
	require.NoError(t, err)
	assert.True(t, snap.Exists)
	assert.Nil(t, snap.Record)
	assert.ErrorIs(t, snap.Problem, domain.ErrMalformedRecord)
}

func TestLockStatusAndBreak(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, err := e.sync.LockStatus(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.Held)
	assert.Equal(t, "session:s1:lock", st.Key)

	require.NoError(t, e.mr.Set(st.Key, "stuck"))
	e.mr.SetTTL(st.Key, 30*time.Second)

	st, err = e.sync.LockStatus(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, st.Held)
	assert.Equal(t, 30*time.Second, st.TTL)

	require.NoError(t, e.sync.BreakLock(ctx, "s1"))
	assert.False(t, e.mr.Exists(st.Key))
}
