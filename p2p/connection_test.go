package p2p

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"archivechain/core"
)

func TestConnectionLifecycleHappyPath(t *testing.T) {
	require := require.New(t)

	conn := NewConnection(core.NodeId{1}, "127.0.0.1:9000", 1024)
	require.Equal(StateConnecting, conn.State)

	require.NoError(conn.BeginHandshake())
	require.NoError(conn.MarkConnected())
	require.NoError(conn.BeginDisconnect())
	require.NoError(conn.MarkDisconnected())
}

func TestConnectionTransitionRejectsSkippingHandshake(t *testing.T) {
	require := require.New(t)

	conn := NewConnection(core.NodeId{1}, "127.0.0.1:9000", 1024)
	err := conn.MarkConnected()
	require.Error(err, "Connecting cannot jump straight to Connected")
}

func TestConnectionErrorStateIsRecoverableOnlyToDisconnected(t *testing.T) {
	require := require.New(t)

	conn := NewConnection(core.NodeId{1}, "127.0.0.1:9000", 1024)
	conn.Fail(core.ErrProtocolf("test", "boom"))
	require.Equal(StateError, conn.State)

	require.Error(conn.MarkConnected())
	require.NoError(conn.MarkDisconnected())
}

func TestConnectionStalledAfterIdleBeyondThreshold(t *testing.T) {
	require := require.New(t)

	conn := NewConnection(core.NodeId{1}, "127.0.0.1:9000", 1024)
	require.NoError(conn.BeginHandshake())
	require.NoError(conn.MarkConnected())

	now := conn.ConnectedAt
	require.False(conn.Stalled(now.Add(time.Minute)))
	require.True(conn.Stalled(now.Add(2*time.Hour)))
}

func TestConnectionTouchPreventsStall(t *testing.T) {
	require := require.New(t)

	conn := NewConnection(core.NodeId{1}, "127.0.0.1:9000", 1024)
	require.NoError(conn.BeginHandshake())
	require.NoError(conn.MarkConnected())

	future := time.Now().Add(2 * time.Hour)
	conn.Touch()
	require.False(conn.Stalled(future))
}

func TestConnectionTableTracksAndRemoves(t *testing.T) {
	require := require.New(t)

	table := NewConnectionTable()
	conn := NewConnection(core.NodeId{1}, "127.0.0.1:9000", 1024)
	table.Put(conn)

	got, ok := table.Get(core.NodeId{1})
	require.True(ok)
	require.Same(conn, got)

	table.Remove(core.NodeId{1})
	_, ok = table.Get(core.NodeId{1})
	require.False(ok)
}

func TestConnectionTablePruneStalledRemovesOnlyStalledConnected(t *testing.T) {
	require := require.New(t)

	table := NewConnectionTable()

	stale := NewConnection(core.NodeId{1}, "addr1", 1024)
	require.NoError(stale.BeginHandshake())
	require.NoError(stale.MarkConnected())
	stale.LastActivity = time.Now().Add(-2 * time.Hour)

	fresh := NewConnection(core.NodeId{2}, "addr2", 1024)
	require.NoError(fresh.BeginHandshake())
	require.NoError(fresh.MarkConnected())

	table.Put(stale)
	table.Put(fresh)

	removed := table.PruneStalled(time.Now())
	require.ElementsMatch([]core.NodeId{{1}}, removed)

	_, ok := table.Get(core.NodeId{1})
	require.False(ok)
	_, ok = table.Get(core.NodeId{2})
	require.True(ok)
}
