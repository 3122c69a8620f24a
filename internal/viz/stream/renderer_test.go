package stream

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/banshee-data/pointviz/internal/version"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

const bufSize = 1 << 20

func startTestRenderer(t *testing.T, cfg Config, panes int) (*Renderer, *grpc.ClientConn) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	r := NewRenderer(cfg, scene.NewMemory(panes))
	require.NoError(t, r.Serve(lis))

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		r.Stop()
	})
	return r, conn
}

func recv(t *testing.T, c *SceneClient) *structpb.Struct {
	t.Helper()
	msg, err := c.Recv()
	require.NoError(t, err)
	return msg
}

// recvType skips duplicate add events, which a client may see for actors
// added around the time it subscribed.
func recvType(t *testing.T, c *SceneClient, want string) *structpb.Struct {
	t.Helper()
	for i := 0; i < 4; i++ {
		msg := recv(t, c)
		got := field(msg, "type").GetStringValue()
		if got == want {
			return msg
		}
		require.Equal(t, "add", got, "unexpected event while waiting for %s", want)
	}
	t.Fatalf("no %s event received", want)
	return nil
}

func field(msg *structpb.Struct, key string) *structpb.Value {
	return msg.GetFields()[key]
}

func triangle() *scene.PolyData {
	return &scene.PolyData{Points: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Topology: scene.TopologyPolygon}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:50051", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.MaxClients)
	assert.Equal(t, 256, cfg.EventQueueSize)
}

func TestRenderer_NotRunning(t *testing.T) {
	r := NewRenderer(DefaultConfig(), scene.NewMemory(1))
	a := scene.NewGeometryActor(triangle())
	require.NoError(t, r.AddActor(a, 0))
	require.NoError(t, r.Modified(a))
	assert.Equal(t, 1, r.Memory().Count())
	assert.Zero(t, r.Stats().EventCount, "nothing is published before Serve")

	assert.Error(t, r.AddActor(a, 4))
}

func TestStreamScene_SnapshotAndChanges(t *testing.T) {
	r, conn := startTestRenderer(t, DefaultConfig(), 1)

	existing := scene.NewGeometryActor(triangle())
	require.NoError(t, r.AddActor(existing, 0))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Subscribe(ctx, conn, 0)
	require.NoError(t, err)

	hello := recv(t, c)
	assert.Equal(t, "hello", field(hello, "type").GetStringValue())
	assert.NotEmpty(t, field(hello, "client_id").GetStringValue())
	assert.Equal(t, 1.0, field(hello, "viewports").GetNumberValue())
	assert.Equal(t, version.Version, field(hello, "server_version").GetStringValue())

	snap := recv(t, c)
	assert.Equal(t, "add", field(snap, "type").GetStringValue())
	assert.True(t, field(snap, "snapshot").GetBoolValue())
	actor := field(snap, "actor").GetStructValue()
	assert.Equal(t, "geometry", field(actor, "kind").GetStringValue())
	geom := field(actor, "geometry").GetStructValue()
	assert.Len(t, field(geom, "points").GetListValue().GetValues(), 9)
	assert.Equal(t, "polygon", field(geom, "topology").GetStringValue())
	actorID := field(snap, "actor_id").GetNumberValue()

	// The client is registered before the snapshot is sent.
	assert.Equal(t, int32(1), r.Stats().ClientCount)

	require.NoError(t, r.Modified(existing))
	mod := recvType(t, c, "modify")
	assert.Equal(t, "modify", field(mod, "type").GetStringValue())
	assert.Equal(t, actorID, field(mod, "actor_id").GetNumberValue())
	assert.Equal(t, 1.0, field(field(mod, "actor").GetStructValue(), "revision").GetNumberValue())

	label := scene.NewFollowerActor(scene.Billboard{Text: "hi", Scale: 1, Pane: 1})
	require.NoError(t, r.AddActor(label, 1))
	add := recv(t, c)
	assert.Equal(t, "add", field(add, "type").GetStringValue())
	bb := field(field(add, "actor").GetStructValue(), "billboard").GetStructValue()
	assert.Equal(t, "hi", field(bb, "text").GetStringValue())

	require.NoError(t, r.RemoveActor(existing, 0))
	rm := recv(t, c)
	assert.Equal(t, "remove", field(rm, "type").GetStringValue())
	assert.Equal(t, actorID, field(rm, "actor_id").GetNumberValue())
	assert.Nil(t, field(rm, "actor"))
}

func TestStreamScene_ViewportFilter(t *testing.T) {
	r, conn := startTestRenderer(t, DefaultConfig(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Subscribe(ctx, conn, 2)
	require.NoError(t, err)
	recv(t, c) // hello

	require.NoError(t, r.AddActor(scene.NewLeaderActor(scene.Leader{}), 1))
	require.NoError(t, r.AddActor(scene.NewLeaderActor(scene.Leader{Filled: true}), 2))

	msg := recv(t, c)
	assert.Equal(t, 2.0, field(msg, "viewport").GetNumberValue())
	leader := field(field(msg, "actor").GetStructValue(), "leader").GetStructValue()
	assert.True(t, field(leader, "filled").GetBoolValue())
}

func TestStreamScene_BadViewport(t *testing.T) {
	_, conn := startTestRenderer(t, DefaultConfig(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Subscribe(ctx, conn, 3)
	require.NoError(t, err)
	_, err = c.Recv()
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStreamScene_MaxClients(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxClients = 1
	_, conn := startTestRenderer(t, cfg, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := Subscribe(ctx, conn, 0)
	require.NoError(t, err)
	recv(t, first)

	second, err := Subscribe(ctx, conn, 0)
	require.NoError(t, err)
	_, err = second.Recv()
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestRenderer_DropsWhenQueueFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EventQueueSize = 1
	r := NewRenderer(cfg, scene.NewMemory(1))
	// Mark running without the broadcast loop so nothing drains the queue.
	r.running.Store(true)

	a := scene.NewGeometryActor(triangle())
	require.NoError(t, r.AddActor(a, 0))
	require.NoError(t, r.Modified(a))
	require.NoError(t, r.Modified(a))

	s := r.Stats()
	assert.Equal(t, uint64(3), s.EventCount)
	assert.Equal(t, uint64(2), s.DroppedEvents)
}

func TestStreamScene_SnapshotUsesView(t *testing.T) {
	r, conn := startTestRenderer(t, DefaultConfig(), 1)
	require.NoError(t, r.AddActor(scene.NewGeometryActor(triangle()), 0))

	var mu sync.Mutex
	calls := 0
	r.SetView(func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		fn()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Subscribe(ctx, conn, 0)
	require.NoError(t, err)

	recv(t, c) // hello
	snap := recv(t, c)
	assert.True(t, field(snap, "snapshot").GetBoolValue())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
