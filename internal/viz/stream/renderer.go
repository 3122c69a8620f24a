// Package stream provides a scene.Renderer that keeps the scene in memory
// and streams every change to remote viewers over gRPC.
package stream

import (
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/banshee-data/pointviz/internal/config"
	"github.com/banshee-data/pointviz/internal/viz/scene"
)

// Config holds configuration for the scene stream server.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "localhost:50051")
	ListenAddr string

	// MaxClients is the maximum number of concurrent streaming clients
	MaxClients int

	// EventQueueSize is the depth of the shared broadcast queue
	EventQueueSize int

	// ClientQueueSize is the depth of each client's queue
	ClientQueueSize int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return ConfigFromViewer(config.EmptyViewerConfig())
}

// ConfigFromViewer reads the stream settings from cfg.
func ConfigFromViewer(cfg *config.ViewerConfig) Config {
	return Config{
		ListenAddr:      cfg.GetListenAddr(),
		MaxClients:      cfg.GetMaxClients(),
		EventQueueSize:  cfg.GetEventQueueSize(),
		ClientQueueSize: cfg.GetClientQueueSize(),
	}
}

// EventType is the kind of scene change.
type EventType int

const (
	EventHello EventType = iota
	EventAdd
	EventRemove
	EventModify
)

// String returns the string representation of an EventType.
func (t EventType) String() string {
	switch t {
	case EventHello:
		return "hello"
	case EventAdd:
		return "add"
	case EventRemove:
		return "remove"
	case EventModify:
		return "modify"
	default:
		return "unknown"
	}
}

// event is one encoded scene change, shared read-only by every client.
type event struct {
	seq      uint64
	viewport int
	msg      *structpb.Struct
}

// client represents a connected streaming client.
type client struct {
	id       string
	viewport int // 0 receives every pane
	eventCh  chan *event
	doneCh   chan struct{}
}

// Renderer wraps an in-memory scene and broadcasts its changes. Scene
// mutations never block on slow clients: events that do not fit a queue are
// dropped and counted.
type Renderer struct {
	config Config
	mem    *scene.Memory

	server   *grpc.Server
	listener net.Listener

	events    chan *event
	clients   map[string]*client
	clientsMu sync.RWMutex

	actorIDs map[*scene.Actor]uint64
	nextID   uint64
	idsMu    sync.Mutex

	// view runs snapshot encoding while the scene owner is not mutating
	// actor geometry.
	view func(fn func())

	// Stats
	eventCount    atomic.Uint64
	clientCount   atomic.Int32
	droppedEvents atomic.Uint64

	// Lifecycle
	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRenderer returns a renderer over mem.
func NewRenderer(cfg Config, mem *scene.Memory) *Renderer {
	return &Renderer{
		config:   cfg,
		mem:      mem,
		events:   make(chan *event, max(cfg.EventQueueSize, 1)),
		clients:  make(map[string]*client),
		actorIDs: make(map[*scene.Actor]uint64),
		stopCh:   make(chan struct{}),
		view:     func(fn func()) { fn() },
	}
}

// SetView installs the scene owner's critical section for snapshot
// encoding. Actor geometry is rewritten in place by updates, so new
// subscribers must read it under the same lock as the writer.
func (r *Renderer) SetView(view func(fn func())) {
	if view != nil {
		r.view = view
	}
}

// Memory returns the underlying scene.
func (r *Renderer) Memory() *scene.Memory { return r.mem }

func (r *Renderer) Viewports() int { return r.mem.Viewports() }

func (r *Renderer) AddActor(a *scene.Actor, viewport int) error {
	if err := r.mem.AddActor(a, viewport); err != nil {
		return err
	}
	r.publish(EventAdd, a, viewport, false)
	return nil
}

func (r *Renderer) RemoveActor(a *scene.Actor, viewport int) error {
	if err := r.mem.RemoveActor(a, viewport); err != nil {
		return err
	}
	r.publish(EventRemove, a, viewport, false)
	if len(r.mem.Attached(a)) == 0 {
		r.idsMu.Lock()
		delete(r.actorIDs, a)
		r.idsMu.Unlock()
	}
	return nil
}

func (r *Renderer) Modified(a *scene.Actor) error {
	if err := r.mem.Modified(a); err != nil {
		return err
	}
	r.publish(EventModify, a, 0, false)
	return nil
}

func (r *Renderer) actorID(a *scene.Actor) uint64 {
	r.idsMu.Lock()
	defer r.idsMu.Unlock()
	id, ok := r.actorIDs[a]
	if !ok {
		r.nextID++
		id = r.nextID
		r.actorIDs[a] = id
	}
	return id
}

func (r *Renderer) encode(t EventType, a *scene.Actor, viewport int, snapshot bool) (*event, error) {
	seq := r.eventCount.Add(1)
	msg, err := encodeEvent(seq, t, r.actorID(a), viewport, a, snapshot)
	if err != nil {
		return nil, err
	}
	return &event{seq: seq, viewport: viewport, msg: msg}, nil
}

func (r *Renderer) publish(t EventType, a *scene.Actor, viewport int, snapshot bool) {
	if !r.running.Load() {
		return
	}
	ev, err := r.encode(t, a, viewport, snapshot)
	if err != nil {
		log.Printf("[Stream] Failed to encode %s event: %v", t, err)
		return
	}
	select {
	case r.events <- ev:
	default:
		dropped := r.droppedEvents.Add(1)
		log.Printf("[Stream] DROPPED %s event %d (total dropped: %d), queue full", t, ev.seq, dropped)
	}
}

// Start listens on the configured address and serves in the background.
func (r *Renderer) Start() error {
	log.Printf("[Stream] Attempting to bind to %s...", r.config.ListenAddr)
	lis, err := net.Listen("tcp", r.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	log.Printf("[Stream] Successfully bound to %s", lis.Addr())
	return r.Serve(lis)
}

// Serve starts the gRPC server on lis and the broadcast loop.
func (r *Renderer) Serve(lis net.Listener) error {
	if r.running.Load() {
		return fmt.Errorf("stream renderer already running")
	}
	r.listener = lis

	// Point clouds can be large; the default 4MB limit is too small.
	const maxMsgSize = 16 * 1024 * 1024 // 16 MB
	r.server = grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
	)
	r.server.RegisterService(&sceneServiceDesc, r)

	r.running.Store(true)

	r.wg.Add(1)
	go r.broadcastLoop()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		log.Printf("[Stream] gRPC server listening on %s", lis.Addr())
		if err := r.server.Serve(lis); err != nil && r.running.Load() {
			log.Printf("[Stream] gRPC server error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully stops the gRPC server.
func (r *Renderer) Stop() {
	if !r.running.Load() {
		return
	}
	r.running.Store(false)
	close(r.stopCh)

	if r.server != nil {
		r.server.GracefulStop()
	}
	if r.listener != nil {
		r.listener.Close()
	}

	r.wg.Wait()
	log.Printf("[Stream] gRPC server stopped")
}

// broadcastLoop distributes events to all connected clients.
func (r *Renderer) broadcastLoop() {
	defer r.wg.Done()

	statsTicker := time.NewTicker(30 * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-statsTicker.C:
			s := r.Stats()
			log.Printf("[Stream] Stats: events=%d dropped=%d clients=%d", s.EventCount, s.DroppedEvents, s.ClientCount)
		case ev := <-r.events:
			r.clientsMu.RLock()
			for _, c := range r.clients {
				if c.viewport != 0 && ev.viewport != 0 && c.viewport != ev.viewport {
					continue
				}
				select {
				case c.eventCh <- ev:
				default:
					// Client is slow, drop the event for this client.
					r.droppedEvents.Add(1)
				}
			}
			r.clientsMu.RUnlock()
		}
	}
}

// addClient registers a new streaming client.
func (r *Renderer) addClient(id string, viewport int) (*client, error) {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()
	if r.config.MaxClients > 0 && len(r.clients) >= r.config.MaxClients {
		return nil, fmt.Errorf("client limit %d reached", r.config.MaxClients)
	}
	c := &client{
		id:       id,
		viewport: viewport,
		eventCh:  make(chan *event, max(r.config.ClientQueueSize, 1)),
		doneCh:   make(chan struct{}),
	}
	r.clients[id] = c
	r.clientCount.Add(1)
	log.Printf("[Stream] Client connected: %s (total: %d)", id, r.clientCount.Load())
	return c, nil
}

// removeClient unregisters a streaming client.
func (r *Renderer) removeClient(id string) {
	r.clientsMu.Lock()
	if c, ok := r.clients[id]; ok {
		close(c.doneCh)
		delete(r.clients, id)
		r.clientsMu.Unlock()
		r.clientCount.Add(-1)
		log.Printf("[Stream] Client disconnected: %s (remaining: %d)", id, r.clientCount.Load())
	} else {
		r.clientsMu.Unlock()
	}
}

// Stats returns current renderer statistics.
func (r *Renderer) Stats() Stats {
	return Stats{
		EventCount:    r.eventCount.Load(),
		DroppedEvents: r.droppedEvents.Load(),
		ClientCount:   r.clientCount.Load(),
		Running:       r.running.Load(),
	}
}

// Stats contains stream statistics.
type Stats struct {
	EventCount    uint64
	DroppedEvents uint64
	ClientCount   int32
	Running       bool
}
