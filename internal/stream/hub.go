// Package stream broadcasts a growing aggregation world to websocket clients.
package stream

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"dla/internal/sims/aggregation"
	"dla/pkg/dla"

	"github.com/gorilla/websocket"
)

// Message types sent to clients.
const (
	TypeSnapshot  = "snapshot"
	TypeParticles = "particles"
	TypeStatus    = "status"
)

// Client actions.
const (
	ActionReset  = "reset"
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionSet    = "set"
)

// ParticleData is the wire form of a stuck particle.
type ParticleData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
	Parent int     `json:"parent"`
}

// Message is pushed to clients. Particles hold cluster indices Start,
// Start+1, ... so clients can place them idempotently.
type Message struct {
	Type      string         `json:"type"`
	Start     int            `json:"start"`
	Particles []ParticleData `json:"particles,omitempty"`
	Size      int            `json:"size"`
	Radius    float64        `json:"radius"`
	Dimension float64        `json:"dimension"`
	Seed      int64          `json:"seed"`
	Paused    bool           `json:"paused"`
	Done      bool           `json:"done"`
	Error     string         `json:"error,omitempty"`
}

// Command is read from clients.
type Command struct {
	Action string `json:"action"`
	Seed   int64  `json:"seed,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  string `json:"value,omitempty"`
}

// DefaultTickBudget bounds how long one Tick may grow while holding the world.
const DefaultTickBudget = 50 * time.Millisecond

// Hub owns a world and fans its growth out to connected clients.
type Hub struct {
	mu     sync.Mutex
	world  *aggregation.World
	sent   int
	paused bool
	budget time.Duration

	upgrader     websocket.Upgrader
	clientsMutex sync.RWMutex
	clients      map[*websocket.Conn]*sync.Mutex
}

// NewHub wraps world. All origins are accepted.
func NewHub(world *aggregation.World) *Hub {
	return &Hub{
		world:  world,
		sent:   world.Engine().Cluster().Size(),
		budget: DefaultTickBudget,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request, sends a snapshot and then applies client
// commands until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("stream: upgrade:", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	h.clientsMutex.Lock()
	h.clients[conn] = connMutex
	h.clientsMutex.Unlock()
	defer func() {
		h.clientsMutex.Lock()
		delete(h.clients, conn)
		h.clientsMutex.Unlock()
	}()

	h.mu.Lock()
	snapshot := h.snapshot()
	h.mu.Unlock()
	connMutex.Lock()
	err = conn.WriteJSON(snapshot)
	connMutex.Unlock()
	if err != nil {
		log.Println("stream: write:", err)
		return
	}

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("stream: read:", err)
			}
			return
		}
		h.broadcast(h.apply(cmd))
	}
}

func (h *Hub) apply(cmd Command) Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch cmd.Action {
	case ActionReset:
		h.world.Reset(cmd.Seed)
		return h.snapshot()
	case ActionPause:
		h.paused = true
	case ActionResume:
		h.paused = false
	case ActionSet:
		if !h.set(cmd.Key, cmd.Value) {
			msg := h.status()
			msg.Error = "rejected " + cmd.Key + "=" + cmd.Value
			return msg
		}
	default:
		msg := h.status()
		msg.Error = "unknown action " + strconv.Quote(cmd.Action)
		return msg
	}
	return h.status()
}

func (h *Hub) set(key, value string) bool {
	if v, err := strconv.Atoi(value); err == nil && h.world.SetIntParameter(key, v) {
		return true
	}
	if v, err := strconv.ParseFloat(value, 64); err == nil && h.world.SetFloatParameter(key, v) {
		return true
	}
	if v, err := strconv.ParseBool(value); err == nil && h.world.SetBoolParameter(key, v) {
		return true
	}
	return false
}

// SetTickBudget changes the growth time allowed per Tick. Commands wait at
// most this long for a running Tick.
func (h *Hub) SetTickBudget(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d > 0 {
		h.budget = d
	}
}

// Tick grows one burst unless paused and broadcasts the new particles. A
// burst that outlasts the tick budget continues on the next Tick.
func (h *Hub) Tick(ctx context.Context) error {
	h.mu.Lock()
	var err error
	if !h.paused {
		stepCtx, cancel := context.WithTimeout(ctx, h.budget)
		err = h.world.StepContext(stepCtx)
		if err != nil && ctx.Err() == nil && stepCtx.Err() != nil {
			err = nil
		}
		cancel()
	}
	size := h.world.Engine().Cluster().Size()
	if size <= h.sent {
		h.mu.Unlock()
		return err
	}
	msg := h.status()
	msg.Type = TypeParticles
	msg.Start = h.sent
	msg.Particles = wireParticles(h.world.Particles()[h.sent:])
	h.sent = size
	h.mu.Unlock()

	h.broadcast(msg)
	return err
}

// Run ticks every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := h.Tick(ctx); err != nil && ctx.Err() == nil {
				log.Printf("stream: tick: %v", err)
			}
		}
	}
}

func (h *Hub) broadcast(msg Message) {
	h.clientsMutex.RLock()
	var failed []*websocket.Conn
	for client, mutex := range h.clients {
		mutex.Lock()
		err := client.WriteJSON(msg)
		mutex.Unlock()
		if err != nil {
			log.Println("stream: write:", err)
			client.Close()
			failed = append(failed, client)
		}
	}
	h.clientsMutex.RUnlock()

	if len(failed) > 0 {
		h.clientsMutex.Lock()
		for _, client := range failed {
			delete(h.clients, client)
		}
		h.clientsMutex.Unlock()
	}
}

// snapshot and status expect h.mu to be held.
func (h *Hub) snapshot() Message {
	msg := h.status()
	msg.Type = TypeSnapshot
	msg.Start = 0
	msg.Particles = wireParticles(h.world.Particles())
	h.sent = len(msg.Particles)
	return msg
}

func (h *Hub) status() Message {
	cluster := h.world.Engine().Cluster()
	msg := Message{
		Type:      TypeStatus,
		Start:     h.sent,
		Size:      cluster.Size(),
		Radius:    cluster.Radius(),
		Dimension: cluster.FractalDimension(),
		Seed:      h.world.Engine().Seed(),
		Paused:    h.paused,
		Done:      h.world.Done(),
	}
	if err := h.world.Err(); err != nil {
		msg.Error = err.Error()
	}
	return msg
}

func wireParticles(ps []dla.Particle) []ParticleData {
	out := make([]ParticleData, len(ps))
	for i, p := range ps {
		out[i] = ParticleData{X: p.X, Y: p.Y, Radius: p.Radius, Parent: p.ParentIndex}
	}
	return out
}
