package scene

import (
	"errors"
	"fmt"
	"sync"
)

// ErrViewport is returned for a pane index outside [0, Viewports()].
var ErrViewport = errors.New("scene: no such viewport")

// Memory is an in-process scene tree: a fixed number of panes, each holding
// an ordered set of attached actors. It is safe for concurrent use so that
// diagnostics can read it while the owner mutates it.
type Memory struct {
	mu    sync.RWMutex
	panes [][]*Actor
}

// NewMemory returns a scene with n panes (at least one).
func NewMemory(n int) *Memory {
	if n < 1 {
		n = 1
	}
	return &Memory{panes: make([][]*Actor, n)}
}

func (m *Memory) Viewports() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.panes)
}

// targets returns the zero-based pane indices addressed by viewport.
func (m *Memory) targets(viewport int) ([]int, error) {
	if viewport < 0 || viewport > len(m.panes) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrViewport, viewport, len(m.panes))
	}
	if viewport != 0 {
		return []int{viewport - 1}, nil
	}
	all := make([]int, len(m.panes))
	for i := range all {
		all[i] = i
	}
	return all, nil
}

// AddActor attaches a to the addressed panes. Attaching an actor that is
// already present in a pane is a no-op for that pane.
func (m *Memory) AddActor(a *Actor, viewport int) error {
	if a == nil {
		return errors.New("scene: nil actor")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, err := m.targets(viewport)
	if err != nil {
		return err
	}
	for _, p := range idx {
		if indexOf(m.panes[p], a) < 0 {
			m.panes[p] = append(m.panes[p], a)
		}
	}
	return nil
}

// RemoveActor detaches a from the addressed panes. Detaching an actor that
// is not attached is a no-op.
func (m *Memory) RemoveActor(a *Actor, viewport int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, err := m.targets(viewport)
	if err != nil {
		return err
	}
	for _, p := range idx {
		if i := indexOf(m.panes[p], a); i >= 0 {
			m.panes[p] = append(m.panes[p][:i], m.panes[p][i+1:]...)
		}
	}
	return nil
}

func (m *Memory) Modified(a *Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.revision++
	return nil
}

// Actors returns a copy of the actors attached to pane (1-based).
func (m *Memory) Actors(pane int) []*Actor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pane < 1 || pane > len(m.panes) {
		return nil
	}
	return append([]*Actor(nil), m.panes[pane-1]...)
}

// Attached reports the 1-based panes holding a.
func (m *Memory) Attached(a *Actor) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []int
	for p, actors := range m.panes {
		if indexOf(actors, a) >= 0 {
			out = append(out, p+1)
		}
	}
	return out
}

// Count returns the total number of attachments across all panes.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, actors := range m.panes {
		n += len(actors)
	}
	return n
}

func indexOf(actors []*Actor, a *Actor) int {
	for i, x := range actors {
		if x == a {
			return i
		}
	}
	return -1
}
