// Package synthetic drives a Visualizer with generated scenes for demos and
// for exercising remote viewers without a real data source.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointviz/internal/config"
	"github.com/banshee-data/pointviz/internal/timeutil"
	"github.com/banshee-data/pointviz/internal/viz/cloud"
)

// Frame is one generated scene state.
type Frame struct {
	FrameID uint64
	Elapsed float64 // seconds since the generator started

	// Surface is the organized wave grid with sensor dropouts set to NaN.
	Surface *cloud.Buffer
	// Clean is the same grid without dropouts, used as the normals anchor.
	Clean   *cloud.Buffer
	Normals *cloud.Buffer
	Colors  *cloud.Colors

	Markers []Marker
}

// Marker is a moving object circling the surface.
type Marker struct {
	ID       string
	Position r3.Vec
	Velocity r3.Vec
}

// Generator produces a rolling wave surface and a set of circling markers.
type Generator struct {
	frameID   atomic.Uint64
	sessionID string
	clock     timeutil.Clock
	start     time.Time

	// Configuration
	GridSize       int     // points per grid edge
	FrameRate      float64 // frames per second
	AreaRadius     float64 // metres, half extent of the grid
	WaveHeight     float64 // metres, amplitude of the surface wave
	WaveSpeed      float64 // radians per second of phase drift
	DropoutRate    float64 // fraction of points returned as NaN
	MarkerCount    int
	MarkerRadius   float64 // metres, radius of the marker paths
	MarkerSpeedMPS float64

	// Internal state
	rng *rand.Rand
}

// NewGenerator creates a generator with demo defaults. An empty sessionID is
// replaced with a random UUID.
func NewGenerator(sessionID string) *Generator {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	clock := timeutil.RealClock{}
	return &Generator{
		sessionID:      sessionID,
		clock:          clock,
		start:          clock.Now(),
		GridSize:       32,
		FrameRate:      10.0,
		AreaRadius:     10.0,
		WaveHeight:     0.5,
		WaveSpeed:      1.0,
		DropoutRate:    0.02,
		MarkerCount:    3,
		MarkerRadius:   6.0,
		MarkerSpeedMPS: 2.0,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewGeneratorFromConfig applies the synthetic source settings of cfg.
func NewGeneratorFromConfig(cfg *config.ViewerConfig) *Generator {
	g := NewGenerator("")
	g.GridSize = cfg.GetGridSize()
	g.FrameRate = cfg.GetFrameRate()
	return g
}

// SessionID returns the identifier prefixed to every scene ID.
func (g *Generator) SessionID() string { return g.sessionID }

// SetClock replaces the time source and restarts elapsed time from its
// current reading.
func (g *Generator) SetClock(c timeutil.Clock) {
	g.clock = c
	g.start = c.Now()
}

// Seed makes the dropout pattern reproducible.
func (g *Generator) Seed(seed int64) {
	g.rng = rand.New(rand.NewSource(seed))
}

// NextFrame generates the frame for the current clock reading.
func (g *Generator) NextFrame() *Frame {
	return g.FrameAt(g.clock.Since(g.start).Seconds())
}

// FrameAt generates the frame elapsedSecs after start.
func (g *Generator) FrameAt(elapsedSecs float64) *Frame {
	frame := &Frame{
		FrameID: g.frameID.Add(1),
		Elapsed: elapsedSecs,
	}
	g.generateSurface(frame)
	frame.Markers = g.generateMarkers(elapsedSecs)
	return frame
}

func (g *Generator) generateSurface(f *Frame) {
	n := g.GridSize
	clean := make([]cloud.Point, n*n)
	surface := make([]cloud.Point, n*n)
	normals := make([]cloud.Point, n*n)
	rgb := make([]cloud.RGB, n*n)

	k := 2 * math.Pi / g.AreaRadius
	phase := f.Elapsed * g.WaveSpeed
	step := 2 * g.AreaRadius / float64(n-1)

	for row := 0; row < n; row++ {
		y := -g.AreaRadius + float64(row)*step
		for col := 0; col < n; col++ {
			x := -g.AreaRadius + float64(col)*step
			i := row*n + col

			// z = A sin(kx + phase) cos(ky)
			z := g.WaveHeight * math.Sin(k*x+phase) * math.Cos(k*y)
			dzdx := g.WaveHeight * k * math.Cos(k*x+phase) * math.Cos(k*y)
			dzdy := -g.WaveHeight * k * math.Sin(k*x+phase) * math.Sin(k*y)
			norm := math.Sqrt(dzdx*dzdx + dzdy*dzdy + 1)

			clean[i] = cloud.Point{X: float32(x), Y: float32(y), Z: float32(z)}
			normals[i] = cloud.Point{
				X: float32(-dzdx / norm),
				Y: float32(-dzdy / norm),
				Z: float32(1 / norm),
			}
			rgb[i] = heightColor(z, g.WaveHeight)

			surface[i] = clean[i]
			if g.rng.Float64() < g.DropoutRate {
				nan := float32(math.NaN())
				surface[i] = cloud.Point{X: nan, Y: nan, Z: nan}
			}
		}
	}

	f.Clean = &cloud.Buffer{Points: clean, Width: n, Height: n}
	f.Surface = &cloud.Buffer{Points: surface, Width: n, Height: n}
	f.Normals = &cloud.Buffer{Points: normals, Width: n, Height: n}
	f.Colors = cloud.RGBColors(rgb)
}

// heightColor ramps from blue at the trough to red at the crest.
func heightColor(z, amplitude float64) cloud.RGB {
	t := 0.5
	if amplitude > 0 {
		t = (z/amplitude + 1) / 2
	}
	t = math.Max(0, math.Min(1, t))
	return cloud.RGB{R: uint8(255 * t), G: 64, B: uint8(255 * (1 - t))}
}

func (g *Generator) generateMarkers(elapsedSecs float64) []Marker {
	markers := make([]Marker, g.MarkerCount)
	angularSpeed := g.MarkerSpeedMPS / g.MarkerRadius

	for i := 0; i < g.MarkerCount; i++ {
		baseAngle := float64(i) * 2 * math.Pi / float64(g.MarkerCount)
		angle := baseAngle + elapsedSecs*angularSpeed

		markers[i] = Marker{
			ID: fmt.Sprintf("marker-%03d", i+1),
			Position: r3.Vec{
				X: g.MarkerRadius * math.Cos(angle),
				Y: g.MarkerRadius * math.Sin(angle),
				Z: g.WaveHeight + 0.5,
			},
			Velocity: r3.Vec{
				X: -g.MarkerSpeedMPS * math.Sin(angle),
				Y: g.MarkerSpeedMPS * math.Cos(angle),
			},
		}
	}
	return markers
}
