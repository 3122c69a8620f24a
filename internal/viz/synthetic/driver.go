package synthetic

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pointviz/internal/viz"
	"github.com/banshee-data/pointviz/internal/viz/cloud"
)

// Scene is the subset of the Visualizer the driver uses.
type Scene interface {
	AddPointCloud(id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity, viewport int) error
	UpdatePointCloud(id string, pts *cloud.Buffer, colors *cloud.Colors, valid cloud.Validity) error
	AddPointCloudNormals(id string, pts, normals *cloud.Buffer, level int, scale float32, viewport int) error
	RemovePointCloud(id string) error
	AddPolygon(id string, pts *cloud.Buffer, c viz.Color, viewport int) error
	AddArrow(id string, p1, p2 r3.Vec, style viz.ArrowStyle, viewport int) error
	AddSphere(id string, center r3.Vec, radius float64, c viz.Color, viewport int) error
	UpdateSphere(id string, center r3.Vec, radius float64, c viz.Color) error
	AddText3D(text string, pos r3.Vec, scale float64, c viz.Color, id string, viewport int) error
	RemoveShape(id string) error
}

const (
	markerRadius = 0.4
	arrowSeconds = 1.0 // arrows show one second of travel
)

// Driver pushes generated frames into a Scene.
type Driver struct {
	gen      *Generator
	scene    Scene
	viewport int

	NormalsLevel int
	NormalsScale float32
	ShapeColor   viz.Color // boundary outline

	started bool
	frames  atomic.Uint64
}

// NewDriver creates a driver that draws into every viewport of s.
func NewDriver(gen *Generator, s Scene) *Driver {
	return &Driver{
		gen:          gen,
		scene:        s,
		NormalsLevel: 100,
		NormalsScale: 0.5,
		ShapeColor:   viz.Gray,
	}
}

// Frames returns the number of frames applied so far.
func (d *Driver) Frames() uint64 { return d.frames.Load() }

func (d *Driver) id(name string) string {
	return d.gen.sessionID + "/" + name
}

// Step applies one frame. The first call creates the scene objects, later
// calls update them in place.
func (d *Driver) Step(f *Frame) error {
	var err error
	if !d.started {
		err = d.setup(f)
	} else {
		err = d.update(f)
	}
	if err != nil {
		return err
	}
	d.started = true
	d.frames.Add(1)
	return nil
}

func (d *Driver) setup(f *Frame) error {
	if err := d.scene.AddPointCloud(d.id("surface"), f.Surface, f.Colors, cloud.Finite(), d.viewport); err != nil {
		return err
	}
	if err := d.scene.AddPointCloudNormals(d.id("normals"), f.Clean, f.Normals, d.NormalsLevel, d.NormalsScale, d.viewport); err != nil {
		return err
	}

	r := float32(d.gen.AreaRadius)
	boundary := cloud.FromPoints([]cloud.Point{
		{X: -r, Y: -r}, {X: r, Y: -r}, {X: r, Y: r}, {X: -r, Y: r},
	})
	if err := d.scene.AddPolygon(d.id("boundary"), boundary, d.ShapeColor, d.viewport); err != nil {
		return err
	}

	title := r3.Vec{X: -d.gen.AreaRadius, Y: d.gen.AreaRadius, Z: d.gen.WaveHeight + 1}
	if err := d.scene.AddText3D("session "+d.gen.sessionID, title, 0.5, viz.White, d.id("title"), d.viewport); err != nil {
		return err
	}

	for _, m := range f.Markers {
		if err := d.scene.AddSphere(d.id(m.ID), m.Position, markerRadius, viz.Red, d.viewport); err != nil {
			return err
		}
		if err := d.addHeading(m); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) update(f *Frame) error {
	if err := d.scene.UpdatePointCloud(d.id("surface"), f.Surface, f.Colors, cloud.Finite()); err != nil {
		return err
	}

	// Normals have no in-place update.
	if err := d.scene.RemovePointCloud(d.id("normals")); err != nil {
		return err
	}
	if err := d.scene.AddPointCloudNormals(d.id("normals"), f.Clean, f.Normals, d.NormalsLevel, d.NormalsScale, d.viewport); err != nil {
		return err
	}

	for _, m := range f.Markers {
		if err := d.scene.UpdateSphere(d.id(m.ID), m.Position, markerRadius, viz.Red); err != nil {
			return err
		}
		if err := d.scene.RemoveShape(d.id(m.ID + "/heading")); err != nil {
			return err
		}
		if err := d.addHeading(m); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) addHeading(m Marker) error {
	tip := r3.Add(m.Position, r3.Scale(arrowSeconds, m.Velocity))
	return d.scene.AddArrow(d.id(m.ID+"/heading"), m.Position, tip, viz.BasicArrow(viz.Blue), d.viewport)
}

// Run steps the scene at the generator frame rate until ctx is cancelled or,
// when duration is positive, until duration has elapsed.
func (d *Driver) Run(ctx context.Context, duration time.Duration) error {
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	frameInterval := time.Duration(float64(time.Second) / d.gen.FrameRate)
	ticker := d.gen.clock.NewTicker(frameInterval)
	defer ticker.Stop()

	log.Printf("[Synthetic] Session %s started: %dx%d grid at %.1f fps",
		d.gen.sessionID, d.gen.GridSize, d.gen.GridSize, d.gen.FrameRate)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Synthetic] Session %s stopped after %d frames", d.gen.sessionID, d.frames.Load())
			return nil
		case <-ticker.C():
			if err := d.Step(d.gen.NextFrame()); err != nil {
				log.Printf("[Synthetic] Step error: %v", err)
				return err
			}
		}
	}
}
