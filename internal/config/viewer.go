package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical viewer defaults file.
const DefaultConfigPath = "config/viewer.defaults.json"

// ViewerConfig is the root configuration for the point cloud viewer. Every
// field is optional; the Get* accessors supply defaults for omitted values.
type ViewerConfig struct {
	// Scene params
	Viewports             *int     `json:"viewports,omitempty"`
	SpherePhiResolution   *int     `json:"sphere_phi_resolution,omitempty"`
	SphereThetaResolution *int     `json:"sphere_theta_resolution,omitempty"`
	DefaultShapeColor     *[3]int  `json:"default_shape_color,omitempty"` // r, g, b in 0..255
	NormalsLevel          *int     `json:"normals_level,omitempty"`
	NormalsScale          *float64 `json:"normals_scale,omitempty"`

	// Stream params
	ListenAddr      *string `json:"listen_addr,omitempty"`
	MaxClients      *int    `json:"max_clients,omitempty"`
	EventQueueSize  *int    `json:"event_queue_size,omitempty"`
	ClientQueueSize *int    `json:"client_queue_size,omitempty"`

	// Admin params
	AdminAddr *string `json:"admin_addr,omitempty"`

	// Synthetic source params
	FrameRate    *float64 `json:"frame_rate,omitempty"`
	GridSize     *int     `json:"grid_size,omitempty"`
	SyntheticRun *string  `json:"synthetic_run,omitempty"` // duration string like "30s"; empty runs forever
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyViewerConfig returns a ViewerConfig with all fields set to nil.
func EmptyViewerConfig() *ViewerConfig {
	return &ViewerConfig{}
}

// DefaultViewerConfig returns a ViewerConfig with every field populated
// from the accessor defaults.
func DefaultViewerConfig() *ViewerConfig {
	empty := EmptyViewerConfig()
	color := empty.GetDefaultShapeColor()
	return &ViewerConfig{
		Viewports:             ptrInt(empty.GetViewports()),
		SpherePhiResolution:   ptrInt(empty.GetSpherePhiResolution()),
		SphereThetaResolution: ptrInt(empty.GetSphereThetaResolution()),
		DefaultShapeColor:     &[3]int{int(color[0]), int(color[1]), int(color[2])},
		NormalsLevel:          ptrInt(empty.GetNormalsLevel()),
		NormalsScale:          ptrFloat64(float64(empty.GetNormalsScale())),
		ListenAddr:            ptrString(empty.GetListenAddr()),
		MaxClients:            ptrInt(empty.GetMaxClients()),
		EventQueueSize:        ptrInt(empty.GetEventQueueSize()),
		ClientQueueSize:       ptrInt(empty.GetClientQueueSize()),
		AdminAddr:             ptrString(empty.GetAdminAddr()),
		FrameRate:             ptrFloat64(empty.GetFrameRate()),
		GridSize:              ptrInt(empty.GetGridSize()),
		SyntheticRun:          ptrString(""),
	}
}

// LoadViewerConfig loads a ViewerConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file fall back to defaults, so partial
// configs are safe.
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyViewerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *ViewerConfig) Validate() error {
	if c.Viewports != nil && (*c.Viewports < 1 || *c.Viewports > 16) {
		return fmt.Errorf("viewports must be between 1 and 16, got %d", *c.Viewports)
	}
	if c.SpherePhiResolution != nil && *c.SpherePhiResolution < 3 {
		return fmt.Errorf("sphere_phi_resolution must be at least 3, got %d", *c.SpherePhiResolution)
	}
	if c.SphereThetaResolution != nil && *c.SphereThetaResolution < 3 {
		return fmt.Errorf("sphere_theta_resolution must be at least 3, got %d", *c.SphereThetaResolution)
	}
	if c.DefaultShapeColor != nil {
		for i, v := range c.DefaultShapeColor {
			if v < 0 || v > 255 {
				return fmt.Errorf("default_shape_color[%d] must be between 0 and 255, got %d", i, v)
			}
		}
	}
	if c.NormalsLevel != nil && *c.NormalsLevel < 1 {
		return fmt.Errorf("normals_level must be at least 1, got %d", *c.NormalsLevel)
	}
	if c.NormalsScale != nil && *c.NormalsScale <= 0 {
		return fmt.Errorf("normals_scale must be positive, got %f", *c.NormalsScale)
	}
	if c.ListenAddr != nil && *c.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(*c.ListenAddr); err != nil {
			return fmt.Errorf("invalid listen_addr '%s': %w", *c.ListenAddr, err)
		}
	}
	if c.AdminAddr != nil && *c.AdminAddr != "" {
		if _, _, err := net.SplitHostPort(*c.AdminAddr); err != nil {
			return fmt.Errorf("invalid admin_addr '%s': %w", *c.AdminAddr, err)
		}
	}
	if c.MaxClients != nil && *c.MaxClients < 1 {
		return fmt.Errorf("max_clients must be at least 1, got %d", *c.MaxClients)
	}
	if c.EventQueueSize != nil && *c.EventQueueSize < 1 {
		return fmt.Errorf("event_queue_size must be at least 1, got %d", *c.EventQueueSize)
	}
	if c.ClientQueueSize != nil && *c.ClientQueueSize < 1 {
		return fmt.Errorf("client_queue_size must be at least 1, got %d", *c.ClientQueueSize)
	}
	if c.FrameRate != nil && (*c.FrameRate <= 0 || *c.FrameRate > 120) {
		return fmt.Errorf("frame_rate must be in (0, 120], got %f", *c.FrameRate)
	}
	if c.GridSize != nil && *c.GridSize < 2 {
		return fmt.Errorf("grid_size must be at least 2, got %d", *c.GridSize)
	}
	if c.SyntheticRun != nil && *c.SyntheticRun != "" {
		if _, err := time.ParseDuration(*c.SyntheticRun); err != nil {
			return fmt.Errorf("invalid synthetic_run '%s': %w", *c.SyntheticRun, err)
		}
	}
	return nil
}

// GetViewports returns the number of render panes or the default.
func (c *ViewerConfig) GetViewports() int {
	if c.Viewports == nil {
		return 1
	}
	return *c.Viewports
}

// GetSpherePhiResolution returns the sphere latitude resolution or the default.
func (c *ViewerConfig) GetSpherePhiResolution() int {
	if c.SpherePhiResolution == nil {
		return 10
	}
	return *c.SpherePhiResolution
}

// GetSphereThetaResolution returns the sphere longitude resolution or the default.
func (c *ViewerConfig) GetSphereThetaResolution() int {
	if c.SphereThetaResolution == nil {
		return 10
	}
	return *c.SphereThetaResolution
}

// GetDefaultShapeColor returns the colour used when a caller does not pick
// one. The default is mid gray.
func (c *ViewerConfig) GetDefaultShapeColor() [3]uint8 {
	if c.DefaultShapeColor == nil {
		return [3]uint8{128, 128, 128}
	}
	v := *c.DefaultShapeColor
	return [3]uint8{uint8(v[0]), uint8(v[1]), uint8(v[2])}
}

// GetNormalsLevel returns the normals sampling level or the default.
func (c *ViewerConfig) GetNormalsLevel() int {
	if c.NormalsLevel == nil {
		return 100
	}
	return *c.NormalsLevel
}

// GetNormalsScale returns the normals segment length or the default.
func (c *ViewerConfig) GetNormalsScale() float32 {
	if c.NormalsScale == nil {
		return 0.02
	}
	return float32(*c.NormalsScale)
}

// GetListenAddr returns the scene stream gRPC address or the default.
func (c *ViewerConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return "localhost:50051"
	}
	return *c.ListenAddr
}

// GetMaxClients returns the subscriber limit or the default.
func (c *ViewerConfig) GetMaxClients() int {
	if c.MaxClients == nil {
		return 5
	}
	return *c.MaxClients
}

// GetEventQueueSize returns the broadcast queue depth or the default.
func (c *ViewerConfig) GetEventQueueSize() int {
	if c.EventQueueSize == nil {
		return 256
	}
	return *c.EventQueueSize
}

// GetClientQueueSize returns the per-subscriber queue depth or the default.
func (c *ViewerConfig) GetClientQueueSize() int {
	if c.ClientQueueSize == nil {
		return 64
	}
	return *c.ClientQueueSize
}

// GetAdminAddr returns the admin HTTP address or the default.
func (c *ViewerConfig) GetAdminAddr() string {
	if c.AdminAddr == nil || *c.AdminAddr == "" {
		return "localhost:8090"
	}
	return *c.AdminAddr
}

// GetFrameRate returns the synthetic source frame rate or the default.
func (c *ViewerConfig) GetFrameRate() float64 {
	if c.FrameRate == nil {
		return 10.0
	}
	return *c.FrameRate
}

// GetGridSize returns the synthetic organized grid edge length or the default.
func (c *ViewerConfig) GetGridSize() int {
	if c.GridSize == nil {
		return 32
	}
	return *c.GridSize
}

// GetSyntheticRun parses and returns how long the synthetic source runs.
// Zero means until cancelled.
func (c *ViewerConfig) GetSyntheticRun() time.Duration {
	if c.SyntheticRun == nil || *c.SyntheticRun == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.SyntheticRun)
	if err != nil {
		return 0 // default on parse error
	}
	return d
}
