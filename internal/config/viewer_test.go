package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultViewerConfig(t *testing.T) {
	cfg := DefaultViewerConfig()

	if cfg.SpherePhiResolution == nil || *cfg.SpherePhiResolution != 10 {
		t.Errorf("Expected SpherePhiResolution 10, got %v", cfg.SpherePhiResolution)
	}
	if cfg.ListenAddr == nil || *cfg.ListenAddr != "localhost:50051" {
		t.Errorf("Expected ListenAddr localhost:50051, got %v", cfg.ListenAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEmptyViewerConfig_Getters(t *testing.T) {
	cfg := EmptyViewerConfig()

	if got := cfg.GetViewports(); got != 1 {
		t.Errorf("GetViewports() = %d, want 1", got)
	}
	if got := cfg.GetDefaultShapeColor(); got != [3]uint8{128, 128, 128} {
		t.Errorf("GetDefaultShapeColor() = %v, want gray", got)
	}
	if got := cfg.GetNormalsLevel(); got != 100 {
		t.Errorf("GetNormalsLevel() = %d, want 100", got)
	}
	if got := cfg.GetNormalsScale(); got != 0.02 {
		t.Errorf("GetNormalsScale() = %f, want 0.02", got)
	}
	if got := cfg.GetMaxClients(); got != 5 {
		t.Errorf("GetMaxClients() = %d, want 5", got)
	}
	if got := cfg.GetEventQueueSize(); got != 256 {
		t.Errorf("GetEventQueueSize() = %d, want 256", got)
	}
	if got := cfg.GetAdminAddr(); got != "localhost:8090" {
		t.Errorf("GetAdminAddr() = %q", got)
	}
	if got := cfg.GetSyntheticRun(); got != 0 {
		t.Errorf("GetSyntheticRun() = %v, want 0", got)
	}
}

func TestLoadViewerConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "viewer.json")

	testJSON := `{
  "viewports": 2,
  "sphere_phi_resolution": 16,
  "default_shape_color": [255, 0, 0],
  "listen_addr": "0.0.0.0:6000",
  "synthetic_run": "30s"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadViewerConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetViewports(); got != 2 {
		t.Errorf("GetViewports() = %d, want 2", got)
	}
	if got := cfg.GetSpherePhiResolution(); got != 16 {
		t.Errorf("GetSpherePhiResolution() = %d, want 16", got)
	}
	// Omitted fields fall back to defaults.
	if got := cfg.GetSphereThetaResolution(); got != 10 {
		t.Errorf("GetSphereThetaResolution() = %d, want 10", got)
	}
	if got := cfg.GetDefaultShapeColor(); got != [3]uint8{255, 0, 0} {
		t.Errorf("GetDefaultShapeColor() = %v", got)
	}
	if got := cfg.GetListenAddr(); got != "0.0.0.0:6000" {
		t.Errorf("GetListenAddr() = %q", got)
	}
	if got := cfg.GetSyntheticRun(); got != 30*time.Second {
		t.Errorf("GetSyntheticRun() = %v, want 30s", got)
	}
}

func TestLoadViewerConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("viewer.yaml", "{}"), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "missing.json"), "stat"},
		{"bad json", write("bad.json", "{"), "parse"},
		{"bad resolution", write("res.json", `{"sphere_phi_resolution": 2}`), "sphere_phi_resolution"},
		{"bad colour", write("col.json", `{"default_shape_color": [0, 300, 0]}`), "default_shape_color[1]"},
		{"bad addr", write("addr.json", `{"listen_addr": "nope"}`), "listen_addr"},
		{"bad duration", write("dur.json", `{"synthetic_run": "soon"}`), "synthetic_run"},
		{"bad level", write("lvl.json", `{"normals_level": 0}`), "normals_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadViewerConfig(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadViewerConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	big := make([]byte, 1024*1024+1)
	if err := os.WriteFile(p, big, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadViewerConfig(p); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestDefaultsFileMatchesAccessors(t *testing.T) {
	candidates := []string{DefaultConfigPath, "../../" + DefaultConfigPath}
	var cfg *ViewerConfig
	for _, p := range candidates {
		if c, err := LoadViewerConfig(p); err == nil {
			cfg = c
			break
		}
	}
	if cfg == nil {
		t.Skip("defaults file not found")
	}
	empty := EmptyViewerConfig()
	if cfg.GetSpherePhiResolution() != empty.GetSpherePhiResolution() ||
		cfg.GetNormalsLevel() != empty.GetNormalsLevel() ||
		cfg.GetListenAddr() != empty.GetListenAddr() ||
		cfg.GetGridSize() != empty.GetGridSize() {
		t.Errorf("%s drifted from accessor defaults", DefaultConfigPath)
	}
}
