package cloud

// GeometryHandler selects which per-point quantity is drawn as vertex
// positions.
type GeometryHandler interface {
	// Name identifies the handler kind.
	Name() string
	// FieldName names the source fields the geometry comes from.
	FieldName() string
	// Capable reports whether the input carries the required fields.
	Capable() bool
	// Geometry returns the positions to draw.
	Geometry() *Buffer
}

// XYZHandler draws point positions.
type XYZHandler struct {
	cloud *Buffer
}

// NewXYZHandler returns a handler over the positions of b.
func NewXYZHandler(b *Buffer) *XYZHandler {
	return &XYZHandler{cloud: b}
}

func (h *XYZHandler) Name() string      { return "PointCloudGeometryHandlerXYZ" }
func (h *XYZHandler) FieldName() string { return "xyz" }
func (h *XYZHandler) Capable() bool     { return h.cloud != nil && h.cloud.Validate() == nil }
func (h *XYZHandler) Geometry() *Buffer { return h.cloud }

// NormalHandler draws surface normal vectors as if they were positions,
// which shows the distribution of orientations on the unit sphere.
type NormalHandler struct {
	cloud   *Buffer
	normals *Buffer
}

// NewNormalHandler returns a handler over the normals of a cloud. The
// normals buffer must match the cloud's layout.
func NewNormalHandler(cloud, normals *Buffer) *NormalHandler {
	return &NormalHandler{cloud: cloud, normals: normals}
}

func (h *NormalHandler) Name() string      { return "PointCloudGeometryHandlerSurfaceNormal" }
func (h *NormalHandler) FieldName() string { return "normal_x_normal_y_normal_z" }

func (h *NormalHandler) Capable() bool {
	if h.cloud == nil || h.normals == nil {
		return false
	}
	return h.normals.Validate() == nil && h.cloud.SameShape(h.normals)
}

func (h *NormalHandler) Geometry() *Buffer {
	if h.normals == nil {
		return nil
	}
	g := *h.normals
	if h.cloud != nil {
		g.Sensor = h.cloud.Sensor
	}
	return &g
}
