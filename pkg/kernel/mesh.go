package kernel

// Mesh is a triangle mesh for downstream consumers.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32  `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32  `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32   `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string     `json:"partName"` // name of the shape this came from
	Color    [4]float64 `json:"color"`    // RGBA, passed through from the shape
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// returns zero vectors.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if m.IsEmpty() {
		return min, max
	}
	for j := 0; j < 3; j++ {
		min[j], max[j] = m.Vertices[j], m.Vertices[j]
	}
	for i := 3; i < len(m.Vertices); i += 3 {
		for j := 0; j < 3; j++ {
			v := m.Vertices[i+j]
			if v < min[j] {
				min[j] = v
			}
			if v > max[j] {
				max[j] = v
			}
		}
	}
	return min, max
}
