// Package modeler assembles a triangle mesh of the cyclone body from its
// derived dimensions and writes it out for CAD and game-engine import.
package modeler

import (
	"math"

	"Plant3D/internal/calc/geometry"
)

const (
	bodySections   = 64
	nozzleSections = 32
	// inlet duct top sits this far below the roof
	inletDropMM        = 50.0
	gasOutletRiseMM    = 100.0
	solidsOutletLength = 200.0
)

type Vec3 [3]float64

func (a Vec3) sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a Vec3) cross(b Vec3) Vec3 {
	return Vec3{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func (a Vec3) norm() float64 { return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2]) }

// Mesh is an indexed triangle list. Faces are counter-clockwise seen from outside.
type Mesh struct {
	Vertices []Vec3
	Faces    [][3]int
}

func (m *Mesh) append(o Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
	}
}

type Bounds struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

func (m Mesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = math.Min(b.Min[i], v[i])
			b.Max[i] = math.Max(b.Max[i], v[i])
		}
	}
	return b
}

func (m Mesh) SurfaceArea() float64 {
	total := 0.0
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		total += b.sub(a).cross(c.sub(a)).norm() / 2
	}
	return total
}

// frustum builds the side wall between two coaxial rings on the z axis,
// optionally closing either end with a fan.
func frustum(rBottom, rTop, zBottom, zTop float64, sections int, capBottom, capTop bool) Mesh {
	var m Mesh
	for i := 0; i < sections; i++ {
		a := 2 * math.Pi * float64(i) / float64(sections)
		c, s := math.Cos(a), math.Sin(a)
		m.Vertices = append(m.Vertices,
			Vec3{rBottom * c, rBottom * s, zBottom},
			Vec3{rTop * c, rTop * s, zTop},
		)
	}
	for i := 0; i < sections; i++ {
		j := (i + 1) % sections
		b0, t0, b1, t1 := 2*i, 2*i+1, 2*j, 2*j+1
		m.Faces = append(m.Faces, [3]int{b0, b1, t1}, [3]int{b0, t1, t0})
	}
	if capBottom {
		center := len(m.Vertices)
		m.Vertices = append(m.Vertices, Vec3{0, 0, zBottom})
		for i := 0; i < sections; i++ {
			j := (i + 1) % sections
			m.Faces = append(m.Faces, [3]int{center, 2 * j, 2 * i})
		}
	}
	if capTop {
		center := len(m.Vertices)
		m.Vertices = append(m.Vertices, Vec3{0, 0, zTop})
		for i := 0; i < sections; i++ {
			j := (i + 1) % sections
			m.Faces = append(m.Faces, [3]int{center, 2*i + 1, 2*j + 1})
		}
	}
	return m
}

func box(center, size Vec3) Mesh {
	hx, hy, hz := size[0]/2, size[1]/2, size[2]/2
	var m Mesh
	for _, z := range []float64{-hz, hz} {
		for _, y := range []float64{-hy, hy} {
			for _, x := range []float64{-hx, hx} {
				m.Vertices = append(m.Vertices, Vec3{center[0] + x, center[1] + y, center[2] + z})
			}
		}
	}
	// vertex index bits: x=1, y=2, z=4
	m.Faces = [][3]int{
		{0, 2, 3}, {0, 3, 1}, // bottom
		{4, 5, 7}, {4, 7, 6}, // top
		{0, 1, 5}, {0, 5, 4}, // y-
		{2, 6, 7}, {2, 7, 3}, // y+
		{0, 4, 6}, {0, 6, 2}, // x-
		{1, 3, 7}, {1, 7, 5}, // x+
	}
	return m
}

// Build lays the body out with the cylinder roof at z = cylinder height and
// the cone/cylinder seam at z = 0.
func Build(g geometry.Result) Mesh {
	r := g.CylinderDiameterMM / 2
	var m Mesh

	m.append(frustum(r, r, 0, g.CylinderHeightMM, bodySections, false, true))
	m.append(frustum(g.ConeOutletDiameterMM/2, r, -g.ConeHeightMM, 0, bodySections, false, false))

	inletX := r + g.InletLengthMM/2 - g.WallThicknessMM/2
	inletZ := g.CylinderHeightMM - g.InletHeightMM/2 - inletDropMM
	m.append(box(Vec3{inletX, 0, inletZ}, Vec3{g.InletLengthMM, g.InletWidthMM, g.InletHeightMM}))

	gasLen := g.GasOutletHeightMM + gasOutletRiseMM + g.GasOutletExtensionMM
	gasMid := g.CylinderHeightMM + inletDropMM
	m.append(frustum(g.GasOutletDiameterMM/2, g.GasOutletDiameterMM/2,
		gasMid-gasLen/2, gasMid+gasLen/2, nozzleSections, true, true))

	m.append(frustum(g.SolidsOutletDiameter/2, g.SolidsOutletDiameter/2,
		-g.ConeHeightMM-solidsOutletLength, -g.ConeHeightMM, nozzleSections, true, true))
	return m
}
