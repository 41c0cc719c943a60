package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// OBJ format errors.
var (
	ErrMalformedOBJLine = errors.New("malformed OBJ line")
	ErrInvalidOBJIndex  = errors.New("invalid OBJ index")
)

// objAbsent marks a face corner attribute that was not specified.
const objAbsent = -1

// OBJCorner holds zero-based attribute indices for one face corner.
type OBJCorner struct {
	V  int
	VT int // objAbsent if not specified
	VN int // objAbsent if not specified
}

// OBJFace is a polygon with three or more corners.
type OBJFace struct {
	Corners []OBJCorner
}

// OBJShape is a named group of faces (started by an "o" or "g" line).
type OBJShape struct {
	Name  string
	Faces []OBJFace
}

// OBJ holds the decoded contents of a Wavefront OBJ file.
// Attribute pools are shared by all shapes.
type OBJ struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Normals   []mgl32.Vec3
	Shapes    []OBJShape

	// Unsupported statements that were skipped, keyed by keyword.
	Skipped map[string]int
}

// ParseOBJ parses a Wavefront OBJ file from raw bytes.
// Materials (mtllib/usemtl), smoothing groups and free-form geometry are skipped.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{Skipped: make(map[string]int)}
	var current *OBJShape

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		var err error
		switch fields[0] {
		case "o", "g":
			name := fmt.Sprintf("shape%d", len(obj.Shapes))
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			obj.Shapes = append(obj.Shapes, OBJShape{Name: name})
			current = &obj.Shapes[len(obj.Shapes)-1]
		case "v":
			var v mgl32.Vec3
			v, err = parseVec3(fields[1:])
			obj.Positions = append(obj.Positions, v)
		case "vn":
			var n mgl32.Vec3
			n, err = parseVec3(fields[1:])
			obj.Normals = append(obj.Normals, n)
		case "vt":
			var t mgl32.Vec2
			t, err = parseVec2(fields[1:])
			obj.TexCoords = append(obj.TexCoords, t)
		case "f":
			if current == nil {
				// Faces before any o/g line belong to an implicit shape.
				obj.Shapes = append(obj.Shapes, OBJShape{Name: "default"})
				current = &obj.Shapes[len(obj.Shapes)-1]
			}
			var face OBJFace
			face, err = obj.parseFace(fields[1:])
			if err == nil {
				current.Faces = append(current.Faces, face)
			}
		default:
			obj.Skipped[fields[0]]++
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOBJ(data)
}

// LoadDiscreteTriangles parses OBJ data and returns one triangle mesh per
// non-empty shape. An OBJ with no faces yields an empty slice and no error.
func LoadDiscreteTriangles(data []byte) ([]TriangleMesh, error) {
	obj, err := ParseOBJ(data)
	if err != nil {
		return nil, err
	}
	return obj.DiscreteTriangles(), nil
}

// DiscreteTriangles converts every non-empty shape into a triangle mesh.
// Polygons are fan-triangulated and each triangle gets its own three
// vertices, so per-corner UVs and normals survive unchanged.
func (o *OBJ) DiscreteTriangles() []TriangleMesh {
	var meshes []TriangleMesh
	for i := range o.Shapes {
		shape := &o.Shapes[i]
		if len(shape.Faces) == 0 {
			continue
		}
		meshes = append(meshes, o.shapeMesh(shape))
	}
	return meshes
}

func (o *OBJ) shapeMesh(shape *OBJShape) TriangleMesh {
	mesh := TriangleMesh{Name: shape.Name}
	hasUV, hasNormal := true, true

	emit := func(c OBJCorner) int {
		idx := len(mesh.Vertices)
		mesh.Vertices = append(mesh.Vertices, o.Positions[c.V])
		var uv mgl32.Vec2
		if c.VT == objAbsent {
			hasUV = false
		} else {
			uv = o.TexCoords[c.VT]
		}
		mesh.UVs = append(mesh.UVs, uv)
		var n mgl32.Vec3
		if c.VN == objAbsent {
			hasNormal = false
		} else {
			n = o.Normals[c.VN]
		}
		mesh.Normals = append(mesh.Normals, n)
		return idx
	}

	for _, face := range shape.Faces {
		for k := 2; k < len(face.Corners); k++ {
			a := emit(face.Corners[0])
			b := emit(face.Corners[k-1])
			c := emit(face.Corners[k])
			mesh.Elements = append(mesh.Elements, [3]int{a, b, c})
		}
	}

	if !hasUV {
		mesh.UVs = nil
	}
	if !hasNormal {
		mesh.ComputeNormals()
	}
	return mesh
}

// parseFace parses "f v[/vt][/vn] ..." corners against the pools read so far.
func (o *OBJ) parseFace(fields []string) (OBJFace, error) {
	if len(fields) < 3 {
		return OBJFace{}, fmt.Errorf("%w: face with %d corners", ErrMalformedOBJLine, len(fields))
	}
	face := OBJFace{Corners: make([]OBJCorner, 0, len(fields))}
	for _, f := range fields {
		parts := strings.Split(f, "/")
		if len(parts) > 3 {
			return OBJFace{}, fmt.Errorf("%w: corner %q", ErrMalformedOBJLine, f)
		}
		c := OBJCorner{VT: objAbsent, VN: objAbsent}
		var err error
		if c.V, err = resolveOBJIndex(parts[0], len(o.Positions)); err != nil {
			return OBJFace{}, err
		}
		if len(parts) > 1 && parts[1] != "" {
			if c.VT, err = resolveOBJIndex(parts[1], len(o.TexCoords)); err != nil {
				return OBJFace{}, err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if c.VN, err = resolveOBJIndex(parts[2], len(o.Normals)); err != nil {
				return OBJFace{}, err
			}
		}
		face.Corners = append(face.Corners, c)
	}
	return face, nil
}

// resolveOBJIndex converts a one-based (or negative, relative) OBJ index to
// a zero-based index into a pool of size n.
func resolveOBJIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOBJIndex, s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i = n + i
	default:
		return 0, fmt.Errorf("%w: zero index", ErrInvalidOBJIndex)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %s (pool size %d)", ErrInvalidOBJIndex, s, n)
	}
	return i, nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrMalformedOBJLine, len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("%w: %v", ErrMalformedOBJLine, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseVec2(fields []string) (mgl32.Vec2, error) {
	// "vt u" is legal; v defaults to 0.
	if len(fields) < 1 {
		return mgl32.Vec2{}, fmt.Errorf("%w: expected 2 components, got %d", ErrMalformedOBJLine, len(fields))
	}
	var v mgl32.Vec2
	for i := 0; i < 2 && i < len(fields); i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec2{}, fmt.Errorf("%w: %v", ErrMalformedOBJLine, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
