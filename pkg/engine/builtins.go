package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/loopview/pkg/halfedge"
	"github.com/chazu/loopview/pkg/kernel"
	"github.com/chazu/loopview/pkg/primitive"
	"github.com/chazu/loopview/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: flip-winding -> flip_winding
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel.Solid so solids can be combined before they
// are meshed.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %s)", s.desc)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float returns the keyword argument name as a number, or def when absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// vec returns the keyword argument name as a vector, or def when absent.
func (a kwArgs) vec(name string, def v3.Vec) (v3.Vec, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	p, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a solid from a sexpSolid.
func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toPoint accepts either a single vec3 or three numbers starting at args[0].
func toPoint(args []zygo.Sexp) (v3.Vec, error) {
	switch len(args) {
	case 1:
		return toVec3(args[0])
	case 3:
		var c [3]float64
		for i := range c {
			f, err := toFloat64(args[i])
			if err != nil {
				return v3.Vec{}, fmt.Errorf("coordinate %d: %w", i, err)
			}
			c[i] = f
		}
		return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
	}
	return v3.Vec{}, fmt.Errorf("expected a vec3 or 3 numbers, got %d arguments", len(args))
}

func sexpInt(n int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(n)}
}

// ---------------------------------------------------------------------------
// Scene assembly
// ---------------------------------------------------------------------------

// sceneBuilder accumulates the soup while a script runs.
type sceneBuilder struct {
	soup   *halfedge.Soup
	level  int
	kernel kernel.Kernel
}

func (b *sceneBuilder) scene() *Scene {
	return &Scene{Soup: b.soup, Level: b.level}
}

// place appends s scaled about the origin and then translated by at. It
// returns the index of the first appended vertex.
func (b *sceneBuilder) place(s *halfedge.Soup, scale float64, at v3.Vec) int {
	first := b.soup.NumVertices()
	moved := &halfedge.Soup{Triangles: s.Triangles}
	for _, p := range s.Positions {
		moved.Positions = append(moved.Positions, p.MulScalar(scale).Add(at))
	}
	b.soup.Append(moved)
	return first
}

// requireKernel returns an error for solid builtins when no kernel is set.
func (b *sceneBuilder) requireKernel(op string) error {
	if b.kernel == nil {
		return fmt.Errorf("%s: no geometry kernel configured", op)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all scene builtins into a zygomys environment.
// The builtins append to b while the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *sceneBuilder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		p, err := toPoint(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: p}, nil
	})

	// -----------------------------------------------------------------------
	// (vertex 0 1 0) or (vertex (vec3 0 1 0)); returns the vertex index
	// -----------------------------------------------------------------------
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toPoint(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vertex: %w", err)
		}
		return sexpInt(b.soup.AddVertex(p)), nil
	})

	// -----------------------------------------------------------------------
	// (triangle a b c); corners are vertex indices in counter-clockwise order
	// -----------------------------------------------------------------------
	env.AddFunction("triangle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("triangle requires exactly 3 vertex indices, got %d", len(args))
		}
		var c [3]int
		for i := range c {
			v, err := toInt(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("triangle: corner %d: %w", i, err)
			}
			if v < 0 || v >= b.soup.NumVertices() {
				return zygo.SexpNull, fmt.Errorf("triangle: corner %d: vertex %d does not exist", i, v)
			}
			c[i] = v
		}
		b.soup.AddTriangle(c[0], c[1], c[2])
		return sexpInt(b.soup.NumTriangles() - 1), nil
	})

	// -----------------------------------------------------------------------
	// (tetrahedron :scale 2 :at (vec3 0 0 1)) and the other primitives;
	// returns the index of the first added vertex
	// -----------------------------------------------------------------------
	primitives := map[string]string{
		"tetrahedron":    "tetrahedron",
		"octahedron":     "octahedron",
		"icosahedron":    "icosahedron",
		"triangle-patch": "triangle",
	}
	for prim, source := range primitives {
		env.AddFunction(strings.ReplaceAll(prim, "-", "_"), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			scale, err := pa.float("scale", 1)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", prim, err)
			}
			at, err := pa.vec("at", v3.Vec{})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", prim, err)
			}
			s, _ := primitive.Named(source)
			return sexpInt(b.place(s, scale, at)), nil
		})
	}

	// -----------------------------------------------------------------------
	// (grid :cells 4 :scale 2 :at (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cells := 1
		if v, ok := pa.kw["cells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: cells: %w", err)
			}
			if n < 1 {
				return zygo.SexpNull, fmt.Errorf("grid: cells must be at least 1, got %d", n)
			}
			cells = n
		}
		scale, err := pa.float("scale", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		at, err := pa.vec("at", v3.Vec{})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		return sexpInt(b.place(primitive.Grid(cells), scale, at)), nil
	})

	// -----------------------------------------------------------------------
	// (flip-winding) reverses every triangle added so far
	// -----------------------------------------------------------------------
	env.AddFunction("flip_winding", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		for i, t := range b.soup.Triangles {
			b.soup.Triangles[i] = [3]int{t[0], t[2], t[1]}
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (subdivide 3) requests the displayed subdivision level
	// -----------------------------------------------------------------------
	env.AddFunction("subdivide", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("subdivide requires exactly 1 argument, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subdivide: %w", err)
		}
		if n < 0 {
			return zygo.SexpNull, fmt.Errorf("subdivide: level must not be negative, got %d", n)
		}
		b.level = n
		return sexpInt(n), nil
	})

	registerSolidBuiltins(env, b)
}

// registerSolidBuiltins installs the kernel-backed builtins. Solids are
// values; (mesh s) tessellates one into the scene.
func registerSolidBuiltins(env *zygo.Zlisp, b *sceneBuilder) {

	// -----------------------------------------------------------------------
	// (sphere :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := b.requireKernel("sphere"); err != nil {
			return zygo.SexpNull, err
		}
		r, err := parseArgs(args).float("radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		s, err := b.kernel.Sphere(r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("sphere %g", r)}, nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 1 2 3))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := b.requireKernel("box"); err != nil {
			return zygo.SexpNull, err
		}
		size, err := parseArgs(args).vec("size", v3.Vec{X: 1, Y: 1, Z: 1})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		s, err := b.kernel.Box(size.X, size.Y, size.Z)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("box %gx%gx%g", size.X, size.Y, size.Z)}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 2 :radius 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := b.requireKernel("cylinder"); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		h, err := pa.float("height", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		r, err := pa.float("radius", 0.5)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		s, err := b.kernel.Cylinder(h, r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s, desc: fmt.Sprintf("cylinder %gx%g", h, r)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b), (difference a b), (intersection a b)
	// -----------------------------------------------------------------------
	booleans := map[string]func(a, b kernel.Solid) kernel.Solid{
		"union":        func(x, y kernel.Solid) kernel.Solid { return b.kernel.Union(x, y) },
		"difference":   func(x, y kernel.Solid) kernel.Solid { return b.kernel.Difference(x, y) },
		"intersection": func(x, y kernel.Solid) kernel.Solid { return b.kernel.Intersection(x, y) },
	}
	for op, fn := range booleans {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if err := b.requireKernel(op); err != nil {
				return zygo.SexpNull, err
			}
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 solids, got %d", op, len(args))
			}
			x, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			y, err := toSolid(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpSolid{solid: fn(x.solid, y.solid), desc: op}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate s (vec3 1 0 0)), (rotate s (vec3 0 0 90))
	// -----------------------------------------------------------------------
	transforms := map[string]func(s kernel.Solid, v v3.Vec) kernel.Solid{
		"translate": func(s kernel.Solid, v v3.Vec) kernel.Solid { return b.kernel.Translate(s, v.X, v.Y, v.Z) },
		"rotate":    func(s kernel.Solid, v v3.Vec) kernel.Solid { return b.kernel.Rotate(s, v.X, v.Y, v.Z) },
	}
	for op, fn := range transforms {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if err := b.requireKernel(op); err != nil {
				return zygo.SexpNull, err
			}
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3, got %d arguments", op, len(args))
			}
			s, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpSolid{solid: fn(s.solid, v), desc: op + " " + s.desc}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (mesh s) tessellates a solid into the scene
	// -----------------------------------------------------------------------
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := b.requireKernel("mesh"); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires exactly 1 solid, got %d", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		km, err := b.kernel.ToMesh(s.solid)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		soup, err := tessellate.Weld(km)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		return sexpInt(b.place(soup, 1, v3.Vec{})), nil
	})
}
