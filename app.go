package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chazu/loopview/pkg/config"
	"github.com/chazu/loopview/pkg/engine"
	"github.com/chazu/loopview/pkg/halfedge"
	"github.com/chazu/loopview/pkg/kernel"
	"github.com/chazu/loopview/pkg/kernel/sdfx"
	"github.com/chazu/loopview/pkg/levels"
	"github.com/chazu/loopview/pkg/tessellate"
)

// colorPalette assigns each subdivision level its own color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx      context.Context
	engine   *engine.Engine
	kernel   kernel.Kernel
	settings config.Settings
	cache    *levels.Cache
	log      *slog.Logger

	mu    sync.Mutex
	level int
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices      []float32 `json:"vertices"`
	Normals       []float32 `json:"normals"`
	Indices       []uint32  `json:"indices"`
	Level         int       `json:"level"`
	VertexCount   int       `json:"vertexCount"`
	EdgeCount     int       `json:"edgeCount"`
	FaceCount     int       `json:"faceCount"`
	BoundaryEdges int       `json:"boundaryEdges"`
	Color         string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

func (r *EvalResult) fail(format string, args ...any) EvalResult {
	r.Errors = append(r.Errors, EvalErrorData{Message: fmt.Sprintf(format, args...)})
	return *r
}

// NewApp creates an App with the default settings and the sdfx kernel.
func NewApp() *App {
	app, err := NewAppWithSettings(config.Default(), slog.Default())
	if err != nil {
		// The defaults always validate.
		panic(err)
	}
	return app
}

// NewAppWithSettings creates an App from s. A nil logger uses
// slog.Default().
func NewAppWithSettings(s *config.Settings, logger *slog.Logger) (*App, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	k, err := sdfx.NewWithResolution(s.Kernel.MeshCells)
	if err != nil {
		return nil, err
	}
	return &App{
		engine:   engine.NewEngine(k),
		kernel:   k,
		settings: *s,
		cache:    levels.New(s.Subdivision.MaxLevel, logger),
		log:      logger,
		level:    s.Subdivision.InitialLevel,
	}, nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Settings returns the current viewer settings.
func (a *App) Settings() config.Settings {
	return a.settings
}

// Level returns the level last shown.
func (a *App) Level() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.level
}

// Evaluate runs a scene script, builds its mesh and returns the level the
// script requested, or the current level when it requested none.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := newResult()

	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", "err", err)
		return result.fail("%s", err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	if scene.IsEmpty() {
		return result
	}

	base, err := halfedge.Build(scene.Soup)
	if err != nil {
		a.log.Warn("scene is not a valid mesh", "err", err)
		return result.fail("invalid mesh: %v", err)
	}
	if err := a.cache.Reset(base); err != nil {
		return result.fail("invalid mesh: %v", err)
	}

	a.mu.Lock()
	level := a.level
	a.mu.Unlock()
	if scene.Level != engine.NoLevel {
		level = scene.Level
	}
	if limit := a.cache.Max(); level > limit {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Message: fmt.Sprintf("subdivision level %d exceeds the maximum %d; showing level %d", level, limit, limit),
		})
		level = limit
	}
	return a.show(result, level)
}

// SetSubdivisionLevel shows level k of the current mesh, computing any
// levels not yet cached.
func (a *App) SetSubdivisionLevel(k int) EvalResult {
	return a.show(newResult(), k)
}

// show appends the render data of level k to result.
func (a *App) show(result EvalResult, k int) EvalResult {
	m, err := a.cache.Level(k)
	if err != nil {
		a.log.Warn("level unavailable", "level", k, "err", err)
		return result.fail("%v", err)
	}
	data, err := meshData(m, k)
	if err != nil {
		a.log.Error("extract failed", "level", k, "err", err)
		return result.fail("extract failed: %v", err)
	}

	a.mu.Lock()
	a.level = k
	a.mu.Unlock()

	result.Meshes = append(result.Meshes, data)
	return result
}

// meshData flattens level k for the renderer.
func meshData(m *halfedge.Mesh, k int) (MeshData, error) {
	km, err := tessellate.Extract(m)
	if err != nil {
		return MeshData{}, err
	}
	boundary := 0
	for e := range m.HalfEdges {
		if m.IsBoundary(halfedge.EdgeID(e)) {
			boundary++
		}
	}
	return MeshData{
		Vertices:      km.Vertices,
		Normals:       km.Normals,
		Indices:       km.Indices,
		Level:         k,
		VertexCount:   m.NumVertices(),
		EdgeCount:     m.NumEdges(),
		FaceCount:     m.NumFaces(),
		BoundaryEdges: boundary,
		Color:         colorPalette[k%len(colorPalette)],
	}, nil
}
