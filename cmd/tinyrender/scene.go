package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/pipeline"
	"github.com/taigrr/tinyrender/pkg/render"
	"github.com/taigrr/tinyrender/pkg/shaders"
)

var wireColor = render.RGB(0, 255, 128)

// scene is a loaded mesh with one texture per material batch.
type scene struct {
	name     string
	mesh     *models.Mesh
	batches  []models.Batch
	textures map[int]*render.Texture // by material index
	fit      math3d.Mat4             // centres the mesh in a 2-unit box
}

// loadScene loads the model at path, or a cube when path is empty.
// The texture option replaces every material texture; materials without
// one get a checkerboard.
func loadScene(path string, rc config.RenderConfig) (*scene, error) {
	s := &scene{name: "cube", textures: make(map[int]*render.Texture)}

	if path == "" {
		s.mesh = models.Cube(2)
	} else {
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".glb", ".gltf":
			mesh, err := models.LoadGLTF(path)
			if err != nil {
				return nil, fmt.Errorf("load model: %w", err)
			}
			s.mesh = mesh
			s.name = filepath.Base(path)
		default:
			return nil, fmt.Errorf("unsupported format: %q (use .gltf or .glb)", ext)
		}
	}
	s.mesh.CalculateBounds()
	s.fit = s.mesh.FitTransform(2)
	s.batches = s.mesh.Batches()

	var override *render.Texture
	if rc.Texture != "" {
		tex, err := render.LoadTexture(rc.Texture)
		if err != nil {
			return nil, err
		}
		override = tex.Fit(rc.MaxTextureSize)
	}
	checker := render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))

	for _, b := range s.batches {
		tex := override
		if tex == nil {
			if img := s.mesh.Material(b.Material).BaseMap; img != nil {
				tex = render.TextureFromImage(img).Fit(rc.MaxTextureSize)
			} else {
				tex = checker
			}
		}
		if rc.Repeat {
			tex.Wrap = render.WrapRepeat
		}
		s.textures[b.Material] = tex
	}
	return s, nil
}

// frameOptions are the per-frame drawing choices.
type frameOptions struct {
	Mode       config.Mode
	Textures   bool        // false draws ModeTextured as ModeGouraud
	Light      math3d.Vec3 // towards the light, world space
	Ambient    float64
	Cutoff     float64
	Color      [3]uint8
	Background [3]uint8
	Grid       bool
}

func optionsFromConfig(cfg config.Config) frameOptions {
	d := cfg.Light.Direction
	return frameOptions{
		Mode:       cfg.Render.Mode,
		Textures:   true,
		Light:      math3d.V3(d[0], d[1], d[2]).Normalize(),
		Ambient:    cfg.Light.Ambient,
		Cutoff:     cfg.Render.AlphaCutoff,
		Color:      cfg.Render.Color,
		Background: cfg.Viewer.Background,
		Grid:       cfg.Render.Grid,
	}
}

// renderer draws a scene into a framebuffer.
type renderer struct {
	scene *scene
	fb    *render.Framebuffer
	pipe  *pipeline.Pipeline
	cam   *render.Camera

	front []models.Vertex // scratch for inFront
}

func newRenderer(s *scene, width, height int, fovDegrees, distance float64) *renderer {
	fb := render.NewFramebuffer(width, height)
	cam := render.NewCamera()
	cam.FOV = fovDegrees * math.Pi / 180
	cam.SetDistance(distance)
	return &renderer{
		scene: s,
		fb:    fb,
		pipe:  pipeline.New(fb),
		cam:   cam,
	}
}

// resize changes the framebuffer size; the pipeline follows on the next
// draw.
func (r *renderer) resize(width, height int) {
	r.fb.Resize(width, height)
}

// frame draws the scene rotated by rot. The returned stats cover the
// shaded triangles of this frame; wireframe frames report none.
func (r *renderer) frame(rot math3d.Mat4, opts frameOptions) (pipeline.Stats, error) {
	bg := opts.Background
	r.fb.Clear(render.RGB(bg[0], bg[1], bg[2]))
	r.cam.SetAspectFromSize(r.fb.Size())

	wf := render.NewWireframe(r.cam, r.fb)
	if opts.Grid {
		wf.DrawGrid(-1, 4, 0.5, render.ColorGray)
	}

	model := rot.Mul(r.scene.fit)
	if opts.Mode == config.ModeWireframe {
		wf.DrawMesh(r.scene.mesh, model, wireColor)
		return pipeline.Stats{}, nil
	}

	u, err := shaders.NewUniform(model, r.cam.ViewMatrix(), r.cam.ProjectionMatrix(), opts.Light)
	if err != nil {
		return pipeline.Stats{}, err
	}
	u.Ambient = opts.Ambient
	u.AlphaCutoff = opts.Cutoff

	mode := opts.Mode
	if mode == config.ModeTextured && !opts.Textures {
		mode = config.ModeGouraud
	}

	r.pipe.ClearDepth()
	r.pipe.ResetStats()
	for _, b := range r.scene.batches {
		mat := r.scene.mesh.Material(b.Material)
		u.Color = baseColor(mat, opts.Color, mode)

		r.front = inFront(r.front[:0], b.Vertices, u.MVP)
		switch mode {
		case config.ModeTextured:
			// A nil *render.Texture in the Sampler would not compare nil.
			u.Texture = nil
			if tex, ok := r.scene.textures[b.Material]; ok && tex != nil {
				u.Texture = tex
			}
			err = pipeline.Draw(r.pipe, shaders.Textured{}, shaders.Textured{}, r.front, u)
		case config.ModeGouraud:
			err = pipeline.Draw(r.pipe, shaders.Gouraud{}, shaders.Gouraud{}, r.front, u)
		default:
			err = pipeline.Draw(r.pipe, shaders.Solid{}, shaders.Solid{}, r.front, u)
		}
		if err != nil {
			return r.pipe.Stats(), fmt.Errorf("draw %q: %w", mat.Name, err)
		}
	}
	return r.pipe.Stats(), nil
}

// inFront appends to dst the triangles of vs whose three corners have a
// positive clip w under mvp. The pipeline divides by w without clipping,
// so a triangle at or behind the eye plane would come out mirrored.
func inFront(dst, vs []models.Vertex, mvp math3d.Mat4) []models.Vertex {
	for i := 0; i+2 < len(vs); i += 3 {
		tri := vs[i : i+3]
		if clipW(mvp, tri[0]) > 0 && clipW(mvp, tri[1]) > 0 && clipW(mvp, tri[2]) > 0 {
			dst = append(dst, tri...)
		}
	}
	return dst
}

func clipW(mvp math3d.Mat4, v models.Vertex) float64 {
	return mvp.MulVec4(math3d.V4FromV3(v.Position, 1)).W
}

// baseColor is the material colour, tinted by the configured colour
// unless a texture supplies the detail.
func baseColor(mat models.Material, tint [3]uint8, mode config.Mode) math3d.Vec4 {
	c := math3d.V4(mat.BaseColor[0], mat.BaseColor[1], mat.BaseColor[2], mat.BaseColor[3])
	if mode == config.ModeTextured {
		return c
	}
	c.X *= float64(tint[0]) / 255
	c.Y *= float64(tint[1]) / 255
	c.Z *= float64(tint[2]) / 255
	return c
}
