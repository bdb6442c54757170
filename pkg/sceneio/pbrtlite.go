// Package sceneio implements a deliberately small scene-description
// reader: just enough directives to build a Cornell-box-style scene
// (materials, spheres, triangles, one camera, area lights) so the CLI
// driver and integration tests have a non-hardcoded way to construct a
// scene. Full scene-graph loading is out of scope; this is not a PBRT
// parser, only a format inspired by its line-oriented, keyword-per-
// directive tokenization, grounded on the pkg/loaders/pbrt.go scanner
// style.
package sceneio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kestrelrender/bdpt/pkg/bsdf"
	"github.com/kestrelrender/bdpt/pkg/camera"
	"github.com/kestrelrender/bdpt/pkg/emitter"
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/scenegraph"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// Result bundles everything LoadPBRTLite builds: a prepared scene plus the
// camera, which lives outside scenegraph.Scene since BidirBase takes it
// as a separate collaborator.
type Result struct {
	Scene  *scenegraph.Scene
	Camera *camera.Perspective
}

// scanner wraps a whitespace-delimited token stream over the whole input,
// so directives can span lines freely, matching pbrt.go
// tokenizer's line-agnostic word scanning.
type scanner struct {
	*bufio.Scanner
}

func newScanner(r io.Reader) *scanner {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &scanner{Scanner: s}
}

func (s *scanner) word() (string, bool) {
	if !s.Scan() {
		return "", false
	}
	return s.Text(), true
}

func (s *scanner) mustWord() (string, error) {
	w, ok := s.word()
	if !ok {
		return "", errors.New("unexpected end of scene description")
	}
	return w, nil
}

func (s *scanner) float() (float64, error) {
	w, err := s.mustWord()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing float token %q", w)
	}
	return f, nil
}

func (s *scanner) int() (int, error) {
	w, err := s.mustWord()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing integer token %q", w)
	}
	return n, nil
}

func (s *scanner) vec3() (vecmath.Vec3, error) {
	x, err := s.float()
	if err != nil {
		return vecmath.Vec3{}, err
	}
	y, err := s.float()
	if err != nil {
		return vecmath.Vec3{}, err
	}
	z, err := s.float()
	if err != nil {
		return vecmath.Vec3{}, err
	}
	return vecmath.New(x, y, z), nil
}

// pendingLight records the triangles (the most recently declared shape)
// and radiance that should be turned into a Diffuse area light once
// parsing finishes, deferred because the shapes it references need their
// Emitter field back-patched in place.
type pendingLight struct {
	triangles []*scenegraph.Triangle
	radiance  vecmath.Vec3
	twoSided  bool
}

// LoadPBRTLite parses a scene description of the following directives,
// one keyword-prefixed record at a time:
//
//	Camera eye.x eye.y eye.z target.x target.y target.z up.x up.y up.z fovDeg width height
//	Material name diffuse albedo.r albedo.g albedo.b
//	Material name ggx albedo.r albedo.g albedo.b roughness metallic ior
//	Sphere material center.x center.y center.z radius
//	Triangle material a.x a.y a.z b.x b.y b.z c.x c.y c.z
//	Quad material corner.x corner.y corner.z u.x u.y u.z v.x v.y v.z
//	AreaLight material radiance.r radiance.g radiance.b twoSided(0|1)
//	Background radiance.r radiance.g radiance.b
//
// Every shape directive references a material by the name an earlier
// Material directive declared; AreaLight attaches emission to the
// triangles of the most recently declared Triangle/Quad shape, since this
// format has no shape-grouping construct of its own.
func LoadPBRTLite(r io.Reader) (*Result, error) {
	s := newScanner(r)
	scene := scenegraph.New()
	materials := map[string]*bsdf.GenericMaterial{}

	var cam *camera.Perspective
	var lastTriangles []*scenegraph.Triangle
	var pendingLights []pendingLight
	var backgroundRadiance vecmath.Vec3
	haveBackground := false

	for {
		keyword, ok := s.word()
		if !ok {
			break
		}
		switch strings.ToLower(keyword) {
		case "camera":
			eye, target, up, fov, width, height, err := parseCamera(s)
			if err != nil {
				return nil, errors.Wrap(err, "parsing Camera directive")
			}
			cam = camera.NewPerspective(eye, target, up, fov, width, height)

		case "material":
			name, err := s.mustWord()
			if err != nil {
				return nil, errors.Wrap(err, "parsing Material directive")
			}
			mat, err := parseMaterial(s)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing Material %q", name)
			}
			materials[name] = mat

		case "sphere":
			name, err := s.mustWord()
			if err != nil {
				return nil, errors.Wrap(err, "parsing Sphere directive")
			}
			mat, err := resolveMaterial(materials, name)
			if err != nil {
				return nil, err
			}
			center, err := s.vec3()
			if err != nil {
				return nil, errors.Wrap(err, "parsing Sphere center")
			}
			radius, err := s.float()
			if err != nil {
				return nil, errors.Wrap(err, "parsing Sphere radius")
			}
			scene.AddShape(&scenegraph.Sphere{Center: center, Radius: radius, Material: mat})
			lastTriangles = nil

		case "triangle":
			name, err := s.mustWord()
			if err != nil {
				return nil, errors.Wrap(err, "parsing Triangle directive")
			}
			mat, err := resolveMaterial(materials, name)
			if err != nil {
				return nil, err
			}
			p0, err := s.vec3()
			if err != nil {
				return nil, err
			}
			p1, err := s.vec3()
			if err != nil {
				return nil, err
			}
			p2, err := s.vec3()
			if err != nil {
				return nil, err
			}
			tri := &scenegraph.Triangle{P0: p0, P1: p1, P2: p2, Material: mat}
			scene.AddShape(tri)
			lastTriangles = []*scenegraph.Triangle{tri}

		case "quad":
			name, err := s.mustWord()
			if err != nil {
				return nil, errors.Wrap(err, "parsing Quad directive")
			}
			mat, err := resolveMaterial(materials, name)
			if err != nil {
				return nil, err
			}
			corner, err := s.vec3()
			if err != nil {
				return nil, err
			}
			u, err := s.vec3()
			if err != nil {
				return nil, err
			}
			v, err := s.vec3()
			if err != nil {
				return nil, err
			}
			mesh := scenegraph.NewQuad(corner, u, v, mat, nil)
			for _, shape := range mesh.Shapes() {
				scene.AddShape(shape)
			}
			lastTriangles = mesh.Triangles

		case "arealight":
			name, err := s.mustWord()
			if err != nil {
				return nil, errors.Wrap(err, "parsing AreaLight directive")
			}
			if _, err := resolveMaterial(materials, name); err != nil {
				return nil, err
			}
			radiance, err := s.vec3()
			if err != nil {
				return nil, errors.Wrap(err, "parsing AreaLight radiance")
			}
			twoSidedTok, err := s.int()
			if err != nil {
				return nil, errors.Wrap(err, "parsing AreaLight two-sided flag")
			}
			if len(lastTriangles) == 0 {
				return nil, errors.New("AreaLight directive with no preceding Triangle/Quad shape to attach to")
			}
			pendingLights = append(pendingLights, pendingLight{
				triangles: lastTriangles,
				radiance:  radiance,
				twoSided:  twoSidedTok != 0,
			})

		case "background":
			radiance, err := s.vec3()
			if err != nil {
				return nil, errors.Wrap(err, "parsing Background directive")
			}
			backgroundRadiance = radiance
			haveBackground = true

		default:
			return nil, fmt.Errorf("unknown scene directive %q", keyword)
		}
	}

	if cam == nil {
		return nil, errors.New("scene description has no Camera directive")
	}

	// Area lights are wired up last since the underlying triangles'
	// Emitter field has to point at the very Diffuse instance
	// scene.Emitters holds, not a separate copy.
	for _, pl := range pendingLights {
		triList := make([]emitter.Triangle, len(pl.triangles))
		for i, t := range pl.triangles {
			triList[i] = t
		}
		diffuse := emitter.NewDiffuse(triList, pl.radiance, pl.twoSided)
		var asEmitterAt pathcache.EmitterAt = diffuse
		for _, t := range pl.triangles {
			t.Emitter = asEmitterAt
		}
		scene.AddEmitter(diffuse)
	}

	if haveBackground {
		scene.Background = emitter.NewUniformEnvironment(backgroundRadiance, vecmath.Vec3{}, 0)
	}

	if err := scene.Prepare(); err != nil {
		return nil, errors.Wrap(err, "preparing loaded scene")
	}

	if haveBackground {
		scene.Background.SceneCenter = scene.SceneCenter()
		scene.Background.SceneRadius = scene.SceneRadius()
	}

	return &Result{Scene: scene, Camera: cam}, nil
}

func parseCamera(s *scanner) (eye, target, up vecmath.Vec3, fov float64, width, height int, err error) {
	if eye, err = s.vec3(); err != nil {
		return
	}
	if target, err = s.vec3(); err != nil {
		return
	}
	if up, err = s.vec3(); err != nil {
		return
	}
	if fov, err = s.float(); err != nil {
		return
	}
	if width, err = s.int(); err != nil {
		return
	}
	height, err = s.int()
	return
}

func parseMaterial(s *scanner) (*bsdf.GenericMaterial, error) {
	kind, err := s.mustWord()
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(kind) {
	case "diffuse":
		albedo, err := s.vec3()
		if err != nil {
			return nil, err
		}
		return bsdf.NewGenericMaterial(
			[]bsdf.Lobe{bsdf.Diffuse{Reflectance: albedo}},
			[]float64{1},
		), nil
	case "ggx":
		albedo, err := s.vec3()
		if err != nil {
			return nil, err
		}
		roughness, err := s.float()
		if err != nil {
			return nil, err
		}
		metallic, err := s.float()
		if err != nil {
			return nil, err
		}
		ior, err := s.float()
		if err != nil {
			return nil, err
		}
		alpha := bsdf.RoughnessToAlpha(roughness)
		dist := bsdf.GGXDistribution{AlphaX: alpha, AlphaY: alpha}
		dielectricF0 := vecmath.New(0.04, 0.04, 0.04)
		f0 := dielectricF0.Lerp(albedo, metallic)
		reflect := bsdf.MicrofacetReflection{Reflectance: vecmath.New(1, 1, 1), F0: f0, Dist: dist}
		diffuse := bsdf.Diffuse{Reflectance: albedo}
		_ = ior
		return bsdf.NewGenericMaterial(
			[]bsdf.Lobe{diffuse, reflect},
			[]float64{1 - metallic, 0.5 + 0.5*metallic},
		), nil
	default:
		return nil, fmt.Errorf("unknown material kind %q", kind)
	}
}

func resolveMaterial(materials map[string]*bsdf.GenericMaterial, name string) (*bsdf.GenericMaterial, error) {
	mat, ok := materials[name]
	if !ok {
		return nil, fmt.Errorf("undefined material %q", name)
	}
	return mat, nil
}
