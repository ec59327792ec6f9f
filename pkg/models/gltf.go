package models

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // glTF core image formats
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	_ "golang.org/x/image/webp" // EXT_texture_webp

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// ErrNoGeometry is returned when a glTF document contains no triangles.
var ErrNoGeometry = errors.New("gltf: no triangle geometry")

// GLTFLoader loads glTF and GLB files into a Mesh. Every mesh in the
// document is merged into one, with materials and embedded base colour
// textures attached to its faces.
type GLTFLoader struct {
	CalculateNormals bool // Generate normals when the file has none
	SmoothNormals    bool // Average normals across faces instead of flat
	LoadTextures     bool // Decode base colour textures into Material.BaseMap
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		LoadTextures:     true,
	}
}

// LoadGLTF loads a .gltf or .glb file with the default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load reads the file at path and returns the merged mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	mesh.Materials = l.readMaterials(doc, filepath.Dir(path))

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoGeometry)
	}

	hasNormals := false
	for _, v := range mesh.Vertices {
		if v.Normal.Len() > 0.001 {
			hasNormals = true
			break
		}
	}
	if l.CalculateNormals && !hasNormals {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// processMesh appends the triangle primitives of m to mesh.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Lines, points and strips
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)
		for i := range positions {
			v := Vertex{Position: positions[i]}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image.
				v.UV = math3d.V2(uvs[i].X, 1-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for k := range 3 {
				if indices[i+k] >= len(positions) {
					return fmt.Errorf("index %d out of range (%d vertices)", indices[i+k], len(positions))
				}
				f.V[k] = baseVertex + indices[i+k]
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}
	return nil
}

// readMaterials converts the document materials. Textures that cannot be
// decoded are left out; the material keeps its base colour.
func (l *GLTFLoader) readMaterials(doc *gltf.Document, dir string) []Material {
	materials := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m := DefaultMaterial
		m.Name = gm.Name
		m.Metallic = 1 // glTF defaults
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				m.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				m.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = *pbr.RoughnessFactor
			}
			if l.LoadTextures && pbr.BaseColorTexture != nil {
				if img, err := readTexture(doc, pbr.BaseColorTexture.Index, dir); err == nil {
					m.BaseMap = img
				}
			}
		}
		materials[i] = m
	}
	return materials
}

// readTexture decodes the image behind texture index ti.
func readTexture(doc *gltf.Document, ti int, dir string) (image.Image, error) {
	if ti < 0 || ti >= len(doc.Textures) || doc.Textures[ti].Source == nil {
		return nil, fmt.Errorf("texture %d has no source", ti)
	}
	si := *doc.Textures[ti].Source
	if si < 0 || si >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d: image %d out of range", ti, si)
	}
	data, err := imageData(doc, doc.Images[si], dir)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", ti, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture %d: decode: %w", ti, err)
	}
	return img, nil
}

// imageData returns the encoded bytes of img, which may live in a buffer
// view, a data URI or a file next to the document.
func imageData(doc *gltf.Document, img *gltf.Image, dir string) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		return bufferViewData(doc, *img.BufferView)
	case strings.HasPrefix(img.URI, "data:"):
		_, payload, ok := strings.Cut(img.URI, ";base64,")
		if !ok {
			return nil, errors.New("data URI is not base64")
		}
		return base64.StdEncoding.DecodeString(payload)
	case img.URI != "":
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(img.URI)))
	}
	return nil, errors.New("image has no data")
}

// readVec3Accessor reads float VEC3 data from a glTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor, data, stride, err := accessorBytes(doc, accessorIdx, gltf.AccessorVec3, 12)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		result[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return result, nil
}

// readVec2Accessor reads float VEC2 data from a glTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor, data, stride, err := accessorBytes(doc, accessorIdx, gltf.AccessorVec2, 8)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		result[i] = math3d.V2(readFloat32(b), readFloat32(b[4:]))
	}
	return result, nil
}

// readIndices reads unsigned SCALAR index data from a glTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	var size int
	switch doc.Accessors[accessorIdx].ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", doc.Accessors[accessorIdx].ComponentType)
	}

	accessor, data, stride, err := accessorBytes(doc, accessorIdx, gltf.AccessorScalar, size)
	if err != nil {
		return nil, err
	}
	result := make([]int, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// accessorBytes checks an accessor's type and returns its bytes, starting
// at the first element, with the element stride. elemSize is the tightly
// packed element size.
func accessorBytes(doc *gltf.Document, idx int, typ gltf.AccessorType, elemSize int) (*gltf.Accessor, []byte, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	accessor := doc.Accessors[idx]
	if accessor.Type != typ {
		return nil, nil, 0, fmt.Errorf("expected %v, got %v", typ, accessor.Type)
	}
	if typ != gltf.AccessorScalar && accessor.ComponentType != gltf.ComponentFloat {
		return nil, nil, 0, fmt.Errorf("unsupported component type: %v", accessor.ComponentType)
	}
	if accessor.BufferView == nil {
		return nil, nil, 0, errors.New("accessor has no buffer view")
	}
	view, err := bufferViewData(doc, *accessor.BufferView)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("accessor %d: %w", idx, err)
	}

	stride := doc.BufferViews[*accessor.BufferView].ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := accessor.ByteOffset
	if start < 0 || start > len(view) || accessor.Count < 0 {
		return nil, nil, 0, fmt.Errorf("accessor %d: offset %d outside its buffer view", idx, start)
	}
	if accessor.Count > 0 && start+(accessor.Count-1)*stride+elemSize > len(view) {
		return nil, nil, 0, fmt.Errorf("accessor %d reads past end of buffer view", idx)
	}
	return accessor, view[start:], stride, nil
}

// bufferViewData returns the bytes of buffer view idx after checking
// every index and range involved.
func bufferViewData(doc *gltf.Document, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	bv := doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer view %d: buffer %d out of range", idx, bv.Buffer)
	}
	// gltf.Open decodes embedded, data URI and external buffers into Data.
	data := doc.Buffers[bv.Buffer].Data
	if data == nil {
		return nil, fmt.Errorf("buffer %d has no data", bv.Buffer)
	}
	start, end := bv.ByteOffset, bv.ByteOffset+bv.ByteLength
	if start < 0 || bv.ByteLength < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer %d", idx, bv.Buffer)
	}
	return data[start:end], nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}
