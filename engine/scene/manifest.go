package scene

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/render_object"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ManifestFormat selects the decoder used by ParseManifest.
type ManifestFormat string

const (
	ManifestFormatYAML ManifestFormat = "yaml"
	ManifestFormatTOML ManifestFormat = "toml"
)

var (
	// ErrUnknownManifestFormat is returned for manifest formats or file extensions that have no decoder.
	ErrUnknownManifestFormat = errors.New("unknown manifest format")

	// ErrInvalidManifest is returned when a manifest decodes but describes an unusable scene.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// Manifest is a declarative description of a scene's texture arrays and sprites.
type Manifest struct {
	TextureArrays []TextureArrayManifest `yaml:"texture_arrays" toml:"texture_arrays"`
	Sprites       []SpriteManifest       `yaml:"sprites" toml:"sprites"`
}

// TextureArrayManifest describes one texture array and the images preloaded into it.
type TextureArrayManifest struct {
	Name   string `yaml:"name" toml:"name"`
	Width  uint32 `yaml:"width" toml:"width"`
	Height uint32 `yaml:"height" toml:"height"`
	Layers uint32 `yaml:"layers" toml:"layers"`
	// Filter is "linear" (default) or "nearest".
	Filter string   `yaml:"filter" toml:"filter"`
	Paths  []string `yaml:"paths" toml:"paths"`
}

// SpriteManifest places one textured quad. Texture must be a path listed in, or loadable into, Array.
// A sprite with Frames is animated through them at FPS; Texture then defaults to the first frame.
type SpriteManifest struct {
	Array    string  `yaml:"array" toml:"array"`
	Texture  string  `yaml:"texture" toml:"texture"`
	Pipeline string  `yaml:"pipeline" toml:"pipeline"`
	X        float32 `yaml:"x" toml:"x"`
	Y        float32 `yaml:"y" toml:"y"`
	Width    float32 `yaml:"width" toml:"width"`
	Height   float32 `yaml:"height" toml:"height"`
	Rotation float32 `yaml:"rotation" toml:"rotation"`
	ScaleX   float32 `yaml:"scale_x" toml:"scale_x"`
	ScaleY   float32 `yaml:"scale_y" toml:"scale_y"`
	Depth    float32 `yaml:"depth" toml:"depth"`

	Frames []string `yaml:"frames" toml:"frames"`
	FPS    float32  `yaml:"fps" toml:"fps"`
	// Once plays the frames a single time instead of looping.
	Once bool `yaml:"once" toml:"once"`
}

// ParseManifest decodes and validates a manifest.
//
// Parameters:
//   - data: the encoded manifest
//   - format: the encoding of data
//
// Returns:
//   - *Manifest: the decoded manifest
//   - error: ErrUnknownManifestFormat, a decode error or an ErrInvalidManifest error
func ParseManifest(data []byte, format ManifestFormat) (*Manifest, error) {
	var m Manifest
	switch format {
	case ManifestFormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode yaml manifest: %w", err)
		}
	case ManifestFormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode toml manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownManifestFormat, format)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifestFile reads a manifest, choosing the decoder from the file extension
// (.yaml, .yml or .toml). Relative texture paths are resolved against the manifest's directory.
//
// Parameters:
//   - path: the manifest file path
//
// Returns:
//   - *Manifest: the decoded manifest
//   - error: an error if the file could not be read or decoded
func LoadManifestFile(path string) (*Manifest, error) {
	var format ManifestFormat
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = ManifestFormatYAML
	case ".toml":
		format = ManifestFormatTOML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownManifestFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.resolvePaths(filepath.Dir(path))
	return m, nil
}

// Validate checks array names are unique with a usable size and that every sprite names a known array.
//
// Returns:
//   - error: an ErrInvalidManifest error describing every problem, or nil
func (m *Manifest) Validate() error {
	var errs []error
	arrays := make(map[string]struct{}, len(m.TextureArrays))
	for i, a := range m.TextureArrays {
		if a.Name == "" {
			errs = append(errs, fmt.Errorf("texture_arrays[%d]: missing name", i))
		} else if _, dup := arrays[a.Name]; dup {
			errs = append(errs, fmt.Errorf("texture_arrays[%d]: duplicate name %q", i, a.Name))
		}
		arrays[a.Name] = struct{}{}

		if a.Width == 0 || a.Height == 0 || a.Layers == 0 {
			errs = append(errs, fmt.Errorf("texture_arrays[%d]: %dx%d with %d layers", i, a.Width, a.Height, a.Layers))
		}
		if uint32(len(a.Paths)) > a.Layers {
			errs = append(errs, fmt.Errorf("texture_arrays[%d]: %d paths exceed %d layers", i, len(a.Paths), a.Layers))
		}
		switch a.Filter {
		case "", "linear", "nearest":
		default:
			errs = append(errs, fmt.Errorf("texture_arrays[%d]: unknown filter %q", i, a.Filter))
		}
	}

	for i, s := range m.Sprites {
		if _, ok := arrays[s.Array]; !ok {
			errs = append(errs, fmt.Errorf("sprites[%d]: unknown array %q", i, s.Array))
		}
		if s.Texture == "" && len(s.Frames) == 0 {
			errs = append(errs, fmt.Errorf("sprites[%d]: missing texture", i))
		}
		if len(s.Frames) > 0 && s.FPS <= 0 {
			errs = append(errs, fmt.Errorf("sprites[%d]: frames need a positive fps", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, errors.Join(errs...))
	}
	return nil
}

func (m *Manifest) resolvePaths(dir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range m.TextureArrays {
		for j, p := range m.TextureArrays[i].Paths {
			m.TextureArrays[i].Paths[j] = resolve(p)
		}
	}
	for i := range m.Sprites {
		m.Sprites[i].Texture = resolve(m.Sprites[i].Texture)
		for j, p := range m.Sprites[i].Frames {
			m.Sprites[i].Frames[j] = resolve(p)
		}
	}
}

// Descriptor converts the array manifest into a texture array descriptor without a layout.
//
// Returns:
//   - texture_array.Descriptor: the descriptor
func (a TextureArrayManifest) Descriptor() texture_array.Descriptor {
	var sampler common.SamplerStagingData
	if a.Filter == "nearest" {
		sampler.MagFilter = common.FilterNearest
		sampler.MinFilter = common.FilterNearest
		sampler.MipmapFilter = common.FilterNearest
	}
	return texture_array.Descriptor{
		Width:      a.Width,
		Height:     a.Height,
		LayerCount: a.Layers,
		Sampler:    sampler,
	}
}

// LoadManifest reads a manifest file and applies it to the scene.
//
// Parameters:
//   - path: the manifest file path
//
// Returns:
//   - []uint64: the IDs of the sprites that were added
//   - error: the decode error, or the joined errors of every array and sprite that failed
func LoadManifest(s Scene, path string) ([]uint64, error) {
	m, err := LoadManifestFile(path)
	if err != nil {
		return nil, err
	}
	return ApplyManifest(s, m)
}

// ApplyManifest creates the manifest's texture arrays, preloads their images and adds one render
// object per sprite. Failures are collected; everything that succeeds is kept.
//
// Parameters:
//   - s: the scene to populate
//   - m: the manifest
//
// Returns:
//   - []uint64: the IDs of the sprites that were added
//   - error: the joined errors of every array and sprite that failed
func ApplyManifest(s Scene, m *Manifest) ([]uint64, error) {
	var errs []error
	descs := make(map[string]texture_array.Descriptor, len(m.TextureArrays))

	for _, a := range m.TextureArrays {
		desc := a.Descriptor()
		descs[a.Name] = desc
		if _, err := s.TextureArray(desc); err != nil {
			errs = append(errs, fmt.Errorf("texture array %q: %w", a.Name, err))
			continue
		}
		if len(a.Paths) == 0 {
			continue
		}
		if _, err := s.AddTextures(a.Paths, desc); err != nil {
			errs = append(errs, fmt.Errorf("texture array %q: %w", a.Name, err))
		}
	}

	var anim animator.Animator
	ids := make([]uint64, 0, len(m.Sprites))
	for i, sm := range m.Sprites {
		desc, ok := descs[sm.Array]
		if !ok {
			errs = append(errs, fmt.Errorf("sprites[%d]: unknown array %q", i, sm.Array))
			continue
		}

		var clip *animator.Clip
		if len(sm.Frames) > 0 {
			frames, err := s.AddTextures(sm.Frames, desc)
			if err != nil {
				errs = append(errs, fmt.Errorf("sprites[%d]: frames: %w", i, err))
				continue
			}
			clip = &animator.Clip{Name: fmt.Sprintf("sprites[%d]", i), Frames: frames, FPS: sm.FPS}
		}

		texture := sm.Texture
		if texture == "" {
			texture = sm.Frames[0]
		}
		binding, err := s.AddTexture(texture, desc)
		if err != nil {
			errs = append(errs, fmt.Errorf("sprites[%d]: %w", i, err))
			continue
		}

		width := common.Coalesce(sm.Width, float32(desc.Width))
		height := common.Coalesce(sm.Height, float32(desc.Height))
		opts := []render_object.RenderObjectBuilderOption{
			render_object.WithBinding(binding),
			render_object.WithSize(width, height),
			render_object.WithPosition(sm.X, sm.Y),
			render_object.WithRotation(sm.Rotation),
			render_object.WithScale(common.Coalesce(sm.ScaleX, 1), common.Coalesce(sm.ScaleY, 1)),
			render_object.WithDepth(sm.Depth),
		}
		if sm.Pipeline != "" {
			opts = append(opts, render_object.WithPipelineKey(sm.Pipeline))
		}
		obj := render_object.NewRenderObject(opts...)
		ids = append(ids, s.Add(obj))

		if clip != nil {
			if anim == nil {
				anim = animator.NewAnimator()
			}
			clipIndex, err := anim.AddClip(*clip)
			if err != nil {
				errs = append(errs, fmt.Errorf("sprites[%d]: %w", i, err))
				continue
			}
			anim.PlayAnimation(anim.AddInstance(obj), clipIndex, !sm.Once)
		}
	}
	if anim != nil {
		s.AddAnimator(anim)
	}

	common.Logger().Info("manifest applied",
		"scene", s.Name(),
		"arrays", len(m.TextureArrays),
		"sprites", len(ids),
		"failed", len(errs))
	return ids, errors.Join(errs...)
}
