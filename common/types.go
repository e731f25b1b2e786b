// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds tightly packed RGBA8 pixel data pending upload into a texture array layer.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major with no row padding.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
}

// Validate reports whether the pixel payload length matches Width*Height*4.
//
// Returns:
//   - error: a descriptive error when the payload is empty or mis-sized, nil otherwise
func (t TextureStagingData) Validate() error {
	if t.Width == 0 || t.Height == 0 {
		return fmt.Errorf("texture staging data has zero extent %dx%d", t.Width, t.Height)
	}
	want := uint64(t.Width) * uint64(t.Height) * 4
	if uint64(len(t.Pixels)) != want {
		return fmt.Errorf("texture staging data is %d bytes, want %d for %dx%d RGBA8", len(t.Pixels), want, t.Width, t.Height)
	}
	return nil
}

// FilterMode selects texel filtering for a sampler. The zero value means FilterLinear.
type FilterMode uint8

const (
	FilterDefault FilterMode = iota
	FilterLinear
	FilterNearest
)

// AddressMode selects how a sampler addresses coordinates outside [0, 1]. The zero value means
// AddressClampToEdge.
type AddressMode uint8

const (
	AddressDefault AddressMode = iota
	AddressClampToEdge
	AddressRepeat
	AddressMirrorRepeat
)

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// The struct is comparable and is used as the sampler identity of a texture array descriptor,
// so two arrays with different sampling configurations never share texture content.
// Zero fields mean "default"; Resolved makes the defaults explicit.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter FilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// Resolved returns the staging data with every unset field replaced by its default:
// clamp-to-edge addressing, linear filtering, a LodMaxClamp of 32 and an anisotropy of 1.
// Two configurations that create the same sampler resolve to equal values.
//
// Returns:
//   - SamplerStagingData: the resolved configuration
func (s SamplerStagingData) Resolved() SamplerStagingData {
	s.AddressModeU = Coalesce(s.AddressModeU, AddressClampToEdge)
	s.AddressModeV = Coalesce(s.AddressModeV, AddressClampToEdge)
	s.AddressModeW = Coalesce(s.AddressModeW, AddressClampToEdge)
	s.MagFilter = Coalesce(s.MagFilter, FilterLinear)
	s.MinFilter = Coalesce(s.MinFilter, FilterLinear)
	s.MipmapFilter = Coalesce(s.MipmapFilter, FilterLinear)
	s.LodMaxClamp = Coalesce(s.LodMaxClamp, 32)
	s.MaxAnisotropy = Coalesce(s.MaxAnisotropy, 1)
	return s
}

// SamplerDescriptor resolves the staging data and converts it into a wgpu.SamplerDescriptor.
//
// Parameters:
//   - label: the debug label for the sampler
//
// Returns:
//   - *wgpu.SamplerDescriptor: the descriptor ready for device creation
func (s SamplerStagingData) SamplerDescriptor(label string) *wgpu.SamplerDescriptor {
	s = s.Resolved()
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  s.AddressModeU.wgpu(),
		AddressModeV:  s.AddressModeV.wgpu(),
		AddressModeW:  s.AddressModeW.wgpu(),
		MagFilter:     s.MagFilter.wgpu(),
		MinFilter:     s.MinFilter.wgpu(),
		MipmapFilter:  s.MipmapFilter.wgpuMipmap(),
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   s.LodMaxClamp,
		Compare:       s.Compare,
		MaxAnisotropy: s.MaxAnisotropy,
	}
}

func (f FilterMode) wgpu() wgpu.FilterMode {
	if f == FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func (f FilterMode) wgpuMipmap() wgpu.MipmapFilterMode {
	if f == FilterNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

func (a AddressMode) wgpu() wgpu.AddressMode {
	switch a {
	case AddressRepeat:
		return wgpu.AddressModeRepeat
	case AddressMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

// ImageSource describes an image to be decoded into texture staging data.
// Either Data holds encoded bytes, or Path names a file on disk.
type ImageSource struct {
	// Path is the file path of the image. It is also the cache key used by texture arrays.
	Path string

	// Data contains encoded image bytes (PNG, JPEG, GIF, BMP, TIFF or WebP).
	Data []byte
}

// Decode decodes the image and converts it to tightly packed RGBA8.
// When width and height are non-zero and differ from the image bounds, the image is
// scaled to exactly width x height with Catmull-Rom resampling.
//
// Parameters:
//   - width: the target width in pixels, or 0 to keep the source width
//   - height: the target height in pixels, or 0 to keep the source height
//
// Returns:
//   - TextureStagingData: the decoded pixel data
//   - error: error if reading or decoding fails
func (s ImageSource) Decode(width, height uint32) (TextureStagingData, error) {
	var img image.Image
	var err error

	switch {
	case len(s.Data) > 0:
		img, _, err = image.Decode(bytes.NewReader(s.Data))
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	case s.Path != "":
		file, fileErr := os.Open(s.Path)
		if fileErr != nil {
			return TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", s.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("failed to decode texture file %s: %w", s.Path, err)
		}
	default:
		return TextureStagingData{}, fmt.Errorf("image source has neither data nor path")
	}

	return ToStagingData(img, width, height), nil
}

// ToStagingData converts any image.Image to RGBA8 staging data, scaling it when the requested
// extent is non-zero and differs from the image bounds.
//
// Parameters:
//   - img: the source image
//   - width: the target width in pixels, or 0 to keep the source width
//   - height: the target height in pixels, or 0 to keep the source height
//
// Returns:
//   - TextureStagingData: the packed pixel data
func ToStagingData(img image.Image, width, height uint32) TextureStagingData {
	bounds := img.Bounds()
	w := Coalesce(width, uint32(bounds.Dx()))
	h := Coalesce(height, uint32(bounds.Dy()))

	rgba := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	if int(w) == bounds.Dx() && int(h) == bounds.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)
	}

	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  w,
		Height: h,
	}
}
