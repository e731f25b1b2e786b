package texture_array

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/device"
)

// DefaultDecodeWorkers is the number of goroutines AddTextures decodes images on.
const DefaultDecodeWorkers = 4

// registry is the implementation of the Registry interface.
type registry struct {
	mu *sync.Mutex

	arrays map[Descriptor]TextureArray
	// order records creation order so Arrays is deterministic.
	order []Descriptor

	decodeWorkers int
	decodePool    worker.DynamicWorkerPool
}

// Registry keys texture arrays by descriptor so callers can ask for "the array matching this
// descriptor" without creating duplicates. Registry methods are safe for concurrent use; the
// arrays it returns are not.
type Registry interface {
	// GetOrCreate returns the array for desc, creating it on first request.
	//
	// Parameters:
	//   - dev: the device to allocate a new array on
	//   - desc: the array descriptor
	//
	// Returns:
	//   - TextureArray: the existing or new array
	//   - error: the error from New when creation fails
	GetOrCreate(dev device.Device, desc Descriptor) (TextureArray, error)

	// Get returns the array for desc without creating it.
	//
	// Parameters:
	//   - desc: the array descriptor
	//
	// Returns:
	//   - TextureArray: the array, or nil
	//   - bool: true if the array exists
	Get(desc Descriptor) (TextureArray, bool)

	// Arrays returns every array in creation order.
	//
	// Returns:
	//   - []TextureArray: the arrays
	Arrays() []TextureArray

	// AddTexture decodes an image file, scales it to the layer size of the array for desc and uploads
	// it with the path as cache key.
	//
	// Parameters:
	//   - queue: the queue to write on
	//   - path: the image file path
	//   - desc: the descriptor of an array previously created with GetOrCreate
	//
	// Returns:
	//   - RenderableBinding: the array and slot holding the image
	//   - error: ErrNotConfigured if no array matches desc, or any decode or upload error
	AddTexture(queue device.Queue, path string, desc Descriptor) (RenderableBinding, error)

	// AddTextures decodes many image files concurrently and uploads them in path order, so slot
	// assignment is deterministic. Paths that fail are reported in the joined error and leave a zero
	// binding at their index; the others are still uploaded.
	//
	// Parameters:
	//   - queue: the queue to write on
	//   - paths: the image file paths
	//   - desc: the descriptor of an array previously created with GetOrCreate
	//
	// Returns:
	//   - []RenderableBinding: one binding per path
	//   - error: the joined errors of every failed path, or ErrNotConfigured
	AddTextures(queue device.Queue, paths []string, desc Descriptor) ([]RenderableBinding, error)

	// Release releases every array and empties the registry.
	Release()
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Parameters:
//   - options: functional options to configure the registry
//
// Returns:
//   - Registry: the new registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registry{
		mu:            &sync.Mutex{},
		arrays:        make(map[Descriptor]TextureArray),
		decodeWorkers: DefaultDecodeWorkers,
	}
	for _, opt := range options {
		opt(r)
	}
	r.decodePool = worker.NewDynamicWorkerPool(r.decodeWorkers, 256, 1*time.Second)
	return r
}

func (r *registry) GetOrCreate(dev device.Device, desc Descriptor) (TextureArray, error) {
	desc = desc.Normalized()

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.arrays[desc]; ok {
		return a, nil
	}
	a, err := New(dev, desc)
	if err != nil {
		return nil, err
	}
	r.arrays[desc] = a
	r.order = append(r.order, desc)
	return a, nil
}

func (r *registry) Get(desc Descriptor) (TextureArray, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.arrays[desc.Normalized()]
	return a, ok
}

func (r *registry) Arrays() []TextureArray {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TextureArray, 0, len(r.order))
	for _, d := range r.order {
		out = append(out, r.arrays[d])
	}
	return out
}

func (r *registry) AddTexture(queue device.Queue, path string, desc Descriptor) (RenderableBinding, error) {
	a, ok := r.Get(desc)
	if !ok {
		return RenderableBinding{}, fmt.Errorf("%w: %dx%dx%d", ErrNotConfigured, desc.Width, desc.Height, desc.LayerCount)
	}
	slot, err := a.UploadImage(queue, common.ImageSource{Path: path})
	if err != nil {
		return RenderableBinding{}, err
	}
	return RenderableBinding{Array: a, Slot: slot}, nil
}

func (r *registry) AddTextures(queue device.Queue, paths []string, desc Descriptor) ([]RenderableBinding, error) {
	a, ok := r.Get(desc)
	if !ok {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrNotConfigured, desc.Width, desc.Height, desc.LayerCount)
	}
	layer := a.Descriptor()

	decoded := make([]common.TextureStagingData, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		if _, cached := a.Slot(path); cached {
			continue
		}
		wg.Add(1)
		r.decodePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				decoded[i], errs[i] = common.ImageSource{Path: path}.Decode(layer.Width, layer.Height)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	bindings := make([]RenderableBinding, len(paths))
	for i, path := range paths {
		if errs[i] != nil {
			continue
		}
		slot, err := a.Upload(queue, path, decoded[i])
		if err != nil {
			errs[i] = fmt.Errorf("%s: %w", path, err)
			continue
		}
		bindings[i] = RenderableBinding{Array: a, Slot: slot}
	}

	err := errors.Join(errs...)
	if err != nil {
		common.Logger().Warn("some textures failed to load", "requested", len(paths), "error", err)
	}
	return bindings, err
}

func (r *registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.arrays {
		a.Release()
	}
	r.arrays = make(map[Descriptor]TextureArray)
	r.order = nil
}
