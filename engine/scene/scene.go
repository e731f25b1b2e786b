package scene

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-2d/common"
	"github.com/Carmen-Shannon/oxy-2d/engine/camera"
	"github.com/Carmen-Shannon/oxy-2d/engine/mesh"
	"github.com/Carmen-Shannon/oxy-2d/engine/render_object"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/shader_effect"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
)

// Scene is a flat collection of render objects drawn through a camera. It owns the texture array
// registry the objects sample from and batches objects sharing a pipeline and a texture array into
// one mesh per batch.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	SetName(name string)

	Active() bool

	SetActive(active bool)

	// Camera returns the camera the scene is viewed through.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Renderer returns the renderer the scene draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Textures returns the texture array registry of the scene.
	//
	// Returns:
	//   - texture_array.Registry: the registry
	Textures() texture_array.Registry

	// TextureArray returns the texture array for a descriptor, creating it on first use. A descriptor
	// without a layout receives the texture group layout of the scene's pipeline, so the array's bind
	// group matches the pipeline.
	//
	// Parameters:
	//   - desc: the array descriptor
	//
	// Returns:
	//   - texture_array.TextureArray: the array
	//   - error: an error if the array could not be created
	TextureArray(desc texture_array.Descriptor) (texture_array.TextureArray, error)

	// AddTexture loads an image file into the texture array for desc, creating the array on first use.
	//
	// Parameters:
	//   - path: the image file path, also used as the cache key
	//   - desc: the array descriptor
	//
	// Returns:
	//   - texture_array.RenderableBinding: the array and slot holding the image
	//   - error: an error if the array could not be created or the image could not be loaded
	AddTexture(path string, desc texture_array.Descriptor) (texture_array.RenderableBinding, error)

	// AddTextures loads several image files into the texture array for desc. Images decode concurrently.
	//
	// Parameters:
	//   - paths: the image file paths
	//   - desc: the array descriptor
	//
	// Returns:
	//   - []texture_array.RenderableBinding: one binding per path, zero for failed paths
	//   - error: the joined errors of every failed path
	AddTextures(paths []string, desc texture_array.Descriptor) ([]texture_array.RenderableBinding, error)

	// Count returns the number of render objects in the scene.
	Count() int

	// Add registers a render object and assigns it an ID if it has none.
	//
	// Parameters:
	//   - obj: the render object
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj render_object.RenderObject) uint64

	Get(id uint64) render_object.RenderObject

	// Remove drops a render object. Unknown IDs are ignored.
	Remove(id uint64)

	// Clear drops every render object. Texture arrays are kept.
	Clear()

	// Prepare writes the camera uniform and rebuilds the batch meshes from the current object state.
	//
	// Returns:
	//   - error: the joined errors of the camera write and every batch upload that failed
	Prepare() error

	// DrawCalls issues one draw call per non-empty batch. Must be called between BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: the first draw call failure
	DrawCalls() error

	// AddAnimator registers an animator advanced by Update.
	AddAnimator(a animator.Animator)

	// Update advances every registered animator by deltaTime seconds.
	Update(deltaTime float32)

	// DrawStats reports the draw calls and sprites submitted by the last DrawCalls.
	//
	// Returns:
	//   - drawCalls: draw calls issued
	//   - sprites: sprites drawn by those calls
	DrawStats() (drawCalls, sprites int)

	// Release frees the batch meshes, the camera bind group and every texture array.
	Release()
}

type batchKey struct {
	pipelineKey string
	array       texture_array.TextureArray
}

// batch is the merged mesh of every enabled object sharing a batchKey.
type batch struct {
	key     batchKey
	mesh    mesh.Mesh
	objects []render_object.RenderObject

	// vertexBytes and indexBytes are the sizes of the GPU buffers currently held by the mesh provider.
	vertexBytes, indexBytes int
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam      camera.Camera
	r        renderer.Renderer
	textures texture_array.Registry

	// pipelineKey names the pipeline whose layouts the camera bind group and the texture arrays are built against.
	pipelineKey  string
	cameraGroup  int
	textureGroup int

	registry map[uint64]render_object.RenderObject
	nextID   uint64

	batches    map[batchKey]*batch
	batchOrder []batchKey

	animators []animator.Animator

	refreshPool    worker.DynamicWorkerPool
	refreshWorkers int

	drawBindGroupsPool []bind_group_provider.BindGroupProvider

	// DrawCalls runs under the read lock, so its counters are atomic.
	lastDrawCalls atomic.Int64
	lastSprites   atomic.Int64
}

var _ Scene = &scene{}

// NewScene creates a Scene and initializes the camera bind group against the scene pipeline.
//
// Parameters:
//   - name: the scene name
//   - cam: the camera the scene is viewed through
//   - r: the renderer; the scene pipeline must already be registered on it
//   - options: builder options
//
// Returns:
//   - Scene: the scene
//   - error: an error if the scene pipeline is missing or the camera bind group could not be created
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) (Scene, error) {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:                 &sync.RWMutex{},
		name:               name,
		cam:                cam,
		r:                  r,
		pipelineKey:        shader.SpriteKey,
		cameraGroup:        -1,
		textureGroup:       -1,
		registry:           make(map[uint64]render_object.RenderObject),
		nextID:             1,
		batches:            make(map[batchKey]*batch),
		refreshWorkers:     max(runtime.NumCPU()-1, 1),
		drawBindGroupsPool: make([]bind_group_provider.BindGroupProvider, 0, 2),
	}
	for _, option := range options {
		option(s)
	}
	if s.textures == nil {
		s.textures = texture_array.NewRegistry()
	}
	s.refreshPool = worker.NewDynamicWorkerPool(s.refreshWorkers, 256, 1*time.Second)

	p := r.Pipeline(s.pipelineKey)
	if p == nil {
		return nil, fmt.Errorf("scene %q: %w: %q", name, renderer.ErrPipelineNotFound, s.pipelineKey)
	}
	s.cameraGroup, s.textureGroup = providerGroups(p.Shader())

	if s.cameraGroup >= 0 {
		if err := s.initCameraBindGroup(p); err != nil {
			return nil, fmt.Errorf("scene %q: camera bind group: %w", name, err)
		}
	}

	common.Logger().Info("scene created",
		"scene", name,
		"pipeline", s.pipelineKey,
		"camera_group", s.cameraGroup,
		"texture_group", s.textureGroup)
	return s, nil
}

// providerGroups finds the groups the camera and texture array providers are declared at.
// A missing provider is reported as -1.
func providerGroups(s shader.Shader) (cameraGroup, textureGroup int) {
	cameraGroup, textureGroup = -1, -1
	if s == nil {
		return
	}
	for _, decl := range s.Declarations() {
		if decl.Group == nil {
			continue
		}
		switch providerFor(decl) {
		case shader.AnnotationArgCamera:
			cameraGroup = *decl.Group
		case shader.AnnotationArgTextureArray:
			textureGroup = *decl.Group
		}
	}
	return
}

// providerFor maps a group or provider annotation to the provider identity that serves it.
func providerFor(decl shader.Annotation) shader.AnnotationArg {
	switch decl.Type {
	case shader.AnnotationTypeProvider:
		return decl.Args[0]
	case shader.AnnotationTypeBindingGroup:
		if decl.Args[2] == shader.AnnotationArgCamera {
			return shader.AnnotationArgCamera
		}
	}
	return ""
}

func (s *scene) initCameraBindGroup(p pipeline.Pipeline) error {
	provider := s.cam.BindGroupProvider()
	if provider == nil {
		return errors.New("camera has no bind group provider")
	}
	group := uint32(s.cameraGroup)
	buckets, err := shader_effect.Buckets(p.Effect().Reflected())
	if err != nil {
		return err
	}
	if int(group) >= len(buckets) {
		return fmt.Errorf("pipeline %q has no group %d", s.pipelineKey, group)
	}

	sizes := make(map[int]uint64, len(buckets[group]))
	for _, entry := range buckets[group] {
		if size := p.Shader().BufferSize(group, entry.Binding); size > 0 {
			sizes[int(entry.Binding)] = size
		}
	}
	if err := s.r.InitBindGroup(provider, p.Effect().BindGroupLayout(group), buckets[group], sizes); err != nil {
		return err
	}
	return s.writeCamera()
}

func (s *scene) writeCamera() error {
	provider := s.cam.BindGroupProvider()
	if provider == nil || s.cameraGroup < 0 {
		return nil
	}
	u := s.cam.Uniform()
	return s.r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  0,
		Offset:   0,
		Data:     u.Marshal(),
	}})
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Textures() texture_array.Registry {
	return s.textures
}

func (s *scene) TextureArray(desc texture_array.Descriptor) (texture_array.TextureArray, error) {
	return s.textures.GetOrCreate(s.r.Device(), s.withLayout(desc))
}

func (s *scene) AddTexture(path string, desc texture_array.Descriptor) (texture_array.RenderableBinding, error) {
	desc = s.withLayout(desc)
	if _, err := s.textures.GetOrCreate(s.r.Device(), desc); err != nil {
		return texture_array.RenderableBinding{}, err
	}
	return s.textures.AddTexture(s.r.Queue(), path, desc)
}

func (s *scene) AddTextures(paths []string, desc texture_array.Descriptor) ([]texture_array.RenderableBinding, error) {
	desc = s.withLayout(desc)
	if _, err := s.textures.GetOrCreate(s.r.Device(), desc); err != nil {
		return nil, err
	}
	return s.textures.AddTextures(s.r.Queue(), paths, desc)
}

// withLayout fills a missing layout with the scene pipeline's texture group layout.
func (s *scene) withLayout(desc texture_array.Descriptor) texture_array.Descriptor {
	if desc.Layout != nil || s.textureGroup < 0 {
		return desc
	}
	if p := s.r.Pipeline(s.pipelineKey); p != nil && p.Effect() != nil {
		desc.Layout = p.Effect().BindGroupLayout(uint32(s.textureGroup))
	}
	return desc
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj render_object.RenderObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}
	s.registry[obj.ID()] = obj
	return obj.ID()
}

func (s *scene) Get(id uint64) render_object.RenderObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]render_object.RenderObject)
}

func (s *scene) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if err := s.writeCamera(); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	}

	s.regroup()

	// Geometry is built concurrently; uploads stay on the calling goroutine.
	type built struct {
		vertices []mesh.GPUVertex
		indices  []uint32
	}
	results := make([]built, len(s.batchOrder))
	var wg sync.WaitGroup
	for i, key := range s.batchOrder {
		b := s.batches[key]
		wg.Add(1)
		s.refreshPool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				vertices := make([]mesh.GPUVertex, 0, len(b.objects)*4)
				indices := make([]uint32, 0, len(b.objects)*6)
				for _, obj := range b.objects {
					vertices, indices = mesh.AppendQuad(vertices, indices, obj.Quad())
				}
				results[i] = built{vertices: vertices, indices: indices}
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i, key := range s.batchOrder {
		b := s.batches[key]
		b.mesh.SetGeometry(results[i].vertices, results[i].indices)
		if err := s.upload(b); err != nil {
			errs = append(errs, fmt.Errorf("batch %s: %w", b.mesh.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// regroup assigns every enabled object to its batch, sorted by depth then ID.
func (s *scene) regroup() {
	for _, b := range s.batches {
		b.objects = b.objects[:0]
	}

	// Registry order decides batch creation order, which decides draw order.
	for _, id := range slices.Sorted(maps.Keys(s.registry)) {
		obj := s.registry[id]
		if !obj.Enabled() {
			continue
		}
		key := batchKey{pipelineKey: obj.PipelineKey(), array: obj.Binding().Array}
		b, ok := s.batches[key]
		if !ok {
			name := fmt.Sprintf("%s_%s_%d", s.name, key.pipelineKey, len(s.batchOrder))
			b = &batch{key: key, mesh: mesh.NewMesh(name)}
			s.batches[key] = b
			s.batchOrder = append(s.batchOrder, key)
		}
		b.objects = append(b.objects, obj)
	}

	for _, b := range s.batches {
		slices.SortFunc(b.objects, func(x, y render_object.RenderObject) int {
			if c := cmp.Compare(x.Depth(), y.Depth()); c != 0 {
				return c
			}
			return cmp.Compare(x.ID(), y.ID())
		})
	}
}

// upload pushes a batch's geometry to the GPU, rewriting the existing buffers in place when the size is unchanged.
func (s *scene) upload(b *batch) error {
	provider := b.mesh.MeshProvider()
	vertexData := b.mesh.VertexData()
	indexData := b.mesh.IndexData()

	if len(indexData) == 0 {
		provider.SetIndexCount(0)
		return nil
	}

	if len(vertexData) == b.vertexBytes && len(indexData) == b.indexBytes &&
		provider.VertexBuffer() != nil && provider.IndexBuffer() != nil {
		q := s.r.Queue()
		if err := q.WriteBuffer(provider.VertexBuffer(), 0, vertexData); err != nil {
			return err
		}
		if err := q.WriteBuffer(provider.IndexBuffer(), 0, indexData); err != nil {
			return err
		}
		provider.SetIndexCount(b.mesh.IndexCount())
		return nil
	}

	if err := s.r.InitMeshBuffers(provider, vertexData, indexData, b.mesh.IndexCount()); err != nil {
		return err
	}
	b.vertexBytes, b.indexBytes = len(vertexData), len(indexData)
	return nil
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var drawCalls, sprites int64
	defer func() {
		s.lastDrawCalls.Store(drawCalls)
		s.lastSprites.Store(sprites)
	}()

	for _, key := range s.batchOrder {
		b := s.batches[key]
		meshProvider := b.mesh.MeshProvider()
		if meshProvider.IndexCount() == 0 {
			continue
		}

		p := s.r.Pipeline(key.pipelineKey)
		if p == nil {
			return fmt.Errorf("draw call failed in scene %q: %w: %q", s.name, renderer.ErrPipelineNotFound, key.pipelineKey)
		}

		bindGroups, ok := s.bindGroups(p, key.array)
		if !ok {
			common.Logger().Warn("skipping batch with unresolved bind groups",
				"scene", s.name, "pipeline", key.pipelineKey, "mesh", b.mesh.Name())
			continue
		}

		if err := s.r.DrawCall(key.pipelineKey, meshProvider, bindGroups); err != nil {
			return fmt.Errorf("draw call failed in scene %q: %w", s.name, err)
		}
		drawCalls++
		sprites += int64(len(b.objects))
	}
	return nil
}

func (s *scene) AddAnimator(a animator.Animator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animators = append(s.animators, a)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	animators := s.animators
	s.mu.RUnlock()
	for _, a := range animators {
		a.PrepareFrame(deltaTime)
	}
}

func (s *scene) DrawStats() (drawCalls, sprites int) {
	return int(s.lastDrawCalls.Load()), int(s.lastSprites.Load())
}

// bindGroups resolves one provider per bind group of the pipeline from its shader annotations.
// Groups are iterated in index order so bindGroups[i] maps to @group(i).
func (s *scene) bindGroups(p pipeline.Pipeline, array texture_array.TextureArray) ([]bind_group_provider.BindGroupProvider, bool) {
	groupCount := len(p.Effect().BindGroupLayouts())
	groupProviders := make(map[int]bind_group_provider.BindGroupProvider, groupCount)

	for _, decl := range p.Shader().Declarations() {
		if decl.Group == nil {
			continue
		}
		g := *decl.Group
		if _, exists := groupProviders[g]; exists {
			continue
		}

		var provider bind_group_provider.BindGroupProvider
		switch providerFor(decl) {
		case shader.AnnotationArgCamera:
			provider = s.cam.BindGroupProvider()
		case shader.AnnotationArgTextureArray:
			if array != nil {
				provider = array.BindGroupProvider()
			}
		}
		if provider != nil && provider.BindGroup() != nil {
			groupProviders[g] = provider
		}
	}

	bindGroups := s.drawBindGroupsPool[:0]
	for g := range groupCount {
		provider, ok := groupProviders[g]
		if !ok {
			return nil, false
		}
		bindGroups = append(bindGroups, provider)
	}
	return bindGroups, true
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.batches {
		b.mesh.MeshProvider().Release()
	}
	s.batches = make(map[batchKey]*batch)
	s.batchOrder = nil

	if provider := s.cam.BindGroupProvider(); provider != nil {
		provider.Release()
	}
	s.textures.Release()
}
