package animator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-2d/engine/render_object"
	"github.com/Carmen-Shannon/oxy-2d/engine/renderer/texture_array"
)

// ErrInvalidClip is returned by AddClip for clips without frames or with a non-positive frame rate.
var ErrInvalidClip = errors.New("invalid animation clip")

// Clip is a flipbook: a sequence of texture array bindings shown at a fixed frame rate.
type Clip struct {
	Name   string
	Frames []texture_array.RenderableBinding
	FPS    float32
}

// Duration returns the length of one pass through the clip in seconds.
func (c Clip) Duration() float32 {
	if c.FPS <= 0 {
		return 0
	}
	return float32(len(c.Frames)) / c.FPS
}

// frameAt maps a playback time to a frame index, clamped to the last frame.
func (c Clip) frameAt(t float32) int {
	return min(max(int(t*c.FPS), 0), len(c.Frames)-1)
}

// instanceState holds the playback state of one animated render object.
type instanceState struct {
	object render_object.RenderObject

	clipIndex   uint32
	time, speed float32
	loop        bool
	playing     bool
}

// animator is the implementation of the Animator interface.
type animator struct {
	mu *sync.Mutex

	clips     []Clip
	clipNames map[string]uint32

	instances []instanceState
}

// Animator plays flipbook clips on render objects. Each frame of a clip is a texture array binding;
// PrepareFrame advances playback and points every animated object at its current frame.
type Animator interface {
	// AddClip registers a clip. Clip names must be unique when set.
	//
	// Parameters:
	//   - clip: the clip to add
	//
	// Returns:
	//   - uint32: the index of the added clip
	//   - error: ErrInvalidClip if the clip has no frames, a non-positive rate or a duplicate name
	AddClip(clip Clip) (uint32, error)

	// Clip returns the clip at index.
	Clip(index uint32) (Clip, bool)

	// ClipIndex looks up a clip by name.
	ClipIndex(name string) (uint32, bool)

	// AddInstance registers a render object for animation. The object keeps its current binding
	// until PlayAnimation is called for it.
	//
	// Parameters:
	//   - obj: the render object to animate
	//
	// Returns:
	//   - uint32: the index of the newly registered instance
	AddInstance(obj render_object.RenderObject) uint32

	// RemoveInstance removes the instance at the given index using a swap-remove strategy.
	//
	// Parameters:
	//   - index: the instance index to remove
	//
	// Returns:
	//   - uint32: the old last index that was swapped into the removed slot (only meaningful when bool is true)
	//   - bool: true if the last instance was swapped into the removed slot
	RemoveInstance(index uint32) (uint32, bool)

	// InstanceCount returns the current number of registered instances.
	InstanceCount() uint32

	// PlayAnimation starts a clip from its first frame at normal speed.
	//
	// Parameters:
	//   - instanceIndex: the instance to animate
	//   - clipIndex: the animation clip to play
	//   - loop: whether the animation should loop
	PlayAnimation(instanceIndex, clipIndex uint32, loop bool)

	// SetAnimationTime seeks the instance's clip.
	//
	// Parameters:
	//   - instanceIndex: the instance to update
	//   - time: the playback time in seconds
	SetAnimationTime(instanceIndex uint32, time float32)

	// SetAnimationSpeed sets the playback speed multiplier.
	//
	// Parameters:
	//   - instanceIndex: the instance to update
	//   - speed: the speed multiplier (1.0 = normal, 0.5 = half speed)
	SetAnimationSpeed(instanceIndex uint32, speed float32)

	// Playing reports whether the instance is advancing. Non-looping clips stop on their last frame.
	Playing(instanceIndex uint32) bool

	// Frame returns the frame index the instance currently shows.
	Frame(instanceIndex uint32) int

	// PrepareFrame advances every playing instance by deltaTime and applies its current frame binding.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	PrepareFrame(deltaTime float32)
}

var _ Animator = &animator{}

// NewAnimator creates an empty Animator.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - Animator: the animator
func NewAnimator(options ...AnimatorBuilderOption) Animator {
	a := &animator{
		mu:        &sync.Mutex{},
		clipNames: make(map[string]uint32),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *animator) AddClip(clip Clip) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addClip(clip)
}

func (a *animator) addClip(clip Clip) (uint32, error) {
	if len(clip.Frames) == 0 {
		return 0, fmt.Errorf("%w: %q has no frames", ErrInvalidClip, clip.Name)
	}
	if clip.FPS <= 0 {
		return 0, fmt.Errorf("%w: %q has frame rate %v", ErrInvalidClip, clip.Name, clip.FPS)
	}
	if clip.Name != "" {
		if _, dup := a.clipNames[clip.Name]; dup {
			return 0, fmt.Errorf("%w: duplicate name %q", ErrInvalidClip, clip.Name)
		}
	}

	index := uint32(len(a.clips))
	a.clips = append(a.clips, clip)
	if clip.Name != "" {
		a.clipNames[clip.Name] = index
	}
	return index, nil
}

func (a *animator) Clip(index uint32) (Clip, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index >= uint32(len(a.clips)) {
		return Clip{}, false
	}
	return a.clips[index], true
}

func (a *animator) ClipIndex(name string) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	index, ok := a.clipNames[name]
	return index, ok
}

func (a *animator) AddInstance(obj render_object.RenderObject) uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.instances = append(a.instances, instanceState{object: obj, speed: 1})
	return uint32(len(a.instances) - 1)
}

func (a *animator) RemoveInstance(index uint32) (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := uint32(len(a.instances))
	if index >= count {
		return 0, false
	}
	last := count - 1
	swapped := index != last
	if swapped {
		a.instances[index] = a.instances[last]
	}
	a.instances[last] = instanceState{}
	a.instances = a.instances[:last]
	return last, swapped
}

func (a *animator) InstanceCount() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return uint32(len(a.instances))
}

func (a *animator) PlayAnimation(instanceIndex, clipIndex uint32, loop bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= uint32(len(a.instances)) || clipIndex >= uint32(len(a.clips)) {
		return
	}
	state := &a.instances[instanceIndex]
	state.clipIndex = clipIndex
	state.time = 0
	state.speed = 1
	state.loop = loop
	state.playing = true
	state.object.SetBinding(a.clips[clipIndex].Frames[0])
}

func (a *animator) SetAnimationTime(instanceIndex uint32, time float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= uint32(len(a.instances)) {
		return
	}
	a.instances[instanceIndex].time = max(time, 0)
}

func (a *animator) SetAnimationSpeed(instanceIndex uint32, speed float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= uint32(len(a.instances)) {
		return
	}
	a.instances[instanceIndex].speed = speed
}

func (a *animator) Playing(instanceIndex uint32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= uint32(len(a.instances)) {
		return false
	}
	return a.instances[instanceIndex].playing
}

func (a *animator) Frame(instanceIndex uint32) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if instanceIndex >= uint32(len(a.instances)) {
		return 0
	}
	state := a.instances[instanceIndex]
	if state.clipIndex >= uint32(len(a.clips)) {
		return 0
	}
	return a.clips[state.clipIndex].frameAt(state.time)
}

func (a *animator) PrepareFrame(deltaTime float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.instances {
		state := &a.instances[i]
		if !state.playing || state.clipIndex >= uint32(len(a.clips)) {
			continue
		}
		clip := a.clips[state.clipIndex]
		duration := clip.Duration()

		state.time += deltaTime * state.speed
		switch {
		case state.loop:
			state.time = float32(math.Mod(float64(state.time), float64(duration)))
			if state.time < 0 {
				state.time += duration
			}
		case state.time >= duration:
			state.time = duration
			state.playing = false
		case state.time < 0:
			state.time = 0
			state.playing = false
		}

		state.object.SetBinding(clip.Frames[clip.frameAt(state.time)])
	}
}
