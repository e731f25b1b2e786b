package window

import "github.com/go-gl/glfw/v3.3/glfw"

// Key is a keyboard key code as reported by key callbacks.
type Key uint32

// Keys commonly bound by 2D games. Any other GLFW key code is reported as-is.
const (
	KeyUnknown = Key(0)
	KeySpace   = Key(glfw.KeySpace)
	KeyEscape  = Key(glfw.KeyEscape)
	KeyEnter   = Key(glfw.KeyEnter)
	KeyTab     = Key(glfw.KeyTab)
	KeyRight   = Key(glfw.KeyRight)
	KeyLeft    = Key(glfw.KeyLeft)
	KeyDown    = Key(glfw.KeyDown)
	KeyUp      = Key(glfw.KeyUp)
	KeyW       = Key(glfw.KeyW)
	KeyA       = Key(glfw.KeyA)
	KeyS       = Key(glfw.KeyS)
	KeyD       = Key(glfw.KeyD)
	KeyQ       = Key(glfw.KeyQ)
	KeyE       = Key(glfw.KeyE)
)

// KeyState tracks which keys are held. Wire Press and Release to the key callbacks and query it
// from a tick callback. Not safe for concurrent use without external locking.
type KeyState map[Key]bool

func (k KeyState) Press(key Key) {
	k[key] = true
}

func (k KeyState) Release(key Key) {
	delete(k, key)
}

func (k KeyState) Down(key Key) bool {
	return k[key]
}

// Axis returns -1, 0 or 1 from a pair of opposing keys.
//
// Parameters:
//   - negative: the key that pushes toward -1
//   - positive: the key that pushes toward 1
//
// Returns:
//   - float32: the axis value
func (k KeyState) Axis(negative, positive Key) float32 {
	var v float32
	if k[negative] {
		v--
	}
	if k[positive] {
		v++
	}
	return v
}
