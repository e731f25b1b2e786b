package shader

import _ "embed"

// SpriteSource is the WGSL source of the built-in sprite shader. Group 0 holds the camera
// uniform and group 1 holds a texture array and its sampler.
//
//go:embed assets/sprite.wgsl
var SpriteSource string

// SpriteKey is the pipeline and shader key of the built-in sprite shader.
const SpriteKey = "sprite"
