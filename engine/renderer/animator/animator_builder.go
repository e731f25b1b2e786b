package animator

import "fmt"

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithClips is an option builder that registers clips during construction. Clip indices follow
// argument order.
//
// Parameters:
//   - clips: the clips to register
//
// Returns:
//   - AnimatorBuilderOption: a function that adds the clips to an animator
func WithClips(clips ...Clip) AnimatorBuilderOption {
	return func(a *animator) {
		for _, clip := range clips {
			if _, err := a.addClip(clip); err != nil {
				panic(fmt.Sprintf("animator: WithClips: %v", err))
			}
		}
	}
}
