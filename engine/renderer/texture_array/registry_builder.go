package texture_array

// RegistryBuilderOption is a functional option for configuring a Registry via NewRegistry.
type RegistryBuilderOption func(*registry)

// WithDecodeWorkers sets the number of goroutines AddTextures decodes images on.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RegistryBuilderOption: a function that sets the worker count
func WithDecodeWorkers(n int) RegistryBuilderOption {
	return func(r *registry) {
		if n > 0 {
			r.decodeWorkers = n
		}
	}
}
