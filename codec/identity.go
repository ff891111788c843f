package codec

// Identity returns the transform that hands values through unchanged. It is
// useful as the symmetric transform of a field that only needs validators
// attached to a Transformed descriptor, or as one side of an asymmetric pair.
func Identity(v any, _ string) (any, error) { return v, nil }

// Chain composes transforms left to right; the first error stops the chain.
func Chain(fns ...func(any, string) (any, error)) func(any, string) (any, error) {
	return func(v any, field string) (any, error) {
		var err error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if v, err = fn(v, field); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
}
