package embedding

// Resize coerces a vector to target length so embeddings from backends with
// different dimensionality land in the same store.
//
// Rules, in order:
//   - already target length: returned unchanged
//   - a whole multiple of target: contiguous groups averaged down
//   - longer but not a multiple: truncated
//   - shorter: tiled until it covers target, then truncated
func Resize(vec []float32, target int) []float32 {
	if target <= 0 || len(vec) == 0 {
		return vec
	}
	if len(vec) == target {
		return vec
	}

	if len(vec) > target {
		if len(vec)%target == 0 {
			group := len(vec) / target
			out := make([]float32, target)
			for i := 0; i < target; i++ {
				var sum float32
				for j := 0; j < group; j++ {
					sum += vec[i*group+j]
				}
				out[i] = sum / float32(group)
			}
			return out
		}
		out := make([]float32, target)
		copy(out, vec[:target])
		return out
	}

	out := make([]float32, target)
	for i := range out {
		out[i] = vec[i%len(vec)]
	}
	return out
}

// IsZeroVector reports whether every component is zero. A zero vector is the
// provider's signal that all embedding strategies failed.
func IsZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
