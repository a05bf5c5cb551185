// Package vectors implements the similarity kernels used to rank chunk
// embeddings during retrieval, plus the byte encoding embeddings travel
// in between the store, the cache, and the network.
package vectors

import (
	"encoding/binary"
	"math"
)

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Mismatched lengths, empty input, or a zero vector yield 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float32
	n := len(a) - len(a)%4

	// Four accumulations per step so the compiler can vectorize the loop
	for i := 0; i < n; i += 4 {
		dot += a[i]*b[i] + a[i+1]*b[i+1] + a[i+2]*b[i+2] + a[i+3]*b[i+3]
		na += a[i]*a[i] + a[i+1]*a[i+1] + a[i+2]*a[i+2] + a[i+3]*a[i+3]
		nb += b[i]*b[i] + b[i+1]*b[i+1] + b[i+2]*b[i+2] + b[i+3]*b[i+3]
	}
	for i := n; i < len(a); i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}

	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (sqrt32(na) * sqrt32(nb))
}

// BatchCosineSimilarity scores one query against every target, writing the
// results into scores, which must hold len(targets) elements. The query
// norm is computed once for the whole batch. A zero vector or a target of
// a different dimension scores 0.
func BatchCosineSimilarity(query []float32, targets [][]float32, scores []float32) {
	var qn float32
	for _, v := range query {
		qn += v * v
	}
	if qn == 0 {
		for i := range scores {
			scores[i] = 0
		}
		return
	}
	invQueryNorm := 1 / sqrt32(qn)

	for i, target := range targets {
		if len(target) != len(query) {
			scores[i] = 0
			continue
		}

		var dot, tn float32
		n := len(target) - len(target)%4
		for j := 0; j < n; j += 4 {
			dot += query[j]*target[j] + query[j+1]*target[j+1] +
				query[j+2]*target[j+2] + query[j+3]*target[j+3]
			tn += target[j]*target[j] + target[j+1]*target[j+1] +
				target[j+2]*target[j+2] + target[j+3]*target[j+3]
		}
		for j := n; j < len(target); j++ {
			dot += query[j] * target[j]
			tn += target[j] * target[j]
		}

		if tn == 0 {
			scores[i] = 0
			continue
		}
		scores[i] = dot * invQueryNorm / sqrt32(tn)
	}
}

// L2Norm returns the Euclidean length of v
func L2Norm(v []float32) float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	return sqrt32(sum)
}

// Normalize scales v in place to unit length. Zero vectors are left alone.
func Normalize(v []float32) {
	norm := L2Norm(v)
	if norm == 0 {
		return
	}
	inv := 1 / norm
	for i := range v {
		v[i] *= inv
	}
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Encode packs an embedding into little-endian float32 bytes, the layout
// used for database BLOBs and cache values. Empty input encodes to nil.
func Encode(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	b := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(x))
	}
	return b
}

// Decode unpacks little-endian float32 bytes produced by Encode. Empty or
// misaligned input decodes to nil.
func Decode(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
