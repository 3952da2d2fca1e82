package kernel

import "github.com/klauspost/cpuid/v2"

// PreferVector reports whether the running CPU exposes SIMD lanes wide
// enough that Vector8's 8-word batched window is worth its extra
// bookkeeping over Naive's one-word-at-a-time merge walk. It is purely
// a performance hint -- Vector8 produces output bit-identical to Naive
// on any CPU, probe result or not -- grounded on the same AVX2 check a
// real vectorized kernel would gate its intrinsic path on.
func PreferVector() bool {
	return cpuid.CPU.Supports(cpuid.AVX2)
}

// preferVector is what Select actually calls; tests override it so
// kernel-selection assertions don't depend on the machine they happen
// to run on.
var preferVector = PreferVector
