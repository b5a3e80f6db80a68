// Package compute picks the lane width used by vectorized force kernels.
//
// The width follows the widest double-precision vector unit the CPU reports:
//
//   - AVX-512F: 8 lanes
//   - AVX2 or AVX: 4 lanes
//   - SSE2 or ASIMD (NEON): 2 lanes
//
// Unknown CPUs get 4 lanes, which keeps batches small without giving up the
// batched loop shape. Set GRAVSIM_LANES to force a width:
//
//	GRAVSIM_LANES=8 gravsim bench
package compute
