package compress

import "github.com/klauspost/compress/zstd"

// Window thresholds for long-range matching. Small inputs get a window
// that covers them outright; only large inputs pay for the maximum.
const (
	windowSmallInput  = 2 << 20   // 2 MiB
	windowMediumInput = 20 << 20  // 20 MiB
	windowLargeInput  = 200 << 20 // 200 MiB
)

// windowSize selects the matching window for an input of the given size
// when long mode is enabled.
func windowSize(inputSize int64) int {
	switch {
	case inputSize < windowSmallInput:
		return 1 << 20 // 1 MiB
	case inputSize < windowMediumInput:
		return 16 << 20 // 16 MiB
	case inputSize < windowLargeInput:
		return 128 << 20 // 128 MiB
	default:
		return zstd.MaxWindowSize
	}
}
