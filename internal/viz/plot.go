package viz

import "github.com/guptarohit/asciigraph"

// Plot draws series as a line chart no wider than width columns.
func Plot(series []float64, caption string, width, height int) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(series, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Downsample picks at most n evenly spaced points of values, always keeping
// the first and last.
func Downsample(values []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(values) <= n {
		return values
	}
	if n == 1 {
		return []float64{values[len(values)-1]}
	}

	out := make([]float64, n)
	last := len(values) - 1
	for i := range out {
		out[i] = values[i*last/(n-1)]
	}
	return out
}
