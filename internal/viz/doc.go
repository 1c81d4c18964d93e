// Package viz renders run summaries and plots for the terminal.
//
// Styling uses lipgloss; time series are drawn with asciigraph after being
// downsampled to the plot width.
package viz
