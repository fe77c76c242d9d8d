// Package viz renders experiment results in the terminal.
//
// [Report] prints the scalar summary of a run with lipgloss styling, and
// [Chart] draws a series with asciigraph. Series that span many decades
// (singular values, errors, modal energy) are drawn on a log10 axis.
package viz
