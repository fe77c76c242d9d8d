package viz

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/san-kum/invlap/internal/experiment"
)

// Report writes the scalar summary of a result. Well-known scalars of each
// experiment kind are printed first, the rest follow in name order.
func Report(w io.Writer, res *experiment.Result) error {
	var b strings.Builder
	shown := make(map[string]bool)
	line := func(label, key, format string) {
		v, ok := res.Scalars[key]
		if !ok {
			return
		}
		shown[key] = true
		fmt.Fprintf(&b, "  %s %s\n", MetricLabel.Render(label), MetricValue.Render(fmt.Sprintf(format, v)))
	}

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s  N=%d dim=%d", res.Kind, res.Grid.N, res.Grid.Dim)))
	b.WriteString("\n")

	switch res.Kind {
	case "inverse":
		b.WriteString("Relative reconstruction error:\n")
		for _, row := range []struct{ label, key string }{
			{"Direct inversion:     ", "direct_error"},
			{"Regularized inversion:", "regularized_error"},
		} {
			if v, ok := res.Scalars[row.key]; ok {
				shown[row.key] = true
				fmt.Fprintf(&b, "  %s %s\n", MetricLabel.Render(row.label), errorStyle(v).Render(fmt.Sprintf("%.3e", v)))
			}
		}
		b.WriteString("Relative residual:\n")
		line("Direct inversion:     ", "direct_residual", "%.3e")
		line("Regularized inversion:", "regularized_residual", "%.3e")
	case "conditioning":
		if v, ok := res.Scalars["condition"]; ok {
			shown["condition"] = true
			fmt.Fprintf(&b, "Estimated condition number: %s\n", MetricValue.Render(fmt.Sprintf("%.2e", v)))
		}
		line("sigma min:", "sigma_min", "%.6e")
		line("sigma max:", "sigma_max", "%.6e")
		writeAmplification(&b, res)
	case "spectrum":
		line("smallest |lambda|:", "lambda_min", "%.6e")
		line("largest |lambda|: ", "lambda_max", "%.6e")
		line("true field, high-frequency share:", "true_high_share", "%.3e")
		line("error, high-frequency share:     ", "error_high_share", "%.3e")
	case "boundary":
		if v, ok := res.Scalars["relative_error"]; ok {
			shown["relative_error"] = true
			fmt.Fprintf(&b, "Relative reconstruction error: %s\n", MetricValue.Render(fmt.Sprintf("%.3e", v)))
		}
	case "lambda-sweep":
		line("best lambda:", "best_lambda", "%.3e")
		line("best error: ", "best_error", "%.3e")
	}

	rest := make([]string, 0, len(res.Scalars))
	for name := range res.Scalars {
		if !shown[name] {
			rest = append(rest, name)
		}
	}
	if len(rest) > 0 {
		sort.Strings(rest)
		b.WriteString(Separator(40) + "\n")
		for _, name := range rest {
			fmt.Fprintf(&b, "  %s %s\n", MetricLabel.Render(name+":"), fmt.Sprintf("%.6e", res.Scalars[name]))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeAmplification(b *strings.Builder, res *experiment.Result) {
	levels := res.Series["noise_levels"]
	factors := res.Series["amplification"]
	spread := res.Series["amplification_std"]
	if len(levels) == 0 || len(levels) != len(factors) {
		return
	}
	b.WriteString("Noise amplification:\n")
	fmt.Fprintf(b, "  %s\n", Subtle.Render(fmt.Sprintf("%-12s %-12s %-12s", "level", "factor", "std")))
	for i := range levels {
		std := 0.0
		if i < len(spread) {
			std = spread[i]
		}
		fmt.Fprintf(b, "  %-12.3e %-12.4e %-12.2e\n", levels[i], factors[i], std)
	}
}
