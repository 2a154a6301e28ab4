package result

import (
	"fmt"
	"strings"

	"github.com/roach88/fmmfsm/internal/engine"
)

// FormatText renders one line per history entry:
//
//	step 0: A=1.000000 B=0.000000 blocking(B=0.000000 C=1.000000)
//
// The blocking record shown on line i is the one computed from vector i;
// the final vector has none.
func FormatText(res *engine.Result) string {
	var sb strings.Builder
	for i, v := range res.History {
		fmt.Fprintf(&sb, "step %d:", i)
		for _, s := range res.States {
			fmt.Fprintf(&sb, " %s=%.6f", s, v[s])
		}
		if i < len(res.Blocking) {
			rec := res.Blocking[i]
			fmt.Fprintf(&sb, " blocking(B=%.6f C=%.6f)", rec.B, rec.C)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
