package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/callviz/pkg/callgraph"
)

// simplifyCommand creates the simplify command, a debugging aid that shows
// the label each signature receives.
func (c *CLI) simplifyCommand() *cobra.Command {
	var ctorLabel string

	cmd := &cobra.Command{
		Use:   "simplify [signature...]",
		Short: "Print the short label of method signatures",
		Long: `Print the short label of method signatures.

Signatures are taken from the arguments, or one per line from stdin when
no arguments are given. Each is printed as "raw -> label".`,
		Example: `  callviz simplify '<a.b.Book: void <init>(java.lang.String)>'
  grep -o '"<[^"]*>"' graph_raw.dot | tr -d '"' | sort -u | callviz simplify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				for _, sig := range args {
					writeSimplified(out, sig, ctorLabel)
				}
				return nil
			}
			return simplifyLines(cmd.InOrStdin(), out, ctorLabel)
		},
	}

	cmd.Flags().StringVar(&ctorLabel, "constructor-label", "", "label shown instead of <init>")

	return cmd
}

// simplifyLines simplifies each non-blank line of r.
func simplifyLines(r io.Reader, w io.Writer, ctorLabel string) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		sig := strings.TrimSpace(sc.Text())
		if sig == "" {
			continue
		}
		writeSimplified(w, sig, ctorLabel)
	}
	return sc.Err()
}

func writeSimplified(w io.Writer, sig, ctorLabel string) {
	fmt.Fprintf(w, "%s -> %s\n", sig, callgraph.ShortLabel(sig, ctorLabel))
}
