package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/livetone/internal/validation"
)

// errInvalid makes the command fail without printing a second message.
var errInvalid = errors.New("script is not allowed to run")

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Scan a script and report disallowed names",
	Long: `Parse a script and list every reference to a deny-listed name, then
print the single error the execution gate would raise for it.

The command exits with status 1 when the script does not parse or contains
violations.

Examples:
  livetone validate song.js
  livetone validate --denylist strict.yaml song.js`,
	Args: cobra.ExactArgs(1),
	RunE: validateHandler,
}

func validateHandler(cmd *cobra.Command, args []string) error {
	v, err := loadValidator()
	if err != nil {
		return err
	}

	src, err := afero.ReadFile(afero.NewOsFs(), args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	violations, err := v.Validate(string(src))
	if err != nil {
		fmt.Fprintf(out, "SyntaxError: %v\n", err)
		return errInvalid
	}
	if len(violations) == 0 {
		fmt.Fprintf(out, "%s: OK\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tKEYWORD\tCOUNT")
	for _, violation := range violations {
		fmt.Fprintf(w, "%s\t%s\t%d\n", violation.Kind, violation.Keyword, violation.Count)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%s\n", describe(validation.SynthesizeError(violations)))
	return errInvalid
}

// describe formats err the way a script would see it.
func describe(err error) string {
	var n interface{ Name() string }
	if errors.As(err, &n) {
		return fmt.Sprintf("%s: %v", n.Name(), err)
	}
	return err.Error()
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
