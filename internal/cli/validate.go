package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/question"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		bankPath := flags.String("bank", "", "Path to the question bank (YAML or JSON)")
		legacyTF := flags.Bool("legacy-tf", false, "Decode type 3 as true/false")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *bankPath == "" {
			fmt.Fprintln(stderr, "--bank is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		e, err := bank.Load(*bankPath)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%v\n", err)
			return ExitError
		}
		var problems []string
		seen := map[string]bool{}
		for i, rec := range e.Questions {
			if rec.ID != "" {
				if seen[rec.ID] {
					problems = append(problems, fmt.Sprintf("question %d: duplicate id %q", i, rec.ID))
				}
				seen[rec.ID] = true
			}
			if _, err := question.Reconstruct(rec, reconstructOptions(*legacyTF)...); err != nil {
				problems = append(problems, fmt.Sprintf("question %d: %v", i, err))
			}
		}
		if len(problems) > 0 {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", strings.Join(problems, "\n"))
			return ExitError
		}

		fmt.Fprintf(stdout, "Bank OK: %d questions\n", len(e.Questions))
		return ExitOK
	}
}

// parseFlags reports ok=false with the exit code to return when parsing ends
// the command.
func parseFlags(cmd *Command, flags *flag.FlagSet, args []string, stdout, stderr io.Writer) (int, bool) {
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return 0, true
}

func reconstructOptions(legacyTF bool) []question.ReconstructOption {
	if legacyTF {
		return []question.ReconstructOption{question.WithLegacyTrueFalse()}
	}
	return nil
}
