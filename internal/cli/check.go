package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/logger"
)

type checkReport struct {
	Exam    string           `json:"exam"`
	Summary grading.Summary  `json:"summary"`
	Results []grading.Result `json:"results"`
}

// runCheck builds the handler for the check command. The bank and answers run
// through the same attempt flow the server uses, backed by an in-memory store.
func runCheck(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		bankPath := flags.String("bank", "", "Path to the question bank (YAML or JSON)")
		answersPath := flags.String("answers", "", "Path to the answer sheet (question id -> response)")
		asJSON := flags.Bool("json", false, "Print the report as JSON")
		partial := flags.Bool("partial", true, "Partial credit for multiple choice")
		maxEdit := flags.Int("max-edit", 0, "Fill answers within this edit distance get half credit")
		numTol := flags.String("num-tol", "", "Numeric tolerance for fill answers, e.g. tol=0.01,reltol=0.05")
		legacyTF := flags.Bool("legacy-tf", false, "Decode type 3 as true/false")
		if code, ok := parseFlags(cmd, flags, args, stdout, stderr); !ok {
			return code
		}
		if *bankPath == "" || *answersPath == "" {
			fmt.Fprintln(stderr, "--bank and --answers are required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		e, err := bank.Load(*bankPath)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}
		answers, err := bank.LoadResponses(*answersPath)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}

		absTol, relTol := grading.ParseTolerance(*numTol)
		grader := grading.NewDefaultGrader(
			grading.WithPartialMulti(*partial),
			grading.WithMaxEditDistance(*maxEdit),
			grading.WithNumericTolerance(absTol, relTol),
		)
		svc := exam.NewService(exam.NewInMemoryStore(), grader, logger.Nop(),
			exam.WithReconstructOptions(reconstructOptions(*legacyTF)...))

		results, err := grade(context.Background(), svc, e, answers)
		if err != nil {
			fmt.Fprintf(stderr, "check failed: %v\n", err)
			return ExitError
		}
		report := checkReport{Exam: e.Title, Summary: grading.Summarize(results), Results: results}

		if *asJSON {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				fmt.Fprintf(stderr, "write report: %v\n", err)
				return ExitError
			}
			return ExitOK
		}
		printReport(stdout, report)
		return ExitOK
	}
}

func grade(ctx context.Context, svc *exam.Service, e exam.Exam, answers map[string]exam.Response) ([]grading.Result, error) {
	stored, err := svc.PutExam(ctx, e)
	if err != nil {
		return nil, err
	}
	a, err := svc.Start(ctx, stored.ID, "quizctl")
	if err != nil {
		return nil, err
	}
	if _, err := svc.Save(ctx, a.ID, answers); err != nil {
		return nil, err
	}
	_, results, err := svc.Submit(ctx, a.ID)
	return results, err
}

func printReport(w io.Writer, r checkReport) {
	if r.Exam != "" {
		fmt.Fprintf(w, "%s\n\n", r.Exam)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tRESULT\tPOINTS")
	for _, res := range r.Results {
		verdict := "wrong"
		switch {
		case res.Correct:
			verdict = "correct"
		case res.NeedsManual:
			verdict = "manual"
		case res.AutoPoints > 0:
			verdict = "partial"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g/%g\n", res.QuestionID, res.Kind, verdict, res.AutoPoints, res.MaxPoints)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nScore: %g/%g (%d of %d correct)\n", r.Summary.Score, r.Summary.MaxScore, r.Summary.Correct, r.Summary.Total)
}
