package cli

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"expenses/internal/backend"
	"expenses/internal/config"
	"expenses/internal/core"
	"expenses/internal/services"
	"expenses/internal/storage"
)

// Exit codes of the expenses binary.
const (
	ExitOK      = 0 // success
	ExitFailure = 1 // storage or internal failure
	ExitUsage   = 2 // bad usage, validation failure or unknown id
)

const usageText = `Usage: expenses <command> [flags]

Commands:
  add      add a new expense
  update   update an existing expense by id
  delete   delete an expense by id
  list     list expenses, optionally filtered by category
  summary  total spending, overall or for a month (1-12) of the current year
  budget   set a monthly budget
  export   export all expenses to a CSV file
  help     show this message

Run 'expenses <command> -h' for command flags.
`

// usageError marks errors that should exit with ExitUsage.
type usageError struct {
	err error
}

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

type app struct {
	service *services.ExpenseService
	cfg     *config.Config
	stdout  io.Writer
	stderr  io.Writer
}

// Run executes one subcommand and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitFailure
	}
	logger := SetupLogger(cfg.LogLevel)

	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return ExitUsage
	}

	store, err := backend.New(cfg, logger)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitFailure
	}

	a := &app{
		service: services.NewExpenseService(store, logger),
		cfg:     cfg,
		stdout:  stdout,
		stderr:  stderr,
	}

	ctx := context.Background()
	var runErr error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "add":
		runErr = a.runAdd(ctx, rest)
	case "update":
		runErr = a.runUpdate(ctx, rest)
	case "delete":
		runErr = a.runDelete(ctx, rest)
	case "list":
		runErr = a.runList(ctx, rest)
	case "summary":
		runErr = a.runSummary(ctx, rest)
	case "budget":
		runErr = a.runBudget(ctx, rest)
	case "export":
		runErr = a.runExport(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usageText)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fmt.Fprint(stderr, usageText)
		return ExitUsage
	}

	if runErr != nil {
		if stderrors.Is(runErr, flag.ErrHelp) {
			return ExitOK
		}
		fmt.Fprintln(stderr, "error:", runErr)
		return exitCode(runErr)
	}
	return ExitOK
}

func exitCode(err error) int {
	var usage usageError
	if stderrors.As(err, &usage) {
		return ExitUsage
	}
	for _, sentinel := range []error{
		storage.ErrNotFound,
		core.ErrInvalidAmount,
		core.ErrEmptyDescription,
		core.ErrLongDescription,
		core.ErrInvalidDate,
		core.ErrInvalidMonth,
	} {
		if stderrors.Is(err, sentinel) {
			return ExitUsage
		}
	}
	return ExitFailure
}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) runAdd(ctx context.Context, args []string) error {
	fs := a.flagSet("add")
	amount := fs.String("amount", "", "expense amount, e.g. 12.50 (required)")
	description := fs.String("description", "", "expense description (required)")
	category := fs.String("category", "", "expense category (default "+core.DefaultCategory+")")
	date := fs.String("date", "", "expense date as YYYY-MM-DD (default today)")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return err
	}
	e := core.Expense{
		Description: *description,
		Amount:      core.Money{Cents: cents},
		Category:    *category,
	}
	if *date != "" {
		if e.Date, err = core.ParseDate(*date); err != nil {
			return err
		}
	}

	id, err := a.service.Add(ctx, e)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Expense added (ID: %d)\n", id)
	return nil
}

func (a *app) runUpdate(ctx context.Context, args []string) error {
	fs := a.flagSet("update")
	id := fs.Int64("id", 0, "id of the expense to update (required)")
	amount := fs.String("amount", "", "new amount")
	description := fs.String("description", "", "new description")
	category := fs.String("category", "", "new category")
	date := fs.String("date", "", "new date as YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}
	if *id <= 0 {
		return usageError{stderrors.New("missing or invalid -id")}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var patch services.ExpensePatch
	if set["amount"] {
		cents, err := core.ParseDecimalToCents(*amount)
		if err != nil {
			return err
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	if set["description"] {
		patch.Description = description
	}
	if set["category"] {
		patch.Category = category
	}
	if set["date"] {
		d, err := core.ParseDate(*date)
		if err != nil {
			return err
		}
		patch.Date = &d
	}
	if patch.IsEmpty() {
		return usageError{stderrors.New("nothing to update: pass at least one of -amount, -description, -category, -date")}
	}

	if err := a.service.Update(ctx, *id, patch); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Expense updated (ID: %d)\n", *id)
	return nil
}

func (a *app) runDelete(ctx context.Context, args []string) error {
	fs := a.flagSet("delete")
	id := fs.Int64("id", 0, "id of the expense to delete (required)")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}
	if *id <= 0 {
		return usageError{stderrors.New("missing or invalid -id")}
	}

	if err := a.service.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Expense deleted (ID: %d)\n", *id)
	return nil
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs := a.flagSet("list")
	category := fs.String("category", "", "only list expenses in this category")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}

	items, err := a.service.List(ctx, *category)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		if *category != "" {
			fmt.Fprintf(a.stdout, "No expenses found in category %q.\n", *category)
		} else {
			fmt.Fprintln(a.stdout, "No expenses recorded yet.")
		}
		return nil
	}

	fmt.Fprintf(a.stdout, "%-4s %-12s %-10s %-15s %s\n", "ID", "Date", "Amount", "Category", "Description")
	for _, e := range items {
		fmt.Fprintf(a.stdout, "%-4d %-12s %-10s %-15s %s\n",
			e.ID, e.Date.String(), e.Amount.String(), e.Category, e.Description)
	}
	return nil
}

func (a *app) runSummary(ctx context.Context, args []string) error {
	fs := a.flagSet("summary")
	month := fs.Int("month", 0, "restrict to a month (1-12) of the current year")
	category := fs.String("category", "", "restrict to a category")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}

	rep, err := a.service.Summary(ctx, *month, *category)
	if err != nil {
		return err
	}

	title := "Total expenses"
	if rep.Month != 0 {
		title = fmt.Sprintf("Total expenses for %s %d", time.Month(rep.Month), rep.Year)
	}
	if rep.Category != "" {
		title += fmt.Sprintf(" in category %q", rep.Category)
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", title, rep.Total)

	if rep.Budget != nil {
		fmt.Fprintf(a.stdout, "Budget for %s: %s\n", time.Month(rep.Month), rep.Budget)
		if rep.OverBudget() {
			over := core.Money{Cents: -rep.Remaining().Cents}
			fmt.Fprintf(a.stdout, "Warning: budget exceeded by %s\n", over)
		} else {
			fmt.Fprintf(a.stdout, "Remaining budget: %s\n", rep.Remaining())
		}
	}
	return nil
}

func (a *app) runBudget(ctx context.Context, args []string) error {
	fs := a.flagSet("budget")
	month := fs.Int("month", 0, "month (1-12) the budget applies to (required)")
	amount := fs.String("amount", "", "budget amount (required)")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}

	cents, err := core.ParseDecimalToCents(*amount)
	if err != nil {
		return err
	}
	budget := core.Money{Cents: cents}
	if err := a.service.SetBudget(ctx, *month, budget); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Budget for %s set to %s\n", time.Month(*month), budget)
	return nil
}

func (a *app) runExport(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	file := fs.String("file", a.cfg.ExportFile, "name of the CSV file to write")
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}

	f, err := os.Create(*file)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	count, err := a.service.ExportCSV(ctx, f)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	fmt.Fprintf(a.stdout, "Exported %d expenses to %s\n", count, *file)
	return nil
}
