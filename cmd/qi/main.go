package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"qi/internal/ast"
	"qi/internal/fixture"
	"qi/internal/interp"
	"qi/internal/journal"
	qilog "qi/internal/log"
	"qi/internal/loader"
	"qi/internal/object"
	"qi/internal/util"
)

var (
	// Version is stamped at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile string
	journalDSN string
	history    int
	fixtures   string
	parallel   int
	seed       uint64
	debugAST   bool
	emitTree   bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "TOML configuration file")
	// run config
	flag.StringVar(&journalDSN, "journal", "", "Record runs in the journal at this DSN (sqlite:, mysql://, postgres://)")
	flag.IntVar(&history, "history", 0, "Print the N most recent journal entries and exit")
	flag.StringVar(&fixtures, "fixtures", "", "Run every fixture under this directory and exit")
	flag.IntVar(&parallel, "parallel", 0, "Fixtures run concurrently (default: number of CPUs)")
	flag.Uint64Var(&seed, "seed", 0, "Seed for rand() (default: from the clock)")
	// tree config
	flag.BoolVar(&debugAST, "debug-ast", false, "Print the program tree to stderr before running")
	flag.BoolVar(&emitTree, "emit-tree", false, "Write the program tree in long form to stdout and exit")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	config, err := configure()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, closer, err := qilog.Setup(config.LogLevel, config.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	code := run(context.Background(), config)
	closer.Close()
	os.Exit(code)
}

// configure layers the optional config file under the flags that were set explicitly.
func configure() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version, config.BuildDate, config.Commit = Version, BuildDate, Commit

	if configFile != "" {
		if err := util.LoadConfiguration(configFile, &config); err != nil {
			return config, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "journal":
			config.JournalDSN = journalDSN
		case "parallel":
			config.Parallel = parallel
		case "seed":
			config.Seed = seed
		case "debug-ast":
			config.DebugAST = debugAST
		}
	})
	if config.Parallel < 1 {
		return config, errors.New("parallel must be at least 1")
	}
	return config, nil
}

func run(ctx context.Context, config util.Configuration) int {
	var j *journal.Journal
	if config.JournalDSN != "" {
		var err error
		if j, err = journal.Open(ctx, config.JournalDSN); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		defer j.Close()
	}

	switch {
	case history > 0:
		return printHistory(ctx, j, history)
	case fixtures != "":
		return runFixtures(ctx, fixtures, config.Parallel)
	}

	if flag.NArg() != 1 {
		printHelp()
		return 2
	}
	path := flag.Arg(0)

	program, err := loader.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if emitTree {
		if err := loader.Encode(os.Stdout, program); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return 0
	}
	if config.DebugAST {
		fmt.Fprintln(os.Stderr, ast.RenderText(program, 0))
	}

	var captured bytes.Buffer
	out := io.Writer(os.Stdout)
	if j != nil {
		out = io.MultiWriter(os.Stdout, &captured)
	}

	m := interp.New(interp.Options{In: os.Stdin, Out: out, Seed: config.Seed, Logger: slog.Default()})
	start := time.Now()
	res, runErr := m.Run(program)

	if j != nil {
		record(ctx, j, journal.Entry{
			Program:  path,
			Stdout:   captured.String(),
			Started:  start,
			Duration: time.Since(start),
		}, res, runErr)
	}

	if runErr != nil {
		var qe *object.Error
		if errors.As(runErr, &qe) {
			fmt.Fprintln(os.Stderr, object.RenderStacktrace(qe))
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		}
		return 1
	}
	return 0
}

func record(ctx context.Context, j *journal.Journal, e journal.Entry, res *object.Cell, runErr error) {
	e.Status = journal.StatusOK
	if res != nil {
		e.Result = res.Inspect()
	}
	if runErr != nil {
		e.Status = journal.StatusError
		e.Error = runErr.Error()
		var qe *object.Error
		if errors.As(runErr, &qe) {
			e.Error, e.ErrorLine = qe.Message, qe.Line
		}
	}
	if _, err := j.Record(ctx, e); err != nil {
		slog.Warn("journal record failed", slog.Any("error", err))
	}
}

func printHistory(ctx context.Context, j *journal.Journal, n int) int {
	if j == nil {
		fmt.Fprintln(os.Stderr, "-history requires a journal (-journal or journal_dsn)")
		return 2
	}
	entries, err := j.Recent(ctx, n)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	for _, e := range entries {
		line := fmt.Sprintf("%5d  %s  %-5s  %8s  %s",
			e.ID, e.Started.Format(time.RFC3339), e.Status, e.Duration.Round(time.Microsecond), e.Program)
		if e.Status == journal.StatusError {
			line += fmt.Sprintf("  (%s, line %d)", e.Error, e.ErrorLine)
		}
		fmt.Println(line)
	}
	return 0
}

func runFixtures(ctx context.Context, dir string, parallel int) int {
	outcomes, err := fixture.RunDir(ctx, dir, parallel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	failed := 0
	for _, o := range outcomes {
		if o.Passed() {
			fmt.Printf("PASS  %s\n", o.Path)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", o.Path)
		for _, f := range o.Failures {
			fmt.Printf("      %s\n", f)
		}
	}
	fmt.Printf("\n%d passed, %d failed\n", len(outcomes)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func printHelp() {
	fmt.Printf(`Usage: qi [options] <program.yaml>

Options:
  -config <path>      Load settings from a TOML file. Flags override it.
  -debug-ast          Print the program tree to stderr before running.
  -emit-tree          Write the program tree in long form and exit.
  -journal <dsn>      Record each run (sqlite:<path>, mysql://..., postgres://...).
  -history <n>        Print the n most recent journal entries and exit.
  -fixtures <dir>     Run the fixtures under dir and report PASS/FAIL.
  -parallel <n>       Fixtures evaluated concurrently. Default is the CPU count.
  -seed <n>           Seed for rand(). Default is taken from the clock.
  -help               Display this help information and exit.
  -version            Display version information and exit.
  -log-level <level>  Set the log level: trace, debug, info, warn, error, none. Default is 'error'.
  -log-file <path>    Specify a log file to write logs. Default is stderr.

Details:
Programs are trees in YAML or JSON. The program runs as the body of an
implicit main function returning none; errors are printed with their line
and call trace and exit with status 1.

Examples:
  qi hello.yaml                          Run a program
  qi -journal sqlite:runs.db hello.yaml  Run and record it
  qi -fixtures testdata                  Replay a fixture directory

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func printVersion() {
	fmt.Printf("qi version 'v%s' %s %s\n", Version, BuildDate, Commit)
}
