package fixture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"qi/internal/ast"
	"qi/internal/interp"
	"qi/internal/loader"
	"qi/internal/object"
)

// Expect lists what a fixture run must produce. Unset fields are not checked,
// except that a fixture without Error must not fail.
type Expect struct {
	Stdout *string `yaml:"stdout"`
	Result *string `yaml:"result"`
	Type   string  `yaml:"type"`
	Error  string  `yaml:"error"`
	Line   int     `yaml:"line"`
}

// Fixture is one program together with its input and expected behaviour.
type Fixture struct {
	Path        string    `yaml:"-"`
	Description string    `yaml:"description"`
	Stdin       string    `yaml:"stdin"`
	Seed        uint64    `yaml:"seed"`
	Expect      Expect    `yaml:"expect"`
	Program     yaml.Node `yaml:"program"`

	tree *ast.Node
}

type Outcome struct {
	Path        string
	Description string
	Stdout      string
	Result      string
	Err         error
	Failures    []string
	Duration    time.Duration
}

func (o Outcome) Passed() bool { return len(o.Failures) == 0 }

// Load reads a fixture file and decodes its program tree.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Program.Kind == 0 {
		return nil, fmt.Errorf("%s: fixture has no program", path)
	}
	f.tree, err = loader.DecodeNode(&f.Program)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return &f, nil
}

// Run evaluates the fixture's program against its stdin and checks the expectations.
func Run(f *Fixture) Outcome {
	var out bytes.Buffer
	m := interp.New(interp.Options{
		In:   strings.NewReader(f.Stdin),
		Out:  &out,
		Seed: f.Seed,
	})

	start := time.Now()
	res, err := m.Run(f.tree)
	o := Outcome{
		Path:        f.Path,
		Description: f.Description,
		Stdout:      out.String(),
		Err:         err,
		Duration:    time.Since(start),
	}
	if res != nil {
		o.Result = res.Inspect()
	}
	o.Failures = check(f.Expect, o, res)
	return o
}

func check(want Expect, o Outcome, res *object.Cell) []string {
	var failures []string
	if want.Stdout != nil && o.Stdout != *want.Stdout {
		failures = append(failures, fmt.Sprintf("stdout: expected %q, got %q", *want.Stdout, o.Stdout))
	}

	if want.Error == "" {
		if o.Err != nil {
			return append(failures, fmt.Sprintf("unexpected error: %v", o.Err))
		}
	} else {
		var qe *object.Error
		switch {
		case !errors.As(o.Err, &qe):
			failures = append(failures, fmt.Sprintf("expected error %q, got %v", want.Error, o.Err))
		case !strings.Contains(qe.Message, want.Error):
			failures = append(failures, fmt.Sprintf("error: expected %q, got %q", want.Error, qe.Message))
		case want.Line > 0 && qe.Line != want.Line:
			failures = append(failures, fmt.Sprintf("error line: expected %d, got %d", want.Line, qe.Line))
		}
		return failures
	}

	if want.Result != nil && o.Result != *want.Result {
		failures = append(failures, fmt.Sprintf("result: expected %q, got %q", *want.Result, o.Result))
	}
	if want.Type != "" && res != nil && string(res.Type()) != want.Type {
		failures = append(failures, fmt.Sprintf("result type: expected %s, got %s", want.Type, res.Type()))
	}
	return failures
}

// RunDir runs every *.yaml fixture under dir with at most parallel fixtures
// in flight. Outcomes are sorted by path. A fixture that fails to load is
// reported as a failed outcome rather than aborting the run.
func RunDir(ctx context.Context, dir string, parallel int) ([]Outcome, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan fixtures: %w", err)
	}
	sort.Strings(paths)

	if parallel < 1 {
		parallel = 1
	}
	outcomes := make([]Outcome, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := Load(path)
			if err != nil {
				outcomes[i] = Outcome{Path: path, Err: err, Failures: []string{err.Error()}}
				return nil
			}
			outcomes[i] = Run(f)
			slog.Debug("fixture finished",
				slog.String("path", path),
				slog.Bool("passed", outcomes[i].Passed()),
				slog.Duration("duration", outcomes[i].Duration))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
