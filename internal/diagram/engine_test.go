package diagram

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"pycalls/internal/errors"
	"pycalls/internal/finder"
	"pycalls/internal/locator"
	"pycalls/internal/searchpath"
	"pycalls/internal/symbols"
	"pycalls/internal/testutil"
)

// stubFinder answers from a fixed name -> origin table and records the
// search path it was given.
type stubFinder struct {
	units    map[string]string
	gotPaths [][]string
}

func (s *stubFinder) FindUnit(name string, path []string) (string, bool) {
	s.gotPaths = append(s.gotPaths, path)
	origin, ok := s.units[name]
	return origin, ok
}

type stubOutliner struct {
	sym        *symbols.Symbol
	err        error
	outline    []symbols.Symbol
	outlineErr error
	gotPath    string
	gotSegs    []string
	numCalls   int
	numOutline int
}

func (s *stubOutliner) Find(ctx context.Context, path string, leftover []string) (*symbols.Symbol, error) {
	s.numCalls++
	s.gotPath = path
	s.gotSegs = leftover
	return s.sym, s.err
}

func (s *stubOutliner) Outline(ctx context.Context, path string) ([]symbols.Symbol, error) {
	s.numOutline++
	s.gotPath = path
	return s.outline, s.outlineErr
}

func TestEngine_Run_Module(t *testing.T) {
	f := &stubFinder{units: map[string]string{"pkg.mod": "/app/pkg/mod.py"}}
	e := NewEngine(f, locator.New(), nil, nil)

	res, err := e.Run(context.Background(), Request{
		Target:         "pkg.mod.Class.method",
		DefaultPath:    []string{"/usr/lib/python3"},
		SubstitutePath: "/app",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Start.Path != "/app/pkg/mod.py" {
		t.Errorf("Start.Path = %q, want /app/pkg/mod.py", res.Start.Path)
	}
	if !reflect.DeepEqual(res.Start.Leftover, []string{"Class", "method"}) {
		t.Errorf("Start.Leftover = %v, want [Class method]", res.Start.Leftover)
	}
	if res.Unit.Name != "pkg.mod" {
		t.Errorf("Unit.Name = %q, want pkg.mod", res.Unit.Name)
	}
	if !reflect.DeepEqual(res.SearchPath, []string{"/app"}) {
		t.Errorf("SearchPath = %v, want [/app]", res.SearchPath)
	}
	if res.PathMode != searchpath.ModeSubstitute {
		t.Errorf("PathMode = %q, want %q", res.PathMode, searchpath.ModeSubstitute)
	}
	for _, p := range f.gotPaths {
		if !reflect.DeepEqual(p, []string{"/app"}) {
			t.Errorf("finder saw path %v, want [/app]", p)
		}
	}
	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", res.RunID, err)
	}
	if res.Walk.Implemented {
		t.Error("Walk.Implemented should be false")
	}
}

func TestEngine_Run_ContainerSibling(t *testing.T) {
	root := testutil.PythonTree(t, "pkg/sub/__init.marker", "pkg/sub/helper.py")
	container := filepath.Join(root, "pkg", "sub", "__init.marker")

	f := &stubFinder{units: map[string]string{"pkg.sub": container}}
	loc := locator.Locator{ContainerFile: "__init.marker", SourceExt: ".py"}
	e := NewEngine(f, loc, nil, nil)

	res, err := e.Run(context.Background(), Request{
		Target:         "pkg.sub.helper.run",
		SubstitutePath: root,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if want := filepath.Join(root, "pkg", "sub", "helper.py"); res.Start.Path != want {
		t.Errorf("Start.Path = %q, want %q", res.Start.Path, want)
	}
	if !reflect.DeepEqual(res.Start.Leftover, []string{"run"}) {
		t.Errorf("Start.Leftover = %v, want [run]", res.Start.Leftover)
	}
	if !res.Start.Descended {
		t.Error("Start.Descended should be true")
	}
}

func TestEngine_Run_FilesystemFinder(t *testing.T) {
	root := testutil.PythonTree(t,
		"pkg/__init__.py",
		"pkg/sub/__init.marker",
		"pkg/sub/helper.py",
	)
	opts := finder.OptionsForContainer("__init.marker", []string{".py"})
	loc := locator.Locator{ContainerFile: "__init.marker", SourceExt: ".py"}
	e := NewEngine(finder.New(opts, nil), loc, nil, nil)

	res, err := e.Run(context.Background(), Request{
		Target:         "pkg.sub.helper.run",
		SubstitutePath: root,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := filepath.Join(root, "pkg", "sub", "helper.py"); res.Start.Path != want {
		t.Errorf("Start.Path = %q, want %q", res.Start.Path, want)
	}
	if !reflect.DeepEqual(res.Start.Leftover, []string{"run"}) {
		t.Errorf("Start.Leftover = %v, want [run]", res.Start.Leftover)
	}
}

func TestEngine_Run_Errors(t *testing.T) {
	root := testutil.PythonTree(t, "pkg/__init__.py")
	container := filepath.Join(root, "pkg", "__init__.py")

	tests := []struct {
		name     string
		units    map[string]string
		req      Request
		wantCode errors.ErrorCode
	}{
		{
			name:     "nothing matches",
			units:    map[string]string{},
			req:      Request{Target: "a.b.c", SubstitutePath: "/app"},
			wantCode: errors.TargetNotFound,
		},
		{
			name:     "single segment never resolves",
			units:    map[string]string{"pkg": container},
			req:      Request{Target: "pkg", SubstitutePath: root},
			wantCode: errors.TargetNotFound,
		},
		{
			name:     "missing sibling",
			units:    map[string]string{"pkg": container},
			req:      Request{Target: "pkg.nothere.func", SubstitutePath: root},
			wantCode: errors.SiblingFileNotFound,
		},
		{
			name:     "empty segment",
			units:    map[string]string{},
			req:      Request{Target: "pkg..mod"},
			wantCode: errors.InvalidTarget,
		},
		{
			name:     "negative depth",
			units:    map[string]string{},
			req:      Request{Target: "pkg.mod", Forward: -1},
			wantCode: errors.InvalidRequest,
		},
		{
			name:     "radius with forward",
			units:    map[string]string{},
			req:      Request{Target: "pkg.mod", Forward: 1, Radius: 2},
			wantCode: errors.InvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(&stubFinder{units: tt.units}, locator.New(), nil, nil)
			res, err := e.Run(context.Background(), tt.req)
			if err == nil {
				t.Fatalf("Run() = %+v, want error %s", res, tt.wantCode)
			}
			if got := errors.CodeOf(err); got != tt.wantCode {
				t.Errorf("CodeOf(err) = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestEngine_Run_Outline(t *testing.T) {
	units := map[string]string{"pkg.mod": "/app/pkg/mod.py"}

	t.Run("symbol found", func(t *testing.T) {
		want := &symbols.Symbol{Name: "method", QualifiedPath: "Class.method", Kind: symbols.KindMethod, Path: "/app/pkg/mod.py", Line: 3, EndLine: 4}
		o := &stubOutliner{sym: want}
		e := NewEngine(&stubFinder{units: units}, locator.New(), o, nil)

		res, err := e.Run(context.Background(), Request{Target: "pkg.mod.Class.method", SubstitutePath: "/app"})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.Symbol != want {
			t.Errorf("Symbol = %+v, want %+v", res.Symbol, want)
		}
		if o.gotPath != "/app/pkg/mod.py" || !reflect.DeepEqual(o.gotSegs, []string{"Class", "method"}) {
			t.Errorf("outliner called with %q %v", o.gotPath, o.gotSegs)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("Warnings = %v, want none", res.Warnings)
		}
	})

	t.Run("symbol missing is a warning", func(t *testing.T) {
		o := &stubOutliner{err: fmt.Errorf("%w: Class.method in /app/pkg/mod.py", symbols.ErrSymbolNotFound)}
		e := NewEngine(&stubFinder{units: units}, locator.New(), o, nil)

		res, err := e.Run(context.Background(), Request{Target: "pkg.mod.Class.method", SubstitutePath: "/app"})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.Symbol != nil {
			t.Errorf("Symbol = %+v, want nil", res.Symbol)
		}
		if len(res.Warnings) != 1 {
			t.Errorf("Warnings = %v, want one", res.Warnings)
		}
	})

	t.Run("outline unavailable is silent", func(t *testing.T) {
		o := &stubOutliner{err: symbols.ErrUnavailable}
		e := NewEngine(&stubFinder{units: units}, locator.New(), o, nil)

		res, err := e.Run(context.Background(), Request{Target: "pkg.mod.Class.method", SubstitutePath: "/app"})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(res.Warnings) != 0 {
			t.Errorf("Warnings = %v, want none", res.Warnings)
		}
	})
}

func TestEngine_Run_ListSymbols(t *testing.T) {
	units := map[string]string{"pkg.helper": "/app/pkg/helper.py"}
	defs := []symbols.Symbol{
		{Name: "run", QualifiedPath: "run", Kind: symbols.KindFunction, Path: "/app/pkg/helper.py", Line: 1, EndLine: 2},
		{Name: "Task", QualifiedPath: "Task", Kind: symbols.KindClass, Path: "/app/pkg/helper.py", Line: 4, EndLine: 9},
	}

	tests := []struct {
		name         string
		list         bool
		outline      []symbols.Symbol
		outlineErr   error
		wantSymbols  []symbols.Symbol
		wantOutlines int
		wantWarnings int
	}{
		{"not requested", false, defs, nil, nil, 0, 0},
		{"requested", true, defs, nil, defs, 1, 0},
		{"unreadable file", true, nil, fmt.Errorf("open /app/pkg/helper.py: permission denied"), nil, 1, 1},
		{"unavailable", true, nil, symbols.ErrUnavailable, nil, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &stubOutliner{
				sym:        &symbols.Symbol{Name: "run"},
				outline:    tt.outline,
				outlineErr: tt.outlineErr,
			}
			e := NewEngine(&stubFinder{units: units}, locator.New(), o, nil)

			res, err := e.Run(context.Background(), Request{Target: "pkg.helper.run", SubstitutePath: "/app", ListSymbols: tt.list})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !reflect.DeepEqual(res.Symbols, tt.wantSymbols) {
				t.Errorf("Symbols = %+v, want %+v", res.Symbols, tt.wantSymbols)
			}
			if o.numOutline != tt.wantOutlines {
				t.Errorf("Outline called %d times, want %d", o.numOutline, tt.wantOutlines)
			}
			if len(res.Warnings) != tt.wantWarnings {
				t.Errorf("Warnings = %v, want %d", res.Warnings, tt.wantWarnings)
			}
		})
	}
}

func TestRequest_Walk(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"none", Request{}, DirectionNone},
		{"forward", Request{Forward: 2}, DirectionForward},
		{"backward", Request{Backward: 1}, DirectionBackward},
		{"forward and backward", Request{Forward: 1, Backward: 3}, DirectionBoth},
		{"radius", Request{Radius: 2}, DirectionBoth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.req.Walk()
			if w.Direction != tt.want {
				t.Errorf("Walk().Direction = %q, want %q", w.Direction, tt.want)
			}
			if w.Forward != tt.req.Forward || w.Backward != tt.req.Backward || w.Radius != tt.req.Radius {
				t.Errorf("Walk() = %+v, depths do not match %+v", w, tt.req)
			}
		})
	}
}
