package resolver

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"pycalls/internal/errors"
	"pycalls/internal/searchpath"
	"pycalls/internal/slogutil"
)

// stubFinder answers from a fixed table and records every query.
type stubFinder struct {
	units   map[string]string
	queries []string
	paths   [][]string
}

func (f *stubFinder) FindUnit(name string, path []string) (string, bool) {
	f.queries = append(f.queries, name)
	f.paths = append(f.paths, path)
	origin, ok := f.units[name]
	return origin, ok
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Target
		wantErr bool
	}{
		{"four segments", "pkg.mod.Class.method", Target{"pkg", "mod", "Class", "method"}, false},
		{"single segment", "main", Target{"main"}, false},
		{"empty", "", nil, true},
		{"blank", "   ", nil, true},
		{"leading dot", ".pkg.mod", nil, true},
		{"trailing dot", "pkg.mod.", nil, true},
		{"double dot", "pkg..mod", nil, true},
		{"padded segment", "pkg. mod", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTarget(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, errors.InvalidTarget) {
					t.Errorf("error code = %q, want %q", errors.CodeOf(err), errors.InvalidTarget)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTarget(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTarget(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestResolve_SingleMatch(t *testing.T) {
	finder := &stubFinder{units: map[string]string{"pkg.mod": "/app/pkg/mod.py"}}
	r := New(finder, nil)

	got := r.Resolve(Target{"pkg", "mod", "Class", "method"}, searchpath.SearchPath{"/app"})
	if got == nil {
		t.Fatal("Resolve() = nil, want match")
	}
	want := &ResolvedUnit{Name: "pkg.mod", Origin: "/app/pkg/mod.py", Leftover: []string{"Class", "method"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestResolve_NeverQueriesFullTarget(t *testing.T) {
	finder := &stubFinder{units: map[string]string{
		"a":       "/p/a/__init__.py",
		"a.b.c":   "/p/a/b/c.py",
		"a.b.c.d": "/p/a/b/c/d.py",
	}}
	r := New(finder, nil)

	got := r.Resolve(Target{"a", "b", "c", "d"}, searchpath.SearchPath{"/p"})

	wantQueries := []string{"a", "a.b", "a.b.c"}
	if !reflect.DeepEqual(finder.queries, wantQueries) {
		t.Errorf("queries = %v, want %v", finder.queries, wantQueries)
	}
	if got == nil || got.Name != "a.b.c" {
		t.Fatalf("Resolve() = %+v, want a.b.c", got)
	}
	if !reflect.DeepEqual(got.Leftover, []string{"d"}) {
		t.Errorf("Leftover = %v, want [d]", got.Leftover)
	}
}

func TestResolve_LongerPrefixWins(t *testing.T) {
	var buf bytes.Buffer
	logger := slogutil.NewLogger(&buf, slog.LevelWarn)
	finder := &stubFinder{units: map[string]string{
		"pkg":     "/first/pkg/__init__.py",
		"pkg.sub": "/second/pkg/sub/__init__.py",
	}}
	r := New(finder, logger)

	got := r.Resolve(Target{"pkg", "sub", "helper", "run"}, searchpath.SearchPath{"/first", "/second"})
	if got == nil {
		t.Fatal("Resolve() = nil")
	}
	if got.Name != "pkg.sub" || got.Origin != "/second/pkg/sub/__init__.py" {
		t.Errorf("Resolve() = %+v, want pkg.sub from /second", got)
	}
	if !reflect.DeepEqual(got.Leftover, []string{"helper", "run"}) {
		t.Errorf("Leftover = %v", got.Leftover)
	}

	out := buf.String()
	if !strings.Contains(out, "[warn]") {
		t.Fatalf("expected a supersession warning, got: %q", out)
	}
	if !strings.Contains(out, "superseded=pkg") {
		t.Errorf("warning should name the superseded unit, got: %q", out)
	}
	if !strings.Contains(out, "supersededLeftover=sub.helper.run") {
		t.Errorf("warning should carry the superseded leftover, got: %q", out)
	}
}

func TestResolve_NoWarningForSingleMatch(t *testing.T) {
	var buf bytes.Buffer
	finder := &stubFinder{units: map[string]string{"pkg.mod": "/app/pkg/mod.py"}}
	r := New(finder, slogutil.NewLogger(&buf, slog.LevelWarn))

	r.Resolve(Target{"pkg", "mod", "f"}, searchpath.SearchPath{"/app"})
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %q", buf.String())
	}
}

func TestResolve_NoMatch(t *testing.T) {
	finder := &stubFinder{units: map[string]string{}}
	r := New(finder, nil)

	if got := r.Resolve(Target{"x", "y", "z"}, searchpath.SearchPath{"/app"}); got != nil {
		t.Errorf("Resolve() = %+v, want nil", got)
	}
}

func TestResolve_SingleSegmentNeverQueries(t *testing.T) {
	finder := &stubFinder{units: map[string]string{"main": "/app/main.py"}}
	r := New(finder, nil)

	if got := r.Resolve(Target{"main"}, searchpath.SearchPath{"/app"}); got != nil {
		t.Errorf("Resolve() = %+v, want nil", got)
	}
	if len(finder.queries) != 0 {
		t.Errorf("queries = %v, want none", finder.queries)
	}
}

func TestResolve_PassesSearchPathExactly(t *testing.T) {
	finder := &stubFinder{units: map[string]string{}}
	r := New(finder, nil)
	sp := searchpath.SearchPath{"/one", "/two"}

	r.Resolve(Target{"a", "b", "c"}, sp)

	for i, p := range finder.paths {
		if !reflect.DeepEqual(p, []string{"/one", "/two"}) {
			t.Errorf("query %d used path %v, want %v", i, p, sp)
		}
	}
}

func TestResolve_LeftoverIsSuffix(t *testing.T) {
	tests := []struct {
		name     string
		units    map[string]string
		target   Target
		wantName string
	}{
		{"first prefix", map[string]string{"a": "/a.py"}, Target{"a", "b", "c"}, "a"},
		{"middle prefix", map[string]string{"a.b": "/a/b.py"}, Target{"a", "b", "c"}, "a.b"},
		{"gap between matches", map[string]string{"a": "/a/__init__.py", "a.b.c": "/a/b/c.py"}, Target{"a", "b", "c", "d", "e"}, "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&stubFinder{units: tt.units}, nil)
			got := r.Resolve(tt.target, nil)
			if got == nil {
				t.Fatal("Resolve() = nil")
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			consumed := len(strings.Split(got.Name, "."))
			if len(got.Leftover) == 0 {
				t.Fatal("Leftover is empty")
			}
			if !reflect.DeepEqual(got.Leftover, []string(tt.target[consumed:])) {
				t.Errorf("Leftover = %v, want suffix %v", got.Leftover, tt.target[consumed:])
			}
		})
	}
}

func TestResolve_LeftoverDoesNotAliasTarget(t *testing.T) {
	target := Target{"pkg", "mod", "f"}
	r := New(&stubFinder{units: map[string]string{"pkg.mod": "/pkg/mod.py"}}, nil)

	got := r.Resolve(target, nil)
	got.Leftover[0] = "changed"
	if target[2] != "f" {
		t.Errorf("target mutated through Leftover: %v", target)
	}
}
