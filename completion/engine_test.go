package completion

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bawdo/sqlsh/internal/testutil"
)

// fakeCatalog is an in-memory Catalog. PlanColumns records every fragment it
// is asked to plan so tests can assert on trial construction.
type fakeCatalog struct {
	tables    []string
	tablesErr error
	plan      func(fragment string) ([]string, error)
	planned   []string
}

func (f *fakeCatalog) Tables() ([]string, error) {
	return f.tables, f.tablesErr
}

func (f *fakeCatalog) PlanColumns(fragment string) ([]string, error) {
	f.planned = append(f.planned, fragment)
	if f.plan == nil {
		return nil, errors.New("no plan function")
	}
	return f.plan(fragment)
}

func newTestEngine(tables ...string) (*Engine, *fakeCatalog) {
	cat := &fakeCatalog{
		tables: tables,
		plan:   func(string) ([]string, error) { return []string{"x"}, nil },
	}
	return NewEngine(cat), cat
}

func candidateTexts(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Text
	}
	return out
}

// --- keyword completion ---

func TestCompleteKeywordPrefix(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine()

	cands := e.Complete("SEL", 3)
	if diff := cmp.Diff([]string{"SELECT "}, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, cands[0].From, 0)
}

func TestCompleteKeywordCaseMatching(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine()
	tests := []struct {
		input string
		want  string
	}{
		{"sel", "select "},
		{"SEL", "SELECT "},
		{"Sel", "SELECT "},
		{"sEL", "SELECT "},
	}
	for _, tt := range tests {
		cands := e.Complete(tt.input, len(tt.input))
		if len(cands) != 1 {
			t.Fatalf("Complete(%q): expected 1 candidate, got %d", tt.input, len(cands))
		}
		testutil.AssertEqual(t, cands[0].Text, tt.want)
	}
}

func TestCompleteKeywordMultipleMatches(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine()

	cands := e.Complete("D", 1)
	want := []string{"DELETE ", "DROP ", "DETACH "}
	if diff := cmp.Diff(want, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteKeywordWithLeadingWhitespace(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine()

	cands := e.Complete("  SEL", 5)
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	testutil.AssertEqual(t, cands[0].From, 2)
	testutil.AssertEqual(t, cands[0].Text, "SELECT ")
}

func TestCompleteNoKeywordsAfterSemicolon(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine()

	// The unparsed tail has the terminating semicolon as a previous sibling,
	// so no classification rule applies.
	if cands := e.Complete("SELECT 1; SEL", 13); cands != nil {
		t.Errorf("expected no candidates, got %v", cands)
	}
}

func TestCompleteNoCandidatesAfterCompleteKeyword(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("users")

	// The cursor sits on the SELECT keyword token; no rule applies there.
	if cands := e.Complete("SELECT ", 7); cands != nil {
		t.Errorf("expected no candidates, got %v", cands)
	}
}

// --- table completion ---

func TestCompleteTablesAfterFrom(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	src := "SELECT * FROM "
	cands := e.Complete(src, len(src))
	want := []string{"accounts ", "users "}
	if diff := cmp.Diff(want, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	for _, c := range cands {
		testutil.AssertEqual(t, c.From, len(src))
	}
}

func TestCompleteTablePrefixFilter(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	src := "SELECT * FROM u"
	cands := e.Complete(src, len(src))
	if diff := cmp.Diff([]string{"users "}, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, cands[0].From, len(src)-1)
}

func TestCompleteTablesInJoin(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	src := "SELECT * FROM users JOIN "
	cands := e.Complete(src, len(src))
	want := []string{"accounts ", "users "}
	if diff := cmp.Diff(want, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteCTENamesAfterTables(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("users")

	src := "WITH a AS (SELECT 1 AS x), b AS (SELECT x FROM a) SELECT * FROM "
	cands := e.Complete(src, len(src))
	want := []string{"users ", "a ", "b "}
	if diff := cmp.Diff(want, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteCTEsDoNotLeakAcrossStatements(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("users")

	// The cursor is in the second statement; the first statement's CTE must
	// not be offered.
	src := "WITH a AS (SELECT 1) SELECT * FROM a; SELECT * FROM "
	cands := e.Complete(src, len(src))
	if diff := cmp.Diff([]string{"users "}, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteAliasCandidate(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	src := "SELECT * FROM users AS u, "
	cands := e.Complete(src, len(src))
	want := []string{"accounts ", "users ", "u "}
	if diff := cmp.Diff(want, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteDeduplicatesNames(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	// The alias collides with a catalog table; it must appear once.
	src := "SELECT * FROM users AS accounts, "
	cands := e.Complete(src, len(src))
	want := []string{"accounts ", "users "}
	if diff := cmp.Diff(want, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCompletePrefixProperty(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	sources := []string{"S", "se", "DEL", "SELECT * FROM u", "SELECT * FROM acc"}
	for _, src := range sources {
		cands := e.Complete(src, len(src))
		for _, c := range cands {
			typed := src[c.From:]
			if len(typed) > len(c.Text) || !strings.EqualFold(c.Text[:len(typed)], typed) {
				t.Errorf("Complete(%q): candidate %q does not extend typed prefix %q",
					src, c.Text, typed)
			}
		}
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	src := "SELECT * FROM u"
	cands := e.Complete(src, len(src))
	if len(cands) == 0 {
		t.Fatal("expected candidates")
	}
	// Apply the first candidate, then complete again at the new cursor.
	applied := src[:cands[0].From] + cands[0].Text
	again := e.Complete(applied, len(applied))
	found := false
	for _, c := range again {
		if c.Text == cands[0].Text && c.From == cands[0].From {
			found = true
		}
	}
	if !found {
		t.Errorf("after applying %q, candidates %v no longer include it", cands[0].Text, again)
	}
}

// --- no-completion contexts ---

func TestCompleteRespectsBounds(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("users")

	if e.Complete("SELECT", -1) != nil {
		t.Error("negative cursor should yield nil")
	}
	if e.Complete("SELECT", 100) != nil {
		t.Error("cursor past the source should yield nil")
	}
	if e.Complete("", 0) != nil {
		t.Error("empty source should yield nil")
	}
}

func TestCompleteNoContext(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("users")
	for _, src := range []string{
		"SELECT * FROM users WHERE",
		"SELECT * FROM users u",
		"SELECT id, ",
	} {
		if cands := e.Complete(src, len(src)); cands != nil {
			t.Errorf("Complete(%q) = %v, want none", src, cands)
		}
	}
}

func TestCompleteCursorInsideEarlierStatement(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	// The cursor sits at the end of the first statement's FROM table.
	src := "SELECT * FROM u; SELECT 2"
	cands := e.Complete(src, 15)
	if diff := cmp.Diff([]string{"users "}, candidateTexts(cands)); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleteCatalogFailure(t *testing.T) {
	t.Parallel()
	cat := &fakeCatalog{tablesErr: fmt.Errorf("connection lost")}
	e := NewEngine(cat)

	// Table listing fails; completion degrades to nothing instead of erroring.
	if cands := e.Complete("SELECT * FROM ", 14); cands != nil {
		t.Errorf("expected no candidates, got %v", cands)
	}
	// Keyword completion does not touch the catalog at all.
	cands := e.Complete("SEL", 3)
	testutil.AssertEqual(t, len(cands), 1)
}

// --- hints ---

func TestHint(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine("accounts", "users")

	hint, ok := e.Hint("SE", 2)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, hint, "LECT ")

	hint, ok = e.Hint("SELECT * FROM u", 15)
	testutil.AssertEqual(t, ok, true)
	testutil.AssertEqual(t, hint, "sers ")

	_, ok = e.Hint("SELECT id, ", 11)
	testutil.AssertEqual(t, ok, false)
}
