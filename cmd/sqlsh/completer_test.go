package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bawdo/sqlsh/internal/testutil"
)

func doComplete(t *testing.T, sh *shell, input string) ([]string, int) {
	t.Helper()
	c := &shellCompleter{sh: sh}
	lines, length := c.Do([]rune(input), len([]rune(input)))
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out, length
}

func TestCompleterKeywords(t *testing.T) {
	t.Parallel()
	sh, _ := newTestShell(t)

	suffixes, length := doComplete(t, sh, "SEL")
	if diff := cmp.Diff([]string{"ECT "}, suffixes); diff != "" {
		t.Errorf("suffixes mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, length, 3)
}

func TestCompleterTables(t *testing.T) {
	t.Parallel()
	sh, _ := newTestShell(t)
	seed(t, sh)
	testutil.AssertNoError(t, sh.Execute("CREATE TABLE accounts (id INTEGER)"))

	suffixes, length := doComplete(t, sh, "SELECT * FROM ")
	if diff := cmp.Diff([]string{"accounts ", "users "}, suffixes); diff != "" {
		t.Errorf("suffixes mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, length, 0)

	suffixes, length = doComplete(t, sh, "SELECT * FROM us")
	if diff := cmp.Diff([]string{"ers "}, suffixes); diff != "" {
		t.Errorf("suffixes mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, length, 2)
}

func TestCompleterTrailingSpaceDoesNotMisalign(t *testing.T) {
	t.Parallel()
	sh, _ := newTestShell(t)
	seed(t, sh)

	// The engine anchors on the node one byte left of the trailing space, so
	// the typed text "u " cannot be extended by any suffix. The completer
	// must stay silent instead of splicing a wrong one into the line.
	for _, input := range []string{"SELECT * FROM u ", "SEL "} {
		suffixes, length := doComplete(t, sh, input)
		if len(suffixes) != 0 {
			t.Errorf("Do(%q) = %v, want none", input, suffixes)
		}
		testutil.AssertEqual(t, length, 0)
	}
}

func TestCompleterNoCandidates(t *testing.T) {
	t.Parallel()
	sh, _ := newTestShell(t)

	suffixes, length := doComplete(t, sh, "SELECT id, ")
	testutil.AssertEqual(t, len(suffixes), 0)
	testutil.AssertEqual(t, length, 0)
}

func TestCompleterDotCommandNames(t *testing.T) {
	t.Parallel()
	sh, _ := newTestShell(t)

	suffixes, length := doComplete(t, sh, ".ta")
	if diff := cmp.Diff([]string{"bles"}, suffixes); diff != "" {
		t.Errorf("suffixes mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, length, 3)

	// Commands that take an argument complete with a trailing space.
	suffixes, _ = doComplete(t, sh, ".sch")
	if diff := cmp.Diff([]string{"ema "}, suffixes); diff != "" {
		t.Errorf("suffixes mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleterDotCommandArgs(t *testing.T) {
	t.Parallel()
	sh, _ := newTestShell(t)
	seed(t, sh)

	suffixes, length := doComplete(t, sh, ".schema us")
	if diff := cmp.Diff([]string{"ers "}, suffixes); diff != "" {
		t.Errorf("suffixes mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, length, 2)

	suffixes, _ = doComplete(t, sh, ".mode s")
	if diff := cmp.Diff([]string{"ql "}, suffixes); diff != "" {
		t.Errorf("suffixes mismatch (-want +got):\n%s", diff)
	}
}

func TestCompleterDotCommandWithoutArgCompletion(t *testing.T) {
	t.Parallel()
	sh, _ := newTestShell(t)

	suffixes, _ := doComplete(t, sh, ".open fi")
	testutil.AssertEqual(t, len(suffixes), 0)
}
