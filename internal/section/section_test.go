package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIsSeparator(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"----", true},
		{"====", true},
		{"------------", true},
		{"  ----\t", true},
		{"---", false},
		{"===", false},
		{"--==", false},
		{"==--==", false},
		{"---- x", false},
		{"", false},
		{"    ", false},
		{"****", false},
		{"// ----", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.want, IsSeparator(tt.line))
		})
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	lines := []string{
		"CWE-787 Out-of-bounds Write",
		"int a = b;",
		"a++;",
		"----",
		"int a = c;",
		"====",
		"int a = d;",
		"if (a) {}",
		"--------",
		"trailing text",
		"====",
	}

	got, ok := Split(lines)
	require.True(t, ok)
	require.Equal(t, "CWE-787 Out-of-bounds Write", got.Header)
	require.Equal(t, "int a = b;\na++;", got.Original)
	require.Equal(t, "int a = c;", got.Suggestion)
	require.Equal(t, "int a = d;\nif (a) {}", got.Developer)
	require.Equal(t, got.Developer, got.Get(Developer))
}

func TestSplit_EmptySections(t *testing.T) {
	got, ok := Split([]string{"header", "----", "----", "----"})
	require.True(t, ok)
	require.Equal(t, Sections{Header: "header"}, got)
}

func TestSplit_HeaderSeparatorIgnored(t *testing.T) {
	// Line 0 is the header even when it looks like a separator.
	lines := []string{"====", "orig", "----", "sugg", "----", "dev"}
	_, ok := Split(lines)
	require.False(t, ok)

	lines = append(lines, "----")
	got, ok := Split(lines)
	require.True(t, ok)
	require.Equal(t, "orig", got.Original)
	require.Equal(t, "sugg", got.Suggestion)
	require.Equal(t, "dev", got.Developer)
}

func TestSplit_TooFewSeparators(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{name: "empty", lines: nil},
		{name: "header only", lines: []string{"header"}},
		{name: "one", lines: []string{"h", "a", "----", "b"}},
		{name: "two", lines: []string{"h", "a", "----", "b", "====", "c"}},
		{name: "short runs", lines: []string{"h", "---", "a", "===", "b", "--"}},
		{name: "mixed runs", lines: []string{"h", "--==", "a", "----", "b", "===="}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Split(tt.lines)
			require.False(t, ok)
			require.Equal(t, Sections{}, got)
		})
	}
}

func TestBounds_KindOf(t *testing.T) {
	lines := []string{"h", "o", "----", "s", "====", "d", "----", "x"}
	b, ok := Locate(lines)
	require.True(t, ok)
	require.Equal(t, Bounds{First: 2, Second: 4, Third: 6}, b)

	want := []struct {
		kind Kind
		ok   bool
	}{
		{Header, true}, {Original, true}, {0, false}, {Suggestion, true},
		{0, false}, {Developer, true}, {0, false}, {0, false},
	}
	for i, w := range want {
		k, ok := b.KindOf(i)
		require.Equal(t, w.ok, ok, "line %d", i)
		if ok {
			require.Equal(t, w.kind, k, "line %d", i)
		}
	}
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "original", Original.String())
	require.Equal(t, "developer", Developer.String())
	require.Equal(t, "unknown", Kind(42).String())
}

func TestSplit_Properties(t *testing.T) {
	content := rapid.SliceOfN(rapid.StringMatching(`[a-z ;(){}]{0,8}`), 0, 4)
	sep := rapid.SampledFrom([]string{"----", "====", "-----", "  ======  "})

	rapid.Check(t, func(t *rapid.T) {
		header := rapid.StringMatching(`[A-Z0-9 -]{0,10}`).Draw(t, "header")
		a := content.Draw(t, "a")
		b := content.Draw(t, "b")
		c := content.Draw(t, "c")
		rest := content.Draw(t, "rest")

		lines := []string{header}
		lines = append(lines, a...)
		lines = append(lines, sep.Draw(t, "s1"))
		lines = append(lines, b...)
		lines = append(lines, sep.Draw(t, "s2"))
		lines = append(lines, c...)
		lines = append(lines, sep.Draw(t, "s3"))
		lines = append(lines, rest...)

		got, ok := Split(lines)
		if !ok {
			t.Fatalf("expected structure in %q", lines)
		}
		if got.Original != strings.Join(a, "\n") {
			t.Fatalf("original = %q", got.Original)
		}
		if got.Suggestion != strings.Join(b, "\n") {
			t.Fatalf("suggestion = %q", got.Suggestion)
		}
		if got.Developer != strings.Join(c, "\n") {
			t.Fatalf("developer = %q", got.Developer)
		}
	})
}
