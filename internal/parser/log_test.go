package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/labtrend-cli/internal/analysis"
	"github.com/KaramelBytes/labtrend-cli/internal/axes"
	"github.com/KaramelBytes/labtrend-cli/internal/parser"
)

var heightPressure = axes.Assignment{X: "height", Y: "pressure", Source: axes.SourceHint}

func TestParseLogCommentsAndBlanksOnly(t *testing.T) {
	inputs := []string{
		"",
		"\n\n   \n",
		"# run 1\n// calibrated\n\n# 10, 20\n",
	}
	for _, in := range inputs {
		got := parser.ParseLog(in, heightPressure)
		if got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil slice for %q, got %#v", in, got)
		}
	}
}

func TestParseLogHeaderColumns(t *testing.T) {
	// Columns are out of order relative to the axes; the header decides.
	in := "time,pressure (kPa),height_m\n0,101,0\n1,100,10\n2,99,20\n"
	got := parser.ParseLog(in, heightPressure)
	want := []analysis.Sample{{0, 101}, {10, 100}, {20, 99}}
	assertSamples(t, got, want)
}

func TestParseLogHeaderMissingAxisFallsBackToPositional(t *testing.T) {
	in := "t,v\n0,5\n1,7\n"
	got := parser.ParseLog(in, heightPressure)
	assertSamples(t, got, []analysis.Sample{{0, 5}, {1, 7}})
}

func TestParseLogUnresolvedUsesFirstTwoNumbers(t *testing.T) {
	in := "Trial A 3 4 5\nstart\n\t\n6\t7\n8 oops 9\n"
	got := parser.ParseLog(in, axes.Unresolved)
	assertSamples(t, got, []analysis.Sample{{6, 7}, {8, 9}})
}

func TestParseLogKeyValue(t *testing.T) {
	in := "Height=0, Pressure=101.3\nheight = 10 ; pressure = 100.1 ; temp=20\npressure=99\nheight=30 pressure=NaN\n"
	got := parser.ParseLog(in, heightPressure)
	assertSamples(t, got, []analysis.Sample{{0, 101.3}, {10, 100.1}})
}

func TestParseLogKeyValueUnresolved(t *testing.T) {
	in := "t=1 temp=20.5 rh=40\nt=2 temp=21\n"
	got := parser.ParseLog(in, axes.Unresolved)
	assertSamples(t, got, []analysis.Sample{{1, 20.5}, {2, 21}})
}

func TestParseLogSkipsNonFiniteAndShortRows(t *testing.T) {
	in := "height,pressure\n0,101\n10,Inf\n20\n,\n30,98\nNaN,1\n"
	got := parser.ParseLog(in, heightPressure)
	assertSamples(t, got, []analysis.Sample{{0, 101}, {30, 98}})
}

func TestParseLogPreservesLineOrder(t *testing.T) {
	in := "30 98\n0 101\n20 99\r\n10 100\n"
	got := parser.ParseLog(in, axes.Unresolved)
	assertSamples(t, got, []analysis.Sample{{30, 98}, {0, 101}, {20, 99}, {10, 100}})
}

func TestParseLogOnlyFirstHeaderCounts(t *testing.T) {
	// The second text line is not a header, so positional parsing applies to it.
	in := "height,pressure\nnote 5 6\n0,101\n"
	got := parser.ParseLog(in, heightPressure)
	assertSamples(t, got, []analysis.Sample{{0, 101}})
}

func TestParseLogSignedExponentRowIsData(t *testing.T) {
	in := "-1.2e3,4\n0,5\n1e3,6\n"
	got := parser.ParseLog(in, axes.Unresolved)
	assertSamples(t, got, []analysis.Sample{{-1200, 4}, {0, 5}, {1000, 6}})

	// a real header after such a row still names the columns
	in = "-1.5e1 2\nheight pressure\n0 101\n"
	got = parser.ParseLog(in, heightPressure)
	assertSamples(t, got, []analysis.Sample{{-15, 2}, {0, 101}})
}

func TestReadLogFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "run.csv")
	if err := os.WriteFile(p, []byte("\xef\xbb\xbfheight,pressure\r\n0,101\r\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	text, err := parser.ReadLogFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if text != "height,pressure\n0,101\n" {
		t.Fatalf("unexpected text: %q", text)
	}

	bin := filepath.Join(dir, "run.xlsx")
	if err := os.WriteFile(bin, []byte("PK\x03\x04"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := parser.ReadLogFile(bin); !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	if _, err := parser.ReadLogFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func assertSamples(t *testing.T, got, want []analysis.Sample) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %+v, got %+v (all: %+v)", i, want[i], got[i], got)
		}
	}
}
