package pathplan

import (
	"strings"
	"testing"

	"github.com/alexchartier/digital-rf/ratetime"
)

func mustPlanner(t *testing.T, subdirSecs, fileMs, num, den uint64) *Planner {
	t.Helper()
	p, err := New(subdirSecs, fileMs, num, den)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCadenceValidation(t *testing.T) {
	// 3600 s subdirs divide evenly into 1000 ms files.
	if _, err := New(3600, 1000, 200, 1); err != nil {
		t.Errorf("valid cadence rejected: %v", err)
	}
	// 1 s subdirs do not divide into 700 ms files.
	if _, err := New(1, 700, 200, 1); err == nil {
		t.Error("expected cadence divisibility error")
	}
	if _, err := New(0, 1000, 200, 1); err == nil {
		t.Error("expected error for zero subdir cadence")
	}
	if _, err := New(1, 1000, 0, 1); err != ratetime.ErrZeroRate {
		t.Error("expected zero rate error")
	}
}

func TestPlanFirstSecond(t *testing.T) {
	p := mustPlanner(t, 3600, 1000, 200, 1)

	pos, err := p.Plan(0)
	if err != nil {
		t.Fatal(err)
	}
	if pos.SubdirName != "1970-01-01T00-00-00" {
		t.Errorf("SubdirName = %q", pos.SubdirName)
	}
	if pos.FileName != "rf@0.000.h5" {
		t.Errorf("FileName = %q", pos.FileName)
	}
	if pos.FileFirstIndex != 0 || pos.FileEndIndex != 200 {
		t.Errorf("file bounds = [%d, %d), want [0, 200)", pos.FileFirstIndex, pos.FileEndIndex)
	}
	if pos.SubdirEndIndex != 3600*200 {
		t.Errorf("SubdirEndIndex = %d", pos.SubdirEndIndex)
	}
	if pos.SampleOffset(150) != 150 || pos.FileRemaining(150) != 50 {
		t.Errorf("offset/remaining wrong at 150")
	}
}

func TestPlanSecondFile(t *testing.T) {
	p := mustPlanner(t, 3600, 1000, 200, 1)

	pos, err := p.Plan(200)
	if err != nil {
		t.Fatal(err)
	}
	if pos.FileName != "rf@1.000.h5" {
		t.Errorf("FileName = %q", pos.FileName)
	}
	if pos.SubdirName != "1970-01-01T00-00-00" {
		t.Errorf("SubdirName = %q", pos.SubdirName)
	}
	if pos.FileFirstIndex != 200 {
		t.Errorf("FileFirstIndex = %d", pos.FileFirstIndex)
	}
}

func TestPlanSubdirBoundary(t *testing.T) {
	p := mustPlanner(t, 2, 1000, 1, 1)

	pos, err := p.Plan(1)
	if err != nil {
		t.Fatal(err)
	}
	if pos.SubdirName != "1970-01-01T00-00-00" || pos.FileName != "rf@1.000.h5" {
		t.Errorf("sample 1: %q/%q", pos.SubdirName, pos.FileName)
	}

	pos, err = p.Plan(2)
	if err != nil {
		t.Fatal(err)
	}
	if pos.SubdirName != "1970-01-01T00-00-02" || pos.FileName != "rf@2.000.h5" {
		t.Errorf("sample 2: %q/%q", pos.SubdirName, pos.FileName)
	}

	pos, err = p.Plan(3)
	if err != nil {
		t.Fatal(err)
	}
	if pos.SubdirName != "1970-01-01T00-00-02" || pos.FileName != "rf@3.000.h5" {
		t.Errorf("sample 3: %q/%q", pos.SubdirName, pos.FileName)
	}
}

func TestSubFileCadence(t *testing.T) {
	// 100 ms files at 200 Hz: 20 samples per file.
	p := mustPlanner(t, 1, 100, 200, 1)

	pos, err := p.Plan(25)
	if err != nil {
		t.Fatal(err)
	}
	if pos.FileName != "rf@0.100.h5" {
		t.Errorf("FileName = %q", pos.FileName)
	}
	if pos.FileFirstIndex != 20 || pos.FileEndIndex != 40 {
		t.Errorf("file bounds = [%d, %d)", pos.FileFirstIndex, pos.FileEndIndex)
	}
}

func TestFractionalRateBoundaries(t *testing.T) {
	// 2.5 Hz (5/2): 1000 ms files hold 2.5 samples, so file populations
	// alternate between 2 and 3.
	p := mustPlanner(t, 2, 1000, 5, 2)

	counts := map[string]uint64{}
	for g := uint64(0); g < 10; g++ {
		pos, err := p.Plan(g)
		if err != nil {
			t.Fatal(err)
		}
		counts[pos.FileName]++
		if g < pos.FileFirstIndex || g >= pos.FileEndIndex {
			t.Errorf("g=%d outside its file window [%d, %d)", g, pos.FileFirstIndex, pos.FileEndIndex)
		}
	}
	// Samples 0..9 at 2.5 Hz span 4 s: files 0,1,2,3 with populations 3,2,3,2.
	want := map[string]uint64{
		"rf@0.000.h5": 3, "rf@1.000.h5": 2, "rf@2.000.h5": 3, "rf@3.000.h5": 2,
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("%s holds %d samples, want %d", name, counts[name], n)
		}
	}
}

func TestFileInsideSubdirProperty(t *testing.T) {
	p := mustPlanner(t, 4, 500, 48_000, 441)

	x := uint64(0x243f6a8885a308d3)
	for i := 0; i < 3000; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		g := x % (uint64(1) << 45)

		pos, err := p.Plan(g)
		if err != nil {
			t.Fatal(err)
		}
		// The file window must lie inside the subdir window.
		fileSec := pos.FileStartMillisecond / 1000
		if fileSec < pos.SubdirStartSecond || fileSec >= pos.SubdirStartSecond+4 {
			t.Fatalf("g=%d: file %q outside subdir %q", g, pos.FileName, pos.SubdirName)
		}
		// g lies inside both windows.
		if g < pos.FileFirstIndex || g >= pos.FileEndIndex || g >= pos.SubdirEndIndex {
			t.Fatalf("g=%d outside planned windows %+v", g, pos)
		}
		// Offset plus remaining spans the whole file window.
		if pos.SampleOffset(g)+pos.FileRemaining(g) != pos.FileEndIndex-pos.FileFirstIndex {
			t.Fatalf("g=%d: offset+remaining != window size", g)
		}
	}
}

func TestNames(t *testing.T) {
	if got := SubdirName(0); got != "1970-01-01T00-00-00" {
		t.Errorf("SubdirName(0) = %q", got)
	}
	if got := SubdirName(3600); got != "1970-01-01T01-00-00" {
		t.Errorf("SubdirName(3600) = %q", got)
	}
	if got := FileName(0); got != "rf@0.000.h5" {
		t.Errorf("FileName(0) = %q", got)
	}
	if got := FileName(12345); got != "rf@12.345.h5" {
		t.Errorf("FileName(12345) = %q", got)
	}
	if got := FileName(1500); !strings.HasSuffix(got, ".500.h5") {
		t.Errorf("FileName(1500) = %q", got)
	}
}
