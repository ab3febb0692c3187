package device

import "testing"

func TestProfilerNeverFails(t *testing.T) {
	p := Profiler()

	if p.LogicalCPUCores < 1 {
		t.Fatalf("LogicalCPUCores = %d, want >= 1", p.LogicalCPUCores)
	}
	if p.TotalMemoryGB <= 0 {
		t.Fatalf("TotalMemoryGB = %v, want > 0", p.TotalMemoryGB)
	}
	if p.OS == "" {
		t.Fatal("OS must not be empty")
	}
	if p.Architecture == "" {
		t.Fatal("Architecture must not be empty")
	}
}

func TestReadTotalMemoryGBRoundedToTenth(t *testing.T) {
	p := Profiler()
	scaled := p.TotalMemoryGB * 10
	if scaled != float64(int(scaled)) {
		t.Fatalf("TotalMemoryGB %v is not rounded to one decimal", p.TotalMemoryGB)
	}
}
