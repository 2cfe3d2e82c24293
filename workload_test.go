package phit

import "testing"

// =============================================================================
// Pinned workload results
// =============================================================================

// TestALUWorkloadPinned pins the ALU chain's result for two lengths. The
// returned value is pure arithmetic on a fixed seed; any drift means the
// chain changed and the calibration defaults no longer describe it.
func TestALUWorkloadPinned(t *testing.T) {
	cases := []struct {
		iters int
		want  uint64
	}{
		{20, 0x4132D878A28B266E},
		{50, 0x25A3ED679C80F7F4},
	}
	for _, tc := range cases {
		w := ALUWorkload(tc.iters)
		if got := w(); got != tc.want {
			t.Errorf("ALUWorkload(%d)() = 0x%X, want 0x%X", tc.iters, got, tc.want)
		}
		if first, second := w(), w(); first != second {
			t.Errorf("ALUWorkload(%d) not deterministic: 0x%X then 0x%X", tc.iters, first, second)
		}
	}
}

func TestALUWorkloadIterFallback(t *testing.T) {
	def := ALUWorkload(DefaultWorkIters)()
	for _, iters := range []int{0, -5} {
		if got := ALUWorkload(iters)(); got != def {
			t.Errorf("ALUWorkload(%d)() = 0x%X, want default 0x%X", iters, got, def)
		}
	}
}

func TestBranchWorkloadPinned(t *testing.T) {
	if got := BranchWorkload(20)(); got != 0xA793C3B392685BBD {
		t.Errorf("BranchWorkload(20)() = 0x%X, want 0xA793C3B392685BBD", got)
	}
	if BranchWorkload(20)() == ALUWorkload(20)() {
		t.Error("branch and ALU workloads returned the same value; folds should differ")
	}
	if BranchWorkload(-1)() != BranchWorkload(DefaultWorkIters)() {
		t.Error("non-positive iters should fall back to DefaultWorkIters")
	}
}

func TestNopWorkload(t *testing.T) {
	if got := NopWorkload(); got != 0 {
		t.Errorf("NopWorkload() = %d, want 0", got)
	}
}

// =============================================================================
// Hash workload
// =============================================================================

func TestHashWorkloadDeterministic(t *testing.T) {
	w := HashWorkload(256)
	first := w()
	for i := 0; i < 10; i++ {
		if got := w(); got != first {
			t.Fatalf("HashWorkload result drifted on call %d: 0x%X, want 0x%X", i, got, first)
		}
	}

	w2 := HashWorkload(256)
	if w2() != first {
		t.Error("two HashWorkload(256) instances disagree; scratch generation should be fixed")
	}

	if HashWorkload(256)() == HashWorkload(512)() {
		t.Error("different scratch sizes produced the same digest")
	}
}

// TestHashWorkloadSizeFloor verifies that sizes below 64 bytes are raised to
// 64, observable because equal scratch sizes digest to equal values.
func TestHashWorkloadSizeFloor(t *testing.T) {
	want := HashWorkload(64)()
	for _, size := range []int{-1, 0, 1, 63} {
		if got := HashWorkload(size)(); got != want {
			t.Errorf("HashWorkload(%d)() = 0x%X, want HashWorkload(64) result 0x%X", size, got, want)
		}
	}
}

// =============================================================================
// Memory workloads
// =============================================================================

// TestMemoryWorkloadCycle verifies the pointer chase is a fixed single cycle:
// two independent instances walk it identically, and with pages*4096/8 slots
// at 256 steps per call the walk returns to its start after slots/256 calls,
// so results repeat with exactly that period.
func TestMemoryWorkloadCycle(t *testing.T) {
	const pages = 4
	period := pages * pageSize / 8 / 256 // 8 calls for 4 pages

	m1 := MemoryWorkload(pages)
	m2 := MemoryWorkload(pages)

	first := make([]uint64, period)
	for i := range first {
		first[i] = m1()
		if got := m2(); got != first[i] {
			t.Fatalf("instances diverged at call %d: 0x%X vs 0x%X", i, first[i], got)
		}
	}
	for i := 0; i < period; i++ {
		if got := m1(); got != first[i] {
			t.Fatalf("cycle did not repeat at call %d: 0x%X, want 0x%X", period+i, got, first[i])
		}
	}
}

func TestMemoryWorkloadPageFallback(t *testing.T) {
	if MemoryWorkload(0)() != MemoryWorkload(16)() {
		t.Error("non-positive pages should fall back to 16")
	}
}

func TestMemoryStrideWorkloadDeterministic(t *testing.T) {
	s1 := MemoryStrideWorkload(2, 64)
	s2 := MemoryStrideWorkload(2, 64)
	first := s1()
	if s1() != first {
		t.Error("stride sweep result drifted between calls")
	}
	if s2() != first {
		t.Error("two identical stride workloads disagree")
	}
}

func TestMemoryStrideWorkloadFallbacks(t *testing.T) {
	want := MemoryStrideWorkload(2, 64)()
	for _, stride := range []int{0, 4, 7} {
		if got := MemoryStrideWorkload(2, stride)(); got != want {
			t.Errorf("stride %d should be raised to 64: got 0x%X, want 0x%X", stride, got, want)
		}
	}
	if MemoryStrideWorkload(0, 64)() != MemoryStrideWorkload(16, 64)() {
		t.Error("non-positive pages should fall back to 16")
	}
}
