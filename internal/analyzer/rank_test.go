package analyzer

import (
	"math"
	"testing"

	"github.com/ludo-technologies/pygrade/domain"
)

func TestRankForComplexity(t *testing.T) {
	tests := []struct {
		complexity int
		want       domain.ComplexityRank
	}{
		{0, domain.RankA},
		{1, domain.RankA},
		{5, domain.RankA},
		{6, domain.RankB},
		{10, domain.RankB},
		{11, domain.RankC},
		{20, domain.RankC},
		{21, domain.RankD},
		{30, domain.RankD},
		{31, domain.RankE},
		{40, domain.RankE},
		{41, domain.RankF},
		{200, domain.RankF},
	}

	for _, tt := range tests {
		if got := RankForComplexity(tt.complexity); got != tt.want {
			t.Errorf("RankForComplexity(%d) = %s, want %s", tt.complexity, got, tt.want)
		}
	}
}

func TestDescribeComplexity(t *testing.T) {
	tests := map[int]string{
		3:  "simple and easy to understand",
		8:  "well structured and easy to understand",
		15: "slightly complex",
		25: "rather complex",
		35: "alarmingly complex",
		45: "error-prone and difficult to maintain",
	}
	for complexity, want := range tests {
		if got := DescribeComplexity(complexity); got != want {
			t.Errorf("DescribeComplexity(%d) = %q, want %q", complexity, got, want)
		}
	}
}

func TestRiskLevel(t *testing.T) {
	if RiskLevel(domain.RankB) != "low" {
		t.Error("Expected B to be low risk")
	}
	if RiskLevel(domain.RankD) != "medium" {
		t.Error("Expected D to be medium risk")
	}
	if RiskLevel(domain.RankF) != "high" {
		t.Error("Expected F to be high risk")
	}
}

func TestFileRank(t *testing.T) {
	if got := FileRank(nil); got != domain.RankA {
		t.Errorf("Expected A for no functions, got %s", got)
	}
	fns := []domain.FunctionMetrics{{Complexity: 2}, {Complexity: 14}, {Complexity: 7}}
	if got := FileRank(fns); got != domain.RankC {
		t.Errorf("Expected C, got %s", got)
	}
}

func TestMaintainabilityIndex(t *testing.T) {
	if got := MaintainabilityIndex(0, 1, 10, 0); got != 100 {
		t.Errorf("Expected 100 for zero volume, got %f", got)
	}
	if got := MaintainabilityIndex(10, 1, 0, 0); got != 100 {
		t.Errorf("Expected 100 for zero sloc, got %f", got)
	}

	// no comments
	want := (171 - 5.2*math.Log(100) - 0.23*3 - 16.2*math.Log(20)) * 100 / 171
	got := MaintainabilityIndex(100, 3, 20, 0)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected %f, got %f", want, got)
	}

	// comments raise the index
	if withComments := MaintainabilityIndex(100, 3, 20, 25); withComments <= got {
		t.Errorf("Expected comments to raise the index: %f <= %f", withComments, got)
	}

	// huge code clamps to 0
	if got := MaintainabilityIndex(1e12, 500, 1e6, 0); got != 0 {
		t.Errorf("Expected clamp to 0, got %f", got)
	}
}

func TestMaintainabilityRank(t *testing.T) {
	tests := map[float64]string{100: "A", 19.5: "A", 19: "B", 9.5: "B", 9: "C", 0: "C"}
	for index, want := range tests {
		if got := MaintainabilityRank(index); got != want {
			t.Errorf("MaintainabilityRank(%v) = %s, want %s", index, got, want)
		}
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(66.66666, 2); got != 66.67 {
		t.Errorf("Expected 66.67, got %v", got)
	}
}
