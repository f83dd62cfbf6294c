package analyzer

import "github.com/ludo-technologies/pygrade/domain"

// Upper bounds (inclusive) of each complexity rank
const (
	RankAMax = 5
	RankBMax = 10
	RankCMax = 20
	RankDMax = 30
	RankEMax = 40
)

// RankForComplexity maps a cyclomatic complexity score to its letter rank
func RankForComplexity(complexity int) domain.ComplexityRank {
	switch {
	case complexity <= RankAMax:
		return domain.RankA
	case complexity <= RankBMax:
		return domain.RankB
	case complexity <= RankCMax:
		return domain.RankC
	case complexity <= RankDMax:
		return domain.RankD
	case complexity <= RankEMax:
		return domain.RankE
	default:
		return domain.RankF
	}
}

// DescribeComplexity returns the plain-language band of a complexity score
func DescribeComplexity(complexity int) string {
	return DescribeRank(RankForComplexity(complexity))
}

// DescribeRank returns the plain-language band of a rank
func DescribeRank(rank domain.ComplexityRank) string {
	switch rank {
	case domain.RankA:
		return "simple and easy to understand"
	case domain.RankB:
		return "well structured and easy to understand"
	case domain.RankC:
		return "slightly complex"
	case domain.RankD:
		return "rather complex"
	case domain.RankE:
		return "alarmingly complex"
	default:
		return "error-prone and difficult to maintain"
	}
}

// RiskLevel buckets a rank into low (A, B), medium (C, D) or high (E, F)
func RiskLevel(rank domain.ComplexityRank) string {
	switch rank {
	case domain.RankA, domain.RankB:
		return "low"
	case domain.RankC, domain.RankD:
		return "medium"
	default:
		return "high"
	}
}

// FileRank ranks a file by its most complex function. A file without
// functions ranks A.
func FileRank(functions []domain.FunctionMetrics) domain.ComplexityRank {
	worst := 0
	for _, fn := range functions {
		if fn.Complexity > worst {
			worst = fn.Complexity
		}
	}
	return RankForComplexity(worst)
}
