package buyergroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSize_WithinBounds(t *testing.T) {
	sc := SizeConstraint{Min: 3, Max: 8, Ideal: 5}

	tests := []struct {
		name      string
		actual    int
		wantScore int
	}{
		{"at ideal", 5, 100},
		{"one off ideal", 4, 95},
		{"two off ideal", 7, 90},
		{"at min", 3, 90},
		{"at max", 8, 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateSize(tt.actual, sc)
			assert.True(t, v.Valid)
			assert.Equal(t, tt.wantScore, v.Score)
		})
	}
}

func TestValidateSize_ScoreFloorAt60(t *testing.T) {
	sc := SizeConstraint{Min: 1, Max: 30, Ideal: 5}
	v := ValidateSize(30, sc)
	assert.True(t, v.Valid)
	assert.Equal(t, 60, v.Score, "in-bounds score never drops below 60")
}

func TestValidateSize_SinglePersonAccepted(t *testing.T) {
	sc := SizeConstraint{Min: 3, Max: 8, Ideal: 5, AcceptSinglePerson: true}
	v := ValidateSize(1, sc)
	assert.True(t, v.Valid)
	assert.Equal(t, 80, v.Score)
}

func TestValidateSize_SmallCompanyException(t *testing.T) {
	// Below minimum, no single-person flag, but the company has <= 5
	// employees: one person is still a legitimate group.
	sc := SizeConstraint{Min: 3, Max: 6, Ideal: 4, CompanyEmployees: 4}
	v := ValidateSize(1, sc)
	assert.True(t, v.Valid)
	assert.Equal(t, 70, v.Score)
}

func TestValidateSize_BelowMinimum(t *testing.T) {
	sc := SizeConstraint{Min: 6, Max: 12, Ideal: 9, CompanyEmployees: 900}

	v := ValidateSize(4, sc)
	assert.False(t, v.Valid)
	assert.Equal(t, 60, v.Score) // 100 - 20*2

	v = ValidateSize(0, sc)
	assert.False(t, v.Valid)
	assert.Equal(t, 0, v.Score) // 100 - 20*6 clamps to 0
}

func TestValidateSize_ZeroActualExactFormula(t *testing.T) {
	sc := SizeConstraint{Min: 3, Max: 8, Ideal: 5, CompanyEmployees: 200}
	v := ValidateSize(0, sc)
	assert.False(t, v.Valid)
	assert.Equal(t, 40, v.Score) // max(0, 100 - 20*3)
}

func TestValidateSize_AboveMaximum(t *testing.T) {
	sc := SizeConstraint{Min: 3, Max: 8, Ideal: 5}

	v := ValidateSize(10, sc)
	assert.False(t, v.Valid)
	assert.Equal(t, 80, v.Score) // 100 - 10*2

	v = ValidateSize(30, sc)
	assert.False(t, v.Valid)
	assert.Zero(t, v.Score)
}

// The ideal size always validates at a perfect score.
func TestValidateSize_IdealAlwaysPerfect(t *testing.T) {
	for _, tier := range Tiers() {
		size := GroupSizeFor(tier)
		sc := SizeConstraint{Min: size.Min, Max: size.Max, Ideal: size.Ideal}
		v := ValidateSize(size.Ideal, sc)
		assert.True(t, v.Valid, "tier %s", tier)
		assert.Equal(t, 100, v.Score, "tier %s", tier)
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name         string
		actual       int
		sc           SizeConstraint
		wantAction   Action
		wantPriority Priority
	}{
		{
			name:         "high score accepts",
			actual:       5,
			sc:           SizeConstraint{Min: 3, Max: 8, Ideal: 5},
			wantAction:   ActionAccept,
			wantPriority: PriorityLow,
		},
		{
			name:         "single person accepted",
			actual:       1,
			sc:           SizeConstraint{Min: 3, Max: 8, Ideal: 5, AcceptSinglePerson: true},
			wantAction:   ActionAccept,
			wantPriority: PriorityLow,
		},
		{
			name:         "below minimum but data limited",
			actual:       2,
			sc:           SizeConstraint{Min: 5, Max: 10, Ideal: 7, DataLimited: true, CompanyEmployees: 400},
			wantAction:   ActionAcceptWithNote,
			wantPriority: PriorityMedium,
		},
		{
			name:         "below minimum signals sourcing gap",
			actual:       2,
			sc:           SizeConstraint{Min: 5, Max: 10, Ideal: 7, CompanyEmployees: 400},
			wantAction:   ActionWarn,
			wantPriority: PriorityHigh,
		},
		{
			name:         "above maximum warns",
			actual:       14,
			sc:           SizeConstraint{Min: 3, Max: 8, Ideal: 5},
			wantAction:   ActionWarn,
			wantPriority: PriorityMedium,
		},
		{
			name:         "in bounds but far from ideal",
			actual:       29,
			sc:           SizeConstraint{Min: 1, Max: 30, Ideal: 5},
			wantAction:   ActionAcceptWithNote,
			wantPriority: PriorityLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(tt.actual, tt.sc)
			assert.Equal(t, tt.wantAction, rec.Action)
			assert.Equal(t, tt.wantPriority, rec.Priority)
			assert.NotEmpty(t, rec.Message)
		})
	}
}
