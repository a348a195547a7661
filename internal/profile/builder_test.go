package profile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwise/retirement-engine/internal/domain"
)

func intPtr(v int) *int { return &v }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func completeProfile() *domain.HouseholdProfile {
	return &domain.HouseholdProfile{
		Primary: domain.PersonProfile{
			Name:         "alex",
			Age:          60,
			AnnualIncome: decimal.NewFromInt(120000),
			Assets: domain.AssetBuckets{
				Taxable:     decimal.NewFromInt(300000),
				TaxDeferred: decimal.NewFromInt(400000),
				TaxFree:     decimal.NewFromInt(100000),
			},
			Allocation: &domain.Allocation{
				Stocks: decimal.NewFromFloat(0.6),
				Bonds:  decimal.NewFromFloat(0.35),
				Cash:   decimal.NewFromFloat(0.05),
			},
			SSClaimAge: intPtr(67),
		},
		RetirementAge:   intPtr(65),
		MonthlyExpenses: decPtr(7000),
		Seed:            42,
	}
}

func TestBuildIncompleteProfileListsAllMissingFields(t *testing.T) {
	b := NewBuilder()
	_, err := b.Build(&domain.HouseholdProfile{
		Primary: domain.PersonProfile{Name: "alex", Age: 60, AnnualIncome: decimal.NewFromInt(100000)},
	})
	require.Error(t, err)

	var incomplete *domain.IncompleteInputError
	require.ErrorAs(t, err, &incomplete)
	assert.ElementsMatch(t,
		[]string{"retirement_age", "monthly_expenses", "primary.ss_claim_age"},
		incomplete.MissingFields)
}

func TestBuildNeverDefaultsRequiredFields(t *testing.T) {
	b := NewBuilder()
	p := completeProfile()
	p.MonthlyExpenses = nil

	_, err := b.Build(p)
	var incomplete *domain.IncompleteInputError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"monthly_expenses"}, incomplete.MissingFields)
}

func TestBuildResolvesDefaults(t *testing.T) {
	b := NewBuilder()
	params, err := b.Build(completeProfile())
	require.NoError(t, err)

	assert.Equal(t, 65, params.RetirementAge)
	assert.Equal(t, defaultLifeExpectancy, params.LifeExpectancy)
	assert.True(t, params.AnnualExpenses.Equal(decimal.NewFromInt(84000)))
	assert.True(t, params.ExpenseInflation.Equal(defaultExpenseInflation))
	assert.True(t, params.EffectiveTaxRate.Equal(defaultEffectiveTaxRate))
	require.Len(t, params.Owners, 1)
	assert.Equal(t, 67, params.Owners[0].SSStartAge)
	assert.True(t, params.Owners[0].Income.SocialSecurity.IsPositive(),
		"benefit must be computed from income when no explicit amount is given")
}

func TestBuildExplicitBenefitOverridesComputed(t *testing.T) {
	b := NewBuilder()
	p := completeProfile()
	p.Primary.SSMonthlyAmount = decPtr(2500)

	params, err := b.Build(p)
	require.NoError(t, err)
	assert.True(t, params.Owners[0].Income.SocialSecurity.Equal(decimal.NewFromInt(30000)),
		"explicit monthly amount must win over the computed benefit")
}

func TestBuildKeepsSpouseData(t *testing.T) {
	b := NewBuilder()
	p := completeProfile()
	p.MarriedFilingJointly = true
	p.Spouse = &domain.PersonProfile{
		Name:           "sam",
		Age:            58,
		AnnualIncome:   decimal.NewFromInt(60000),
		Assets:         domain.AssetBuckets{TaxFree: decimal.NewFromInt(50000), HSA: decimal.NewFromInt(25000)},
		SSClaimAge:     intPtr(65),
		LifeExpectancy: intPtr(93),
	}

	params, err := b.Build(p)
	require.NoError(t, err)
	require.Len(t, params.Owners, 2, "spouse must never be silently dropped")
	assert.Equal(t, "sam", params.Owners[1].Name)
	assert.True(t, params.TotalBuckets().HSA.Equal(decimal.NewFromInt(25000)))
	require.NotNil(t, params.SpouseLifeExpectancy)
	assert.Equal(t, 93, *params.SpouseLifeExpectancy)
	assert.Equal(t, 93, params.PlanLifeExpectancy())
}

func TestBuildSpouseMissingClaimAgeIsIncomplete(t *testing.T) {
	b := NewBuilder()
	p := completeProfile()
	p.Spouse = &domain.PersonProfile{Name: "sam", Age: 58, AnnualIncome: decimal.NewFromInt(60000)}

	_, err := b.Build(p)
	var incomplete *domain.IncompleteInputError
	require.ErrorAs(t, err, &incomplete)
	assert.Contains(t, incomplete.MissingFields, "spouse.ss_claim_age")
}

func TestApplyOverlayLeavesBaselineUntouched(t *testing.T) {
	base := completeProfile()
	overlay := &domain.OptimizationOverlay{
		RetirementAge:   intPtr(62),
		MonthlyExpenses: decPtr(6000),
		SSClaimAge:      intPtr(70),
	}

	resolved := ApplyOverlay(base, overlay)

	assert.Equal(t, 62, *resolved.RetirementAge)
	assert.True(t, resolved.MonthlyExpenses.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, 70, *resolved.Primary.SSClaimAge)

	// the baseline keeps its own values and its own pointers
	assert.Equal(t, 65, *base.RetirementAge)
	assert.True(t, base.MonthlyExpenses.Equal(decimal.NewFromInt(7000)))
	assert.Equal(t, 67, *base.Primary.SSClaimAge)
	assert.NotSame(t, base.RetirementAge, resolved.RetirementAge)
}

func TestApplyOverlayResetsExplicitBenefitOnNewClaimAge(t *testing.T) {
	base := completeProfile()
	base.Primary.SSMonthlyAmount = decPtr(2500)

	resolved := ApplyOverlay(base, &domain.OptimizationOverlay{SSClaimAge: intPtr(62)})
	assert.Nil(t, resolved.Primary.SSMonthlyAmount,
		"a stale explicit amount must not survive a claim-age change")
	assert.NotNil(t, base.Primary.SSMonthlyAmount)
}

func TestBuildWithOverlayProducesIndependentParams(t *testing.T) {
	b := NewBuilder()
	base := completeProfile()

	baseline, err := b.Build(base)
	require.NoError(t, err)
	overlaid, err := b.BuildWithOverlay(base, &domain.OptimizationOverlay{RetirementAge: intPtr(68)})
	require.NoError(t, err)

	assert.Equal(t, 65, baseline.RetirementAge)
	assert.Equal(t, 68, overlaid.RetirementAge)
}

func TestBuildNetsLiabilitiesAgainstBuckets(t *testing.T) {
	b := NewBuilder()
	p := completeProfile()
	p.Liabilities = decimal.NewFromInt(350000)

	params, err := b.Build(p)
	require.NoError(t, err)

	// debt drains taxable first, then spills into tax-deferred
	assert.True(t, params.Owners[0].Buckets.Taxable.IsZero())
	assert.True(t, params.Owners[0].Buckets.TaxDeferred.Equal(decimal.NewFromInt(350000)))
	assert.True(t, params.Owners[0].Buckets.TaxFree.Equal(decimal.NewFromInt(100000)))
	assert.True(t, params.TotalBuckets().Total().Equal(decimal.NewFromInt(450000)))

	debtFree, err := b.Build(completeProfile())
	require.NoError(t, err)
	assert.False(t, debtFree.TotalBuckets().Total().Equal(params.TotalBuckets().Total()),
		"a household in debt must not simulate like a debt-free one")
}

func TestBuildRejectsLiabilitiesExceedingAssets(t *testing.T) {
	b := NewBuilder()
	p := completeProfile()
	p.Liabilities = decimal.NewFromInt(900000)

	_, err := b.Build(p)
	var invalid *domain.InvalidParameterError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "liabilities", invalid.Field)
}

func TestHeuristicAllocationSumsToOne(t *testing.T) {
	for _, age := range []int{20, 35, 60, 95} {
		a := heuristicAllocation(age)
		assert.True(t, a.Sum().Equal(decimal.NewFromInt(1)), "allocation at age %d must sum to 1", age)
	}
}
