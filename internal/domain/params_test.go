package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validParams() *SimulationParams {
	return &SimulationParams{
		Owners: []OwnerParams{{
			Name:       "alex",
			CurrentAge: 60,
			Buckets: AssetBuckets{
				Taxable:     decimal.NewFromInt(300000),
				TaxDeferred: decimal.NewFromInt(400000),
				TaxFree:     decimal.NewFromInt(100000),
			},
			Allocation: Allocation{
				Stocks: decimal.NewFromFloat(0.6),
				Bonds:  decimal.NewFromFloat(0.35),
				Cash:   decimal.NewFromFloat(0.05),
			},
			Income:     GuaranteedIncome{SocialSecurity: decimal.NewFromInt(30000)},
			SSStartAge: 67,
		}},
		RetirementAge:       65,
		LifeExpectancy:      90,
		AnnualExpenses:      decimal.NewFromInt(80000),
		AnnualHealthcare:    decimal.NewFromInt(8000),
		ExpenseInflation:    decimal.NewFromFloat(0.025),
		HealthcareInflation: decimal.NewFromFloat(0.05),
		EffectiveTaxRate:    decimal.NewFromFloat(0.22),
		Seed:                42,
	}
}

func TestValidateAcceptsValidParams(t *testing.T) {
	require.NoError(t, validParams().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimulationParams)
		field  string
	}{
		{"no owners", func(p *SimulationParams) { p.Owners = nil }, "owners"},
		{"negative balance", func(p *SimulationParams) {
			p.Owners[0].Buckets.Taxable = decimal.NewFromInt(-1)
		}, "buckets.taxable"},
		{"allocation not summing", func(p *SimulationParams) {
			p.Owners[0].Allocation.Cash = decimal.NewFromFloat(0.5)
		}, "allocation"},
		{"retirement before current age", func(p *SimulationParams) { p.RetirementAge = 50 }, "retirement_age"},
		{"life expectancy before retirement", func(p *SimulationParams) { p.LifeExpectancy = 60 }, "life_expectancy"},
		{"negative expenses", func(p *SimulationParams) { p.AnnualExpenses = decimal.NewFromInt(-5) }, "annual_expenses"},
		{"tax rate at 1", func(p *SimulationParams) { p.EffectiveTaxRate = decimal.NewFromInt(1) }, "effective_tax_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			var invalid *InvalidParameterError
			require.ErrorAs(t, err, &invalid)
			require.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestValidateMultipleDefectsReportDeterministically(t *testing.T) {
	// with several fields invalid at once, the same field must win every run
	for i := 0; i < 20; i++ {
		p := validParams()
		p.Owners[0].Buckets.HSA = decimal.NewFromInt(-1)
		p.Owners[0].Income.Pension = decimal.NewFromInt(-1)
		p.AnnualExpenses = decimal.NewFromInt(-1)

		var invalid *InvalidParameterError
		require.ErrorAs(t, p.Validate(), &invalid)
		require.Equal(t, "buckets.hsa", invalid.Field)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := validParams()
	p.Owners[0].GlidePath = []GlidePoint{{Age: 60, Allocation: p.Owners[0].Allocation}}
	spouseLE := 92
	p.SpouseLifeExpectancy = &spouseLE

	c := p.Clone()
	c.Owners[0].Buckets.Taxable = decimal.NewFromInt(1)
	c.Owners[0].GlidePath[0].Age = 99
	*c.SpouseLifeExpectancy = 80
	c.MarketShock = &MarketShock{Year: 1, Loss: decimal.NewFromFloat(0.3)}

	require.True(t, p.Owners[0].Buckets.Taxable.Equal(decimal.NewFromInt(300000)))
	require.Equal(t, 60, p.Owners[0].GlidePath[0].Age)
	require.Equal(t, 92, *p.SpouseLifeExpectancy)
	require.Nil(t, p.MarketShock)
}

func TestPlanLifeExpectancyUsesLongerLived(t *testing.T) {
	p := validParams()
	require.Equal(t, 90, p.PlanLifeExpectancy())

	spouseLE := 94
	p.SpouseLifeExpectancy = &spouseLE
	require.Equal(t, 94, p.PlanLifeExpectancy())
	require.Equal(t, 34, p.HorizonYears())
}

func TestTotalBucketsMergesOwners(t *testing.T) {
	p := validParams()
	p.Owners = append(p.Owners, OwnerParams{
		Name:       "sam",
		CurrentAge: 58,
		Buckets:    AssetBuckets{TaxFree: decimal.NewFromInt(50000), HSA: decimal.NewFromInt(20000)},
		Allocation: p.Owners[0].Allocation,
	})

	total := p.TotalBuckets()
	require.True(t, total.TaxFree.Equal(decimal.NewFromInt(150000)))
	require.True(t, total.HSA.Equal(decimal.NewFromInt(20000)))
	require.True(t, total.Total().Equal(decimal.NewFromInt(870000)))
}
