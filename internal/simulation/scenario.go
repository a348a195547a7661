// Package simulation contains the stochastic scenario generator, the
// tax-aware withdrawal sequencer, the aggregator that turns many scenario
// runs into percentile statistics, and the deterministic execution pool that
// fans the runs out.
package simulation

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/planwise/retirement-engine/internal/domain"
)

// MarketModel parameterizes the stochastic draws. Means for inflation come
// from the simulation parameters; everything else lives here.
type MarketModel struct {
	StockMean   float64
	StockStdDev float64
	BondMean    float64
	BondStdDev  float64
	CashMean    float64
	CashStdDev  float64

	// StockBondCorrelation couples the stock and bond draws.
	StockBondCorrelation float64

	InflationStdDev  float64
	HealthcareStdDev float64

	// LTC event model: annual probability of a long-term-care cost event
	// once the primary owner reaches the onset age. Events are drawn into
	// the path regardless of insurance so insured and uninsured runs share
	// identical paths; the sequencer decides whether the event costs.
	LTCAnnualProbability float64
	LTCOnsetAge          int
}

// DefaultMarketModel returns long-run parameter estimates.
func DefaultMarketModel() MarketModel {
	return MarketModel{
		StockMean:            0.07,
		StockStdDev:          0.17,
		BondMean:             0.04,
		BondStdDev:           0.07,
		CashMean:             0.025,
		CashStdDev:           0.01,
		StockBondCorrelation: -0.10,
		InflationStdDev:      0.013,
		HealthcareStdDev:     0.02,
		LTCAnnualProbability: 0.04,
		LTCOnsetAge:          75,
	}
}

// ScenarioGenerator produces one immutable return/inflation path per
// simulated life. Given the same rand source state and parameters, the
// output is bit-for-bit reproducible.
type ScenarioGenerator struct {
	Model MarketModel
}

// NewScenarioGenerator returns a generator over the given market model.
func NewScenarioGenerator(model MarketModel) *ScenarioGenerator {
	return &ScenarioGenerator{Model: model}
}

// Generate draws a full scenario path for the household. The draw order per
// year is fixed (stocks+bonds pair, cash, inflation, healthcare inflation,
// LTC event) so the path sequence is reproducible from the rand state.
func (g *ScenarioGenerator) Generate(params *domain.SimulationParams, rng *rand.Rand) *domain.ScenarioPath {
	horizon := params.HorizonYears()
	path := &domain.ScenarioPath{
		Years:       make([]domain.YearReturns, horizon),
		Allocations: make([]domain.Allocation, horizon),
	}

	inflMean, _ := params.ExpenseInflation.Float64()
	hcMean, _ := params.HealthcareInflation.Float64()
	rho := g.Model.StockBondCorrelation
	rhoComp := math.Sqrt(1 - rho*rho)

	for y := 0; y < horizon; y++ {
		age := params.PrimaryAge() + y

		z1 := normal(rng)
		z2 := normal(rng)
		stockZ := z1
		bondZ := rho*z1 + rhoComp*z2

		yr := domain.YearReturns{
			Stocks:              decimal.NewFromFloat(g.Model.StockMean + stockZ*g.Model.StockStdDev),
			Bonds:               decimal.NewFromFloat(g.Model.BondMean + bondZ*g.Model.BondStdDev),
			Cash:                decimal.NewFromFloat(g.Model.CashMean + normal(rng)*g.Model.CashStdDev),
			Inflation:           decimal.NewFromFloat(inflMean + normal(rng)*g.Model.InflationStdDev),
			HealthcareInflation: decimal.NewFromFloat(hcMean + normal(rng)*g.Model.HealthcareStdDev),
		}
		// One uniform consumed per year whether or not the event can fire,
		// so horizon extensions leave earlier years' draws untouched.
		eventDraw := rng.Float64()
		if age >= g.Model.LTCOnsetAge {
			yr.LTCEvent = eventDraw < g.Model.LTCAnnualProbability
		}

		// A configured market shock overrides this year's drawn returns
		// after the draws are consumed, leaving every other year's sequence
		// untouched.
		if s := params.MarketShock; s != nil && y == s.Year {
			loss := s.Loss.Neg()
			yr.Stocks = loss
			yr.Bonds = loss
			yr.Cash = loss
		}

		path.Years[y] = yr
		path.Allocations[y] = householdAllocationAt(params, age)
	}
	return path
}

// normal draws a standard normal via the Box-Muller transform.
func normal(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// householdAllocationAt blends each owner's allocation at the given primary
// age, weighted by the owners' share of total household assets.
func householdAllocationAt(params *domain.SimulationParams, primaryAge int) domain.Allocation {
	total := decimal.Zero
	for _, o := range params.Owners {
		total = total.Add(o.Buckets.Total())
	}
	if total.IsZero() || len(params.Owners) == 1 {
		o := params.Owners[0]
		return ownerAllocationAt(&o, o.CurrentAge+(primaryAge-params.PrimaryAge()))
	}

	var blended domain.Allocation
	for _, o := range params.Owners {
		weight := o.Buckets.Total().Div(total)
		a := ownerAllocationAt(&o, o.CurrentAge+(primaryAge-params.PrimaryAge()))
		blended.Stocks = blended.Stocks.Add(a.Stocks.Mul(weight))
		blended.Bonds = blended.Bonds.Add(a.Bonds.Mul(weight))
		blended.Cash = blended.Cash.Add(a.Cash.Mul(weight))
	}
	return blended
}

// ownerAllocationAt resolves the glide path for an owner at an age. Between
// points the weights interpolate linearly; outside the path's range the
// nearest point holds. Owners without a glide path keep their fixed target.
func ownerAllocationAt(o *domain.OwnerParams, age int) domain.Allocation {
	if len(o.GlidePath) == 0 {
		return o.Allocation
	}
	gp := o.GlidePath
	if age <= gp[0].Age {
		return gp[0].Allocation
	}
	last := gp[len(gp)-1]
	if age >= last.Age {
		return last.Allocation
	}
	for i := 1; i < len(gp); i++ {
		if age > gp[i].Age {
			continue
		}
		lo, hi := gp[i-1], gp[i]
		frac := decimal.NewFromInt(int64(age - lo.Age)).Div(decimal.NewFromInt(int64(hi.Age - lo.Age)))
		return domain.Allocation{
			Stocks: lerp(lo.Allocation.Stocks, hi.Allocation.Stocks, frac),
			Bonds:  lerp(lo.Allocation.Bonds, hi.Allocation.Bonds, frac),
			Cash:   lerp(lo.Allocation.Cash, hi.Allocation.Cash, frac),
		}
	}
	return last.Allocation
}

func lerp(a, b, frac decimal.Decimal) decimal.Decimal {
	return a.Add(b.Sub(a).Mul(frac))
}
