package service

import (
	"github.com/shopspring/decimal"

	"github.com/guttosm/pallet-service/internal/domain/model"
)

var cmPerMeter = decimal.NewFromInt(100)

// Aggregator projects weight and floor usage of a plan onto its truck.
type Aggregator struct {
	checker FitChecker
}

// NewAggregator creates an Aggregator.
func NewAggregator() Aggregator {
	return Aggregator{checker: NewFitChecker()}
}

// Totals computes the projection for the order's weight tier. Dimensions are
// centimetres and weights kilograms; areas are reported in square metres.
func (a Aggregator) Totals(order model.Order, packages []model.Package, pool []model.Product) model.Totals {
	tier := model.ParseWeightTier(string(order.WeightTier))
	totals := model.Totals{
		WeightTier: tier,
		Packages:   make([]model.PackageTotals, 0, len(packages)),
	}

	total := decimal.Zero
	usedArea := decimal.Zero
	for _, pkg := range packages {
		weight := productsWeight(pkg.Products, tier)
		pt := model.PackageTotals{PackageID: pkg.ID, UsedVolume: dec(a.checker.UsedVolume(pkg.Products)).Round(0)}
		if pkg.Pallet != nil {
			if maxLoad := model.SafeNumber(pkg.Pallet.MaxLoad); maxLoad > 0 {
				pt.Overweight = weight.GreaterThan(dec(maxLoad))
			}
			weight = weight.Add(dec(pkg.Pallet.Weight))
			usedArea = usedArea.Add(squareMeters(pkg.Pallet.Dimension))
			pt.FillPercentage = a.checker.FillPercentage(*pkg.Pallet, pkg.Products)
			totals.Pallets++
		}
		pt.Weight = weight.Round(2)
		total = total.Add(weight)
		totals.Packages = append(totals.Packages, pt)
	}

	truckArea := squareMeters(order.Truck.Dimension)
	truckWidth := dec(order.Truck.Dimension.Safe().Width).Div(cmPerMeter)

	totals.TotalWeight = total.Round(2)
	totals.PoolWeight = productsWeight(pool, tier).Round(2)
	totals.UsedArea = usedArea.Round(3)
	totals.RemainingArea = truckArea.Sub(usedArea).Round(3)
	totals.RemainingWeight = dec(order.Truck.MaxWeight).Sub(total).Round(2)
	totals.Overweight = totals.RemainingWeight.IsNegative()
	totals.LinearMeters = decimal.Zero
	if truckWidth.IsPositive() {
		totals.LinearMeters = usedArea.Div(truckWidth).Round(2)
	}
	return totals
}

func productsWeight(products []model.Product, tier model.WeightTier) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range products {
		if p.Count <= 0 {
			continue
		}
		sum = sum.Add(dec(p.Weights.For(tier)).Mul(decimal.NewFromInt(int64(p.Count))))
	}
	return sum
}

func squareMeters(d model.Dimension) decimal.Decimal {
	s := d.Safe()
	return dec(s.Width).Div(cmPerMeter).Mul(dec(s.Depth).Div(cmPerMeter))
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(model.SafeNumber(v))
}
