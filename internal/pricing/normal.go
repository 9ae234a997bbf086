package pricing

import "gonum.org/v1/gonum/stat/distuv"

// normCDF returns Φ(x), the standard normal cumulative distribution.
func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// normPDF returns φ(x), the standard normal density.
func normPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}
