package arima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ADFResult holds the outcome of an augmented Dickey-Fuller unit-root test.
// The null hypothesis is that the series has a unit root; a p-value below
// 0.05 rejects it, suggesting the series is stationary.
type ADFResult struct {
	Statistic  float64
	PValue     float64
	Lags       int
	NObs       int
	Critical   map[string]float64
	Stationary bool
}

// Approximate quantiles of the Dickey-Fuller tau distribution for the
// constant-only regression, large samples.
var adfQuantiles = []struct {
	stat float64
	p    float64
}{
	{-3.43, 0.01},
	{-3.12, 0.025},
	{-2.86, 0.05},
	{-2.57, 0.10},
	{-2.02, 0.25},
	{-1.57, 0.50},
	{-0.96, 0.75},
	{-0.44, 0.90},
	{-0.07, 0.95},
	{0.60, 0.99},
}

// ADF runs the augmented Dickey-Fuller test with a constant and no trend,
// regressing the first difference on the lagged level and maxLag lagged
// differences. A maxLag of zero or below selects the usual floor((n-1)^(1/3))
// default.
func ADF(series []float64, maxLag int) (*ADFResult, error) {
	n := len(series)
	if n < 10 {
		return nil, errors.New("series too short for a stationarity test")
	}

	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := difference(series, 1)

	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil, fmt.Errorf("too few observations (%d) after %d lags", nObs, maxLag)
	}

	// delta_y[t] = alpha + beta*y[t-1] + sum gamma_i*delta_y[t-i] + eps
	// The test statistic is the t-statistic on beta.
	k := 2 + maxLag
	x := mat.NewDense(nObs, k, nil)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff[t]
		x.Set(i, 0, 1)
		x.Set(i, 1, series[t])
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff[t-j])
		}
	}

	coeffs, stderr, err := ols(x, y)
	if err != nil {
		return nil, fmt.Errorf("ADF regression: %w", err)
	}
	if stderr[1] == 0 {
		return nil, errors.New("degenerate ADF regression")
	}

	stat := coeffs[1] / stderr[1]
	p := adfPValue(stat)

	return &ADFResult{
		Statistic: stat,
		PValue:    p,
		Lags:      maxLag,
		NObs:      nObs,
		Critical: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		Stationary: p < 0.05,
	}, nil
}

// adfPValue interpolates the tau statistic against the quantile table.
func adfPValue(stat float64) float64 {
	q := adfQuantiles
	if stat <= q[0].stat {
		return q[0].p
	}
	if stat >= q[len(q)-1].stat {
		return q[len(q)-1].p
	}
	for i := 1; i < len(q); i++ {
		if stat <= q[i].stat {
			frac := (stat - q[i-1].stat) / (q[i].stat - q[i-1].stat)
			return q[i-1].p + frac*(q[i].p-q[i-1].p)
		}
	}
	return 1
}

// ols solves an ordinary least squares regression and returns the
// coefficients with their standard errors.
func ols(x *mat.Dense, y []float64) (coeffs, stderr []float64, err error) {
	rows, cols := x.Dims()
	yv := mat.NewVecDense(rows, y)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var inv mat.Dense
	if err = inv.Inverse(&xtx); err != nil {
		return nil, nil, fmt.Errorf("inverting normal matrix: %w", err)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	// Residual variance with n-k degrees of freedom
	var pred mat.VecDense
	pred.MulVec(x, &beta)

	rss := 0.0
	for i := 0; i < rows; i++ {
		r := y[i] - pred.AtVec(i)
		rss += r * r
	}
	dof := rows - cols
	if dof < 1 {
		return nil, nil, errors.New("not enough degrees of freedom")
	}
	sigma2 := rss / float64(dof)

	coeffs = make([]float64, cols)
	stderr = make([]float64, cols)
	for j := 0; j < cols; j++ {
		coeffs[j] = beta.AtVec(j)
		stderr[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return coeffs, stderr, nil
}

// difference applies d-th order differencing.
func difference(series []float64, d int) []float64 {
	out := series
	for i := 0; i < d; i++ {
		if len(out) < 2 {
			return nil
		}
		next := make([]float64, len(out)-1)
		for j := 1; j < len(out); j++ {
			next[j-1] = out[j] - out[j-1]
		}
		out = next
	}
	return out
}
