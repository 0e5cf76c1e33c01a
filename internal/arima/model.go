// Package arima fits ARIMA (autoregressive integrated moving average)
// models by conditional sum of squares and produces multi-step forecasts.
// No automatic order selection is performed: the caller supplies the
// (p, d, q) order a priori.
package arima

import (
	"errors"
	"fmt"
	"math"
)

// Order is the (p, d, q) triple of an ARIMA model.
type Order struct {
	P int // autoregressive terms
	D int // differencing order
	Q int // moving-average terms
}

// DefaultOrder is the order used when the caller does not specify one.
var DefaultOrder = Order{P: 1, D: 1, Q: 1}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model is an ARIMA model. Zero value is not usable; construct with New and
// call Fit before Forecast, Residuals or FittedValues.
type Model struct {
	Order     Order
	AR        []float64 // phi coefficients
	MA        []float64 // theta coefficients
	Intercept float64
	Variance  float64
	LogLik    float64
	AIC       float64
	BIC       float64

	fitted     bool
	original   []float64
	diffed     []float64
	residuals  []float64
	fittedVals []float64
}

// New creates an unfitted ARIMA model with the given order.
func New(order Order) *Model {
	return &Model{
		Order: order,
		AR:    make([]float64, order.P),
		MA:    make([]float64, order.Q),
	}
}

const (
	cssMaxIterations = 100
	cssTolerance     = 1e-6
	cssLearningRate  = 0.01
)

// Fit estimates the model parameters from the series using conditional sum
// of squares: Yule-Walker starting values for the AR part, then gradient
// refinement of AR and MA terms together.
func (m *Model) Fit(series []float64) error {
	if len(series) < m.Order.P+m.Order.D+m.Order.Q+10 {
		return errors.New("insufficient data points for the specified order")
	}

	m.original = append([]float64(nil), series...)
	m.diffed = difference(m.original, m.Order.D)
	if len(m.diffed) == 0 {
		return errors.New("differencing produced an empty series")
	}

	if m.Order.P == 0 && m.Order.Q == 0 {
		m.fitWhiteNoise()
	} else {
		m.initCoefficients()
		m.refineCSS()
	}

	m.scoreFit()
	m.fitted = true
	return nil
}

// fitWhiteNoise handles the degenerate (0,d,0) case.
func (m *Model) fitWhiteNoise() {
	y := m.diffed
	m.Intercept = mean(y)

	m.residuals = make([]float64, len(y))
	m.fittedVals = make([]float64, len(y))
	for i, v := range y {
		m.fittedVals[i] = m.Intercept
		m.residuals[i] = v - m.Intercept
	}
}

// initCoefficients seeds AR terms from the Yule-Walker equations and MA
// terms with a small constant.
func (m *Model) initCoefficients() {
	if m.Order.P > 0 {
		acf := ACF(m.diffed, m.Order.P)
		if phi := levinsonDurbin(acf, m.Order.P); phi != nil {
			copy(m.AR, phi)
		}
	}
	for i := range m.MA {
		m.MA[i] = 0.1
	}
}

// predictAt computes the one-step prediction at index t on the differenced
// scale, given residuals observed so far.
func (m *Model) predictAt(y, residuals []float64, t int) float64 {
	pred := m.Intercept
	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.AR[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0; i++ {
		pred += m.MA[i] * residuals[t-i-1]
	}
	return pred
}

// refineCSS iteratively minimizes the conditional sum of squares.
func (m *Model) refineCSS() {
	y := m.diffed
	n := len(y)
	p, q := m.Order.P, m.Order.Q
	m.Intercept = mean(y)

	start := p
	if q > start {
		start = q
	}

	residuals := make([]float64, n)
	for iter := 0; iter < cssMaxIterations; iter++ {
		prevSSE := 0.0
		for t := start; t < n; t++ {
			residuals[t] = y[t] - m.predictAt(y, residuals, t)
			prevSSE += residuals[t] * residuals[t]
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		for t := start; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
		}

		for i := 0; i < p; i++ {
			m.AR[i] = clampUnit(m.AR[i] - cssLearningRate*arGrad[i]/float64(n))
		}
		for i := 0; i < q; i++ {
			m.MA[i] = clampUnit(m.MA[i] - cssLearningRate*maGrad[i]/float64(n))
		}

		newSSE := 0.0
		for t := start; t < n; t++ {
			residuals[t] = y[t] - m.predictAt(y, residuals, t)
			newSSE += residuals[t] * residuals[t]
		}
		if math.Abs(prevSSE-newSSE) < cssTolerance {
			break
		}
	}

	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := 0; t < n; t++ {
		if t < start {
			m.fittedVals[t] = m.Intercept
			m.residuals[t] = y[t] - m.Intercept
			continue
		}
		m.fittedVals[t] = m.predictAt(y, m.residuals, t)
		m.residuals[t] = y[t] - m.fittedVals[t]
	}

	sse, count := 0.0, 0
	for t := start; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	if count > p+q+1 {
		m.Variance = sse / float64(count-p-q-1)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}
}

// scoreFit computes the Gaussian log-likelihood and information criteria.
func (m *Model) scoreFit() {
	n := len(m.residuals)
	k := m.Order.P + m.Order.Q + 1

	if m.Order.P == 0 && m.Order.Q == 0 {
		m.Variance = variance(m.residuals)
	}

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	if m.Variance > 0 {
		nf := float64(n)
		m.LogLik = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(m.Variance) - sse/(2*m.Variance)
	} else {
		m.LogLik = math.Inf(-1)
	}

	m.AIC = -2*m.LogLik + 2*float64(k)
	m.BIC = -2*m.LogLik + float64(k)*math.Log(float64(n))
}

// Forecast produces point forecasts on the original scale for the given
// number of steps ahead.
func (m *Model) Forecast(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("model must be fitted before forecasting")
	}
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	y := m.diffed
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		extY[t] = m.predictAt(extY, extResiduals, t)
		extResiduals[t] = 0 // expected future residual
	}

	forecasts := extY[n:]
	if m.Order.D > 0 {
		forecasts = m.integrate(forecasts)
	}
	return forecasts, nil
}

// integrate undoes differencing to bring forecasts back to the original
// scale.
func (m *Model) integrate(forecasts []float64) []float64 {
	result := append([]float64(nil), forecasts...)
	for i := 0; i < m.Order.D; i++ {
		last := m.original[len(m.original)-1-i]
		for j := range result {
			if j == 0 {
				result[j] += last
			} else {
				result[j] += result[j-1]
			}
		}
	}
	return result
}

// Residuals returns a copy of the fit residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals...)
}

// FittedValues returns a copy of the fitted values on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.fittedVals...)
}

// FittedOriginal returns one-step-ahead predictions aligned with the
// original series: actual value minus the corresponding differenced-scale
// residual. The first d values have no prediction and repeat the actuals.
func (m *Model) FittedOriginal() []float64 {
	if !m.fitted {
		return nil
	}

	d := m.Order.D
	out := make([]float64, len(m.original))
	copy(out, m.original[:min(d, len(out))])
	for t := d; t < len(m.original); t++ {
		out[t] = m.original[t] - m.residuals[t-d]
	}
	return out
}

// ACF computes the autocorrelation function up to maxLag, acf[0] == 1.
func ACF(series []float64, maxLag int) []float64 {
	n := len(series)
	if n == 0 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mu := mean(series)
	denom := 0.0
	for _, v := range series {
		denom += (v - mu) * (v - mu)
	}

	acf := make([]float64, maxLag+1)
	acf[0] = 1
	if denom == 0 {
		return acf
	}
	for lag := 1; lag <= maxLag; lag++ {
		num := 0.0
		for t := lag; t < n; t++ {
			num += (series[t] - mu) * (series[t-lag] - mu)
		}
		acf[lag] = num / denom
	}
	return acf
}

// levinsonDurbin solves the Yule-Walker equations for AR coefficients.
func levinsonDurbin(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}
	return phi
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mu := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - mu) * (v - mu)
	}
	return sum / float64(len(values)-1)
}

func clampUnit(v float64) float64 {
	return math.Max(-0.99, math.Min(0.99, v))
}
