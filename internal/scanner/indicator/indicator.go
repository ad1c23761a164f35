// Package indicator provides the pure technical computations the scan
// pipeline depends on. All functions are deterministic and allocate only
// their return values.
package indicator

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when a series is shorter than an
// indicator's warm-up window. Callers treat it as a filter failure for
// the symbol, never as a fatal scan error.
var ErrInsufficientData = errors.New("insufficient data")

const (
	// DefaultRSIPeriod is the classic 14-sample RSI window.
	DefaultRSIPeriod = 14
	// DefaultVolatilityWindow is the trailing window for annualized
	// volatility.
	DefaultVolatilityWindow = 20
	// TradingDaysPerYear scales daily volatility to annual.
	TradingDaysPerYear = 252
	// surgeWindow is the recent-volume window of the surge ratio.
	surgeWindow = 5
)

// RSI computes the relative strength index over rolling means of gains
// and losses. The result is position-aligned with closes; entries before
// `period` samples exist are NaN. A zero rolling mean loss yields 100.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}

		meanGain := gainSum / float64(period)
		meanLoss := lossSum / float64(period)
		if meanLoss == 0 {
			out[i] = 100
			continue
		}
		rs := meanGain / meanLoss
		out[i] = 100 - 100/(1+rs)
	}

	return out
}

// SMA computes the trailing simple moving average. Entries before
// `window` samples exist are NaN.
func SMA(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(closes) < window {
		return out
	}

	var sum float64
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}

	return out
}

// Momentum is the fractional return over the trailing lookback:
// closes[n-1]/closes[n-1-lookback] - 1. It requires lookback+1 samples.
func Momentum(closes []float64, lookback int) (float64, error) {
	if lookback <= 0 {
		return 0, errors.New("lookback must be positive")
	}
	if len(closes) < lookback+1 {
		return 0, ErrInsufficientData
	}
	base := closes[len(closes)-1-lookback]
	if base == 0 {
		return 0, ErrInsufficientData
	}
	return closes[len(closes)-1]/base - 1, nil
}

// AnnualizedVolatility is the sample standard deviation of log returns
// over the trailing window, scaled by sqrt(252). A window <= 0 uses the
// whole series. At least two returns are required.
func AnnualizedVolatility(closes []float64, window int) (float64, error) {
	if len(closes) < 2 {
		return 0, ErrInsufficientData
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, ErrInsufficientData
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	if window > 0 {
		if len(returns) < window {
			return 0, ErrInsufficientData
		}
		returns = returns[len(returns)-window:]
	}
	if len(returns) < 2 {
		return 0, ErrInsufficientData
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear), nil
}

// VolumeSurge is the mean of the last five volumes divided by the mean
// of the full window. It returns 0 when the denominator is zero or the
// series is shorter than the recent window, so a missing ratio always
// fails the surge condition instead of crashing the scan.
func VolumeSurge(volumes []int64) float64 {
	if len(volumes) < surgeWindow {
		return 0
	}

	var total float64
	for _, v := range volumes {
		total += float64(v)
	}
	fullMean := total / float64(len(volumes))
	if fullMean == 0 {
		return 0
	}

	var recent float64
	for _, v := range volumes[len(volumes)-surgeWindow:] {
		recent += float64(v)
	}
	recentMean := recent / surgeWindow

	return recentMean / fullMean
}

// MeanVolume is the arithmetic mean of a volume series; 0 for an empty
// series.
func MeanVolume(volumes []int64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	var total float64
	for _, v := range volumes {
		total += float64(v)
	}
	return total / float64(len(volumes))
}
