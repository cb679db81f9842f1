package technical

// Series is an indicator series aligned index-for-index with its input.
// A nil entry means the value is undefined at that point.
type Series []*float64

// Defined returns the number of non-nil entries.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v != nil {
			n++
		}
	}
	return n
}

// SMA calculates the Simple Moving Average over a trailing window that
// includes the current point. Entries before the window fills are nil.
func SMA(data []float64, period int) Series {
	n := len(data)
	result := make(Series, n)
	if period <= 0 || n < period {
		return result
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	result[period-1] = ptr(sum / float64(period))

	for i := period; i < n; i++ {
		sum += data[i] - data[i-period]
		result[i] = ptr(sum / float64(period))
	}

	return result
}

// EMA calculates the Exponential Moving Average with k = 2/(period+1).
// The first value is seeded with the SMA of the first `period` points.
func EMA(data []float64, period int) Series {
	return emaCalc(toSeries(data), period)
}

// SMASeries is SMA over a nullable series. A point is defined only when the
// whole trailing window is defined.
func SMASeries(s Series, period int) Series {
	n := len(s)
	result := make(Series, n)
	if period <= 0 {
		return result
	}
	for i := period - 1; i < n; i++ {
		window, ok := defined(s[i-period+1 : i+1])
		if !ok {
			continue
		}
		result[i] = ptr(avg(window))
	}
	return result
}

// emaCalc runs an EMA over the contiguous defined tail of s, starting at its
// first defined point. Gaps after the seed stop the series.
func emaCalc(s Series, period int) Series {
	n := len(s)
	ema := make(Series, n)
	if n == 0 || period <= 0 {
		return ema
	}

	start := -1
	for i, v := range s {
		if v != nil {
			start = i
			break
		}
	}
	if start < 0 || n-start < period {
		return ema
	}

	seed, ok := defined(s[start : start+period])
	if !ok {
		return ema
	}
	k := 2.0 / float64(period+1)
	prev := avg(seed)
	ema[start+period-1] = ptr(prev)

	for i := start + period; i < n; i++ {
		if s[i] == nil {
			break
		}
		prev = *s[i]*k + prev*(1-k)
		ema[i] = ptr(prev)
	}

	return ema
}
