package technical

import (
	"math/rand"
	"testing"
	"time"

	"github.com/seenimoa/fincurator/pkg/models"
)

// benchQuotes creates synthetic daily quotes for benchmarks.
func benchQuotes(n int) []models.Quote {
	quotes := make([]models.Quote, n)
	rng := rand.New(rand.NewSource(42))
	price := 2500.0
	t := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range quotes {
		change := (rng.Float64() - 0.48) * 50 // slight upward bias
		open := price
		close := price + change
		high := open + rng.Float64()*30
		low := open - rng.Float64()*30
		if high < close {
			high = close + rng.Float64()*10
		}
		if low > close {
			low = close - rng.Float64()*10
		}

		quotes[i] = models.Quote{
			Date:   t,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: int64(rng.Intn(5_000_000) + 100_000),
		}
		price = close
		t = t.AddDate(0, 0, 1)
	}
	return quotes
}

func BenchmarkSMA20_200(b *testing.B) {
	data := extractCloses(benchQuotes(200))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SMA(data, 20)
	}
}

func BenchmarkEMA20_200(b *testing.B) {
	data := extractCloses(benchQuotes(200))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EMA(data, 20)
	}
}

func BenchmarkRSI14_500(b *testing.B) {
	data := extractCloses(benchQuotes(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RSI(data, 14)
	}
}

func BenchmarkMACD_500(b *testing.B) {
	data := extractCloses(benchQuotes(500))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MACD(data, 12, 26, 9)
	}
}

func BenchmarkStochastic_200(b *testing.B) {
	quotes := benchQuotes(200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Stochastic(quotes, 14, 3)
	}
}

func BenchmarkCompute_200(b *testing.B) {
	quotes := benchQuotes(200)
	p := DefaultParams()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Compute(quotes, p)
	}
}

func BenchmarkCompute_2000(b *testing.B) {
	quotes := benchQuotes(2000)
	p := DefaultParams()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Compute(quotes, p)
	}
}
