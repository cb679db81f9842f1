package utils

import (
	"testing"

	"github.com/seenimoa/fincurator/pkg/models"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"aapl", "AAPL"},
		{"  msft ", "MSFT"},
		{"$tsla", "TSLA"},
		{"btc-usd", "BTC-USD"},
	}
	for _, tt := range tests {
		if got := NormalizeSymbol(tt.input); got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"AAPL", true},
		{"BTC-USD", true},
		{"HBL.KHI", true},
		{"", false},
		{"   ", false},
		{"AA PL", false},
		{"AAPL;DROP", false},
	}
	for _, tt := range tests {
		if got := ValidSymbol(tt.input); got != tt.want {
			t.Errorf("ValidSymbol(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseExchange(t *testing.T) {
	ex, err := ParseExchange("nasdaq")
	if err != nil {
		t.Fatalf("ParseExchange(nasdaq) error: %v", err)
	}
	if ex != models.ExchangeNASDAQ {
		t.Errorf("ParseExchange(nasdaq) = %q, want NASDAQ", ex)
	}

	if _, err := ParseExchange("LSE"); err == nil {
		t.Error("ParseExchange(LSE) should fail")
	}
}

func TestToYahooSymbol(t *testing.T) {
	tests := []struct {
		symbol   string
		exchange models.Exchange
		want     string
	}{
		{"AAPL", models.ExchangeNASDAQ, "AAPL"},
		{"ibm", models.ExchangeNYSE, "IBM"},
		{"HBL", models.ExchangePSX, "HBL.KHI"},
		{"HBL.KHI", models.ExchangePSX, "HBL.KHI"},
		{"BTC", models.ExchangeCrypto, "BTC-USD"},
		{"ETH-EUR", models.ExchangeCrypto, "ETH-EUR"},
	}
	for _, tt := range tests {
		if got := ToYahooSymbol(tt.symbol, tt.exchange); got != tt.want {
			t.Errorf("ToYahooSymbol(%q, %s) = %q, want %q", tt.symbol, tt.exchange, got, tt.want)
		}
	}
}

func TestBaseSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"BTC-USD", "BTC"},
		{"HBL.KHI", "HBL"},
		{"aapl", "AAPL"},
		{"BRK.B", "BRK"},
	}
	for _, tt := range tests {
		if got := BaseSymbol(tt.input); got != tt.want {
			t.Errorf("BaseSymbol(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCompanyFor(t *testing.T) {
	name, aliases := CompanyFor("aapl")
	if name != "Apple" {
		t.Errorf("CompanyFor(aapl) name = %q, want Apple", name)
	}
	if len(aliases) == 0 {
		t.Error("CompanyFor(aapl) should return aliases")
	}

	name, aliases = CompanyFor("BTC-USD")
	if name != "Bitcoin" || len(aliases) != 0 {
		t.Errorf("CompanyFor(BTC-USD) = %q %v, want Bitcoin and no aliases", name, aliases)
	}

	name, _ = CompanyFor("ZZZZ")
	if name != "" {
		t.Errorf("CompanyFor(ZZZZ) = %q, want empty", name)
	}
}
