package utils

import (
	"fmt"
	"strings"

	"github.com/seenimoa/fincurator/pkg/models"
)

// exchangeSuffix maps an exchange to the Yahoo Finance symbol suffix.
var exchangeSuffix = map[models.Exchange]string{
	models.ExchangeNYSE:   "",
	models.ExchangeNASDAQ: "",
	models.ExchangePSX:    ".KHI",
	models.ExchangeCrypto: "",
}

// companyNames maps a base symbol to its company name followed by aliases
// (products, executives) that identify the company in headlines.
var companyNames = map[string][]string{
	"AAPL":  {"Apple", "iPhone", "iPad", "MacBook", "Tim Cook"},
	"GOOGL": {"Alphabet", "Google", "Android", "YouTube"},
	"GOOG":  {"Alphabet", "Google", "Android", "YouTube"},
	"MSFT":  {"Microsoft", "Windows", "Azure", "Satya Nadella"},
	"AMZN":  {"Amazon", "AWS", "Jeff Bezos", "Andy Jassy"},
	"TSLA":  {"Tesla", "Elon Musk", "Cybertruck"},
	"META":  {"Meta Platforms", "Facebook", "Instagram", "WhatsApp"},
	"NFLX":  {"Netflix"},
	"NVDA":  {"Nvidia", "Jensen Huang", "GeForce"},
	"BTC":   {"Bitcoin"},
	"ETH":   {"Ethereum", "Ether"},
	"SOL":   {"Solana"},
	"HBL":   {"Habib Bank"},
	"OGDC":  {"Oil and Gas Development Company", "OGDCL"},
	"ENGRO": {"Engro Corporation", "Engro"},
}

// NormalizeSymbol upper-cases the symbol and strips whitespace and a leading $.
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	return strings.TrimPrefix(symbol, "$")
}

// ValidSymbol reports whether symbol is non-empty and made only of A-Z, 0-9, '.' and '-'.
func ValidSymbol(symbol string) bool {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return false
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}

// ParseExchange resolves a case-insensitive exchange name.
func ParseExchange(name string) (models.Exchange, error) {
	ex := models.Exchange(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := exchangeSuffix[ex]; !ok {
		return "", fmt.Errorf("unsupported exchange %q (want one of %v)", name, models.Exchanges)
	}
	return ex, nil
}

// ToYahooSymbol converts a symbol to Yahoo Finance format for the exchange.
// Crypto symbols without a quote currency are priced in USD.
func ToYahooSymbol(symbol string, exchange models.Exchange) string {
	symbol = NormalizeSymbol(symbol)
	if exchange == models.ExchangeCrypto {
		if !strings.Contains(symbol, "-") {
			return symbol + "-USD"
		}
		return symbol
	}
	suffix := exchangeSuffix[exchange]
	if suffix == "" || strings.HasSuffix(symbol, suffix) {
		return symbol
	}
	return symbol + suffix
}

// BaseSymbol strips exchange suffixes and crypto quote currencies, giving the
// symbol as it appears in news text ("BTC-USD" → "BTC", "HBL.KHI" → "HBL").
func BaseSymbol(symbol string) string {
	symbol = NormalizeSymbol(symbol)
	if i := strings.IndexAny(symbol, ".-"); i > 0 {
		symbol = symbol[:i]
	}
	return symbol
}

// CompanyFor returns the known company name and aliases for a symbol.
// Unknown symbols return an empty name and no aliases.
func CompanyFor(symbol string) (name string, aliases []string) {
	names, ok := companyNames[BaseSymbol(symbol)]
	if !ok || len(names) == 0 {
		return "", nil
	}
	return names[0], append([]string(nil), names[1:]...)
}
