// Package relevance scores how strongly a piece of news text relates to a
// target asset using an ordered table of matching tiers.
package relevance

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/seenimoa/fincurator/pkg/models"
	"github.com/seenimoa/fincurator/pkg/utils"
)

// Tier names, highest first.
const (
	TierSymbol    = "symbol"
	TierCompany   = "company"
	TierFinancial = "financial"
	TierSector    = "sector"
	TierGeneric   = "generic"
)

// Tier scores.
const (
	ScoreSymbol    = 0.9
	ScoreCompany   = 0.8
	ScoreFinancial = 0.6
	ScoreSector    = 0.4
	ScoreGeneric   = 0.3
)

// FinancialKeywords mark market-related news regardless of the target.
var FinancialKeywords = []string{
	"stock", "market", "price", "trading", "shares", "earnings",
	"revenue", "profit", "loss", "investment", "dividend", "IPO", "SEC",
	"Fed", "FOMC", "Federal Reserve", "interest rate", "rate hike", "rate cut",
}

// DefaultSectorKeywords is used when the target carries no sector keywords.
var DefaultSectorKeywords = []string{
	"technology", "tech", "software", "digital", "AI", "artificial intelligence",
	"bank", "financial", "credit", "loan", "payment",
}

// DefaultGenericKeywords is used when the target carries no generic keywords.
var DefaultGenericKeywords = []string{
	"economy", "economic", "business", "corporate", "industry", "inflation",
}

// Tier is one row of the relevance table. Match reports whether the text
// qualifies for this tier.
type Tier struct {
	Name  string
	Score float64
	Match func(text string) bool
}

// Table is evaluated top-down; the first matching tier gives the score.
// Tiers are kept in descending score order so the first match is the highest.
type Table struct {
	tiers []Tier
}

// NewTable builds the tier table for a target.
func NewTable(meta models.TargetMetadata) *Table {
	sector := meta.SectorKeywords
	if len(sector) == 0 {
		sector = DefaultSectorKeywords
	}
	generic := meta.GenericKeywords
	if len(generic) == 0 {
		generic = DefaultGenericKeywords
	}

	names := make([]string, 0, len(meta.Aliases)+1)
	if meta.CompanyName != "" {
		names = append(names, meta.CompanyName)
	}
	names = append(names, meta.Aliases...)

	return NewTableFromTiers(
		Tier{Name: TierSymbol, Score: ScoreSymbol, Match: symbolMatcher(meta.Symbol)},
		Tier{Name: TierCompany, Score: ScoreCompany, Match: phraseMatcher(names, false)},
		Tier{Name: TierFinancial, Score: ScoreFinancial, Match: keywordMatcher(FinancialKeywords)},
		Tier{Name: TierSector, Score: ScoreSector, Match: keywordMatcher(sector)},
		Tier{Name: TierGeneric, Score: ScoreGeneric, Match: keywordMatcher(generic)},
	)
}

// NewTableFromTiers builds a table from arbitrary tiers.
func NewTableFromTiers(tiers ...Tier) *Table {
	sorted := append([]Tier(nil), tiers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return &Table{tiers: sorted}
}

// Tiers returns the table rows in evaluation order.
func (t *Table) Tiers() []Tier {
	return append([]Tier(nil), t.tiers...)
}

// Score returns the score and name of the highest tier text matches.
// ok is false when no tier matches and the text should be excluded.
func (t *Table) Score(text string) (score float64, tier string, ok bool) {
	for _, tr := range t.tiers {
		if tr.Match != nil && tr.Match(text) {
			return tr.Score, tr.Name, true
		}
	}
	return 0, "", false
}

const (
	leftBoundary  = `(?:^|[^\p{L}\p{N}])`
	rightBoundary = `(?:[^\p{L}\p{N}]|$)`
)

func never(string) bool { return false }

// symbolMatcher matches the ticker case-sensitively on word boundaries,
// optionally as a $cashtag. Exchange and quote-currency suffixes are ignored.
func symbolMatcher(symbol string) func(string) bool {
	symbol = utils.NormalizeSymbol(symbol)
	if symbol == "" {
		return never
	}
	alts := []string{regexp.QuoteMeta(utils.BaseSymbol(symbol))}
	if base := utils.BaseSymbol(symbol); base != symbol {
		alts = append(alts, regexp.QuoteMeta(symbol))
	}
	re := regexp.MustCompile(leftBoundary + `\$?(?:` + strings.Join(alts, "|") + `)` + rightBoundary)
	return re.MatchString
}

// phraseMatcher matches any of the phrases on word boundaries.
func phraseMatcher(phrases []string, plural bool) func(string) bool {
	re := compileAlternation(phrases, true, plural)
	if re == nil {
		return never
	}
	return re.MatchString
}

// keywordMatcher matches keywords on word boundaries, allowing a plural
// suffix. Keywords containing an upper-case letter (acronyms such as "SEC")
// match case-sensitively; the rest ignore case.
func keywordMatcher(keywords []string) func(string) bool {
	var folded, exact []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if hasUpper(kw) {
			exact = append(exact, kw)
		} else {
			folded = append(folded, kw)
		}
	}
	reFolded := compileAlternation(folded, true, true)
	reExact := compileAlternation(exact, false, true)
	if reFolded == nil && reExact == nil {
		return never
	}
	return func(text string) bool {
		return (reFolded != nil && reFolded.MatchString(text)) ||
			(reExact != nil && reExact.MatchString(text))
	}
}

func compileAlternation(terms []string, foldCase, plural bool) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(term))
	}
	if len(quoted) == 0 {
		return nil
	}
	// Longest first so overlapping alternatives prefer the fuller phrase.
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

	expr := leftBoundary + `(?:` + strings.Join(quoted, "|") + `)`
	if plural {
		expr += `(?:e?s)?`
	}
	expr += rightBoundary
	if foldCase {
		expr = `(?i)` + expr
	}
	return regexp.MustCompile(expr)
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
