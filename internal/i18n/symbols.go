package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jwulff/glucose-go/internal/numfmt"
)

// deriveSymbols derives the decimal, grouping and percent symbols of tag from
// CLDR data by rendering known values. Locales whose digits are not ASCII
// keep the default symbols.
func deriveSymbols(tag language.Tag) numfmt.Symbols {
	p := message.NewPrinter(tag)
	symbols := numfmt.DefaultSymbols

	// 1234.5 renders as 1<group>234<decimal>5.
	s := p.Sprintf("%v", number.Decimal(1234.5))
	if rest, ok := strings.CutPrefix(s, "1"); ok {
		if idx := strings.Index(rest, "234"); idx > 0 {
			tail := rest[idx+3:]
			if dec, ok := strings.CutSuffix(tail, "5"); ok && dec != "" {
				symbols.Group = rest[:idx]
				symbols.Decimal = dec
			}
		}
	}

	pct := p.Sprintf("%v", number.Percent(0.5))
	if suffix, ok := strings.CutPrefix(pct, "50"); ok && suffix != "" {
		symbols.PercentSuffix = suffix
	}

	return symbols
}
