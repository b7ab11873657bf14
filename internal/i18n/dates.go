package i18n

import (
	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

var dateLocales = map[string]monday.Locale{
	"en": monday.LocaleEnUS,
	"de": monday.LocaleDeDE,
	"fr": monday.LocaleFrFR,
}

// DateLocale returns the locale used to name weekdays and months for tag.
// Unsupported languages get US English.
func DateLocale(tag language.Tag) monday.Locale {
	base, _ := tag.Base()
	if l, ok := dateLocales[base.String()]; ok {
		return l
	}
	return monday.LocaleEnUS
}

var monthFirstRegions = map[string]bool{"US": true, "PH": true, "CA": true}

// DayFirst reports whether all-numeric dates put the day before the month.
// English is month-first unless an explicit region says otherwise.
func DayFirst(tag language.Tag) bool {
	base, _ := tag.Base()
	if base.String() != "en" {
		return true
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return false
	}
	return !monthFirstRegions[region.String()]
}
