package i18n

// Pluralize returns singular when count is exactly one, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// PluralizeLocalized selects between two message keys by count and renders
// the chosen key with count as its only argument.
func PluralizeLocalized(loc Localizer, count int, singularKey, pluralKey string) string {
	return loc.Sprintf(Pluralize(count, singularKey, pluralKey), count)
}
