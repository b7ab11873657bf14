package i18n

import (
	"testing"
	"time"

	"github.com/goodsign/monday"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestDateLocale(t *testing.T) {
	day := time.Date(2026, time.January, 22, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		tag      string
		expected string
	}{
		{"en", "22 January 2026"},
		{"de-AT", "22 Januar 2026"},
		{"fr", "22 janvier 2026"},
		{"ja", "22 January 2026"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			locale := DateLocale(language.MustParse(tt.tag))
			assert.Equal(t, tt.expected, monday.Format(day, "2 January 2006", locale))
		})
	}
}

func TestDayFirst(t *testing.T) {
	assert.False(t, DayFirst(language.English))
	assert.False(t, DayFirst(language.AmericanEnglish))
	assert.True(t, DayFirst(language.BritishEnglish))
	assert.True(t, DayFirst(language.MustParse("en-AU")))
	assert.False(t, DayFirst(language.MustParse("en-CA")))
	assert.True(t, DayFirst(language.German))
	assert.True(t, DayFirst(language.French))
}
