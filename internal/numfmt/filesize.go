package numfmt

import "github.com/shopspring/decimal"

// fileSizeLabels are the binary magnitudes, smallest first.
var fileSizeLabels = [...]string{"bytes", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FileSize renders a byte count scaled by powers of 1024, e.g. "1.50 KB".
// A value of exactly 1024 stays in the smaller unit.
func (f *Formatter) FileSize(n uint64) string {
	value, label := scaleBinary(float64(n))
	d := decimal.NewFromFloat(value).RoundBank(int32(fileSizeRule.MaxFractionDigits))
	return f.render(d, fileSizeRule, false) + " " + label
}

// scaleBinary divides v by 1024 while it exceeds 1024. The scale stops at
// the largest label instead of running past the table.
func scaleBinary(v float64) (float64, string) {
	idx := 0
	for v > 1024 && idx < len(fileSizeLabels)-1 {
		v /= 1024
		idx++
	}
	return v, fileSizeLabels[idx]
}
