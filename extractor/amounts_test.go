package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAmountLocales(t *testing.T) {
	for _, raw := range []string{"1 234,56", "1.234,56", "1234.56"} {
		v := NormalizeAmount(raw)
		if assert.NotNil(t, v, raw) {
			assert.Equal(t, 1234.56, *v, raw)
		}
	}
}

func TestNormalizeAmountCommaDecimal(t *testing.T) {
	v := NormalizeAmount("50,00")
	if assert.NotNil(t, v) {
		assert.Equal(t, 50.00, *v)
	}
}

func TestNormalizeAmountNonBreakingSpaces(t *testing.T) {
	v := NormalizeAmount("12 500,00 €")
	if assert.NotNil(t, v) {
		assert.Equal(t, 12500.00, *v)
	}
}

func TestNormalizeAmountRejectsLongIDs(t *testing.T) {
	assert.Nil(t, NormalizeAmount("12345678901"))
	assert.Nil(t, NormalizeAmount("84432109800021"))
}

func TestNormalizeAmountRejectsIBANShapes(t *testing.T) {
	assert.Nil(t, NormalizeAmount("FR76 3000 4000 0312 3456 7890 143"))
	assert.Nil(t, NormalizeAmount("3000 4000 0312 3456"))
}

func TestNormalizeAmountRejectsImplausibleRange(t *testing.T) {
	assert.Nil(t, NormalizeAmount("2500000.00"))
	assert.Nil(t, NormalizeAmount("9999999"))
}

func TestRescaleSuspect(t *testing.T) {
	assert.Equal(t, 6240.00, RescaleSuspect(624000, 5200))
	// Below the threshold: untouched.
	assert.Equal(t, 95000.00, RescaleSuspect(95000, 5200))
	// Does not end in 000: untouched.
	assert.Equal(t, 624500.00, RescaleSuspect(624500, 5200))
	// Scaled value nowhere near the reference: untouched.
	assert.Equal(t, 624000.00, RescaleSuspect(624000, 12))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1200.00, Round2(1000.004+199.996))
	assert.Equal(t, 0.35, Round2(0.345))
}
