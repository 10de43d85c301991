package credentials

import (
	"math/bits"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrength(t *testing.T) {
	cases := map[string]string{
		"":             StrengthWeak,
		"abc":          StrengthWeak,
		"abcdefgh":     StrengthWeak,
		"Abcdefgh":     StrengthMedium,
		"Abcdefg1":     StrengthMedium,
		"Ab1!":         StrengthMedium,
		"Abcdef1!":     StrengthStrong,
		"Ünïcødé1!xyz": StrengthStrong,
		"        ":     StrengthWeak,
	}
	for pw, want := range cases {
		assert.Equal(t, want, Strength(pw), "password %q", pw)
	}
}

func TestScoreCountsEachRuleOnce(t *testing.T) {
	assert.Equal(t, 0, Score(""))
	assert.Equal(t, 1, Score("aaaa"))
	assert.Equal(t, 2, Score("aaaaaaaaaaaa"))
	assert.Equal(t, 5, Score("Aa1!Aa1!"))
}

const (
	ruleUpper = 1 << iota
	ruleLower
	ruleDigit
	ruleSpecial
	ruleLength
	ruleCount = 5
)

// passwordFor builds a password satisfying exactly the rules in mask. Spaces
// pad the length without matching any character class.
func passwordFor(mask int) string {
	var b strings.Builder
	for _, rule := range []struct {
		bit int
		ch  string
	}{{ruleUpper, "A"}, {ruleLower, "a"}, {ruleDigit, "1"}, {ruleSpecial, "!"}} {
		if mask&rule.bit != 0 {
			b.WriteString(rule.ch)
		}
	}
	pw := b.String()
	if mask&ruleLength != 0 {
		pw += strings.Repeat(" ", minStrongLength-len(pw))
	}
	return pw
}

func TestStrengthNeverDropsWhenRulesAreAdded(t *testing.T) {
	rank := map[string]int{StrengthWeak: 0, StrengthMedium: 1, StrengthStrong: 2}
	for sub := 0; sub < 1<<ruleCount; sub++ {
		assert.Equal(t, bits.OnesCount(uint(sub)), Score(passwordFor(sub)), "mask %05b", sub)
		for super := 0; super < 1<<ruleCount; super++ {
			if sub&super != sub {
				continue
			}
			weaker, stronger := passwordFor(sub), passwordFor(super)
			assert.GreaterOrEqual(t, rank[Strength(stronger)], rank[Strength(weaker)],
				"%q (%05b) ranked below %q (%05b)", stronger, super, weaker, sub)
		}
	}
}
