package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupVariant(t *testing.T) {
	tests := []struct {
		token string
		want  Variant
	}{
		{"Big", Variant{SizeBig, RuleNone}},
		{"Big no meat", Variant{SizeBig, RuleWithoutMeat}},
		{"Big no salad", Variant{SizeBig, RuleWithoutSalad}},
		{"Big no garnish", Variant{SizeBig, RuleWithoutGarnish}},
		{"Medium", Variant{SizeMedium, RuleNone}},
		{"Medium no meat", Variant{SizeMedium, RuleWithoutMeat}},
		{"Medium no salad", Variant{SizeMedium, RuleWithoutSalad}},
		{"Medium no garnish", Variant{SizeMedium, RuleWithoutGarnish}},
		{"Only meat", Variant{SizeMedium, RuleOnlyMeat}},
		{"Only salad", Variant{SizeMedium, RuleOnlySalad}},
		{"Only garnish", Variant{SizeMedium, RuleOnlyGarnish}},
		{"Большая без салата", Variant{SizeBig, RuleWithoutSalad}},
		{"Средняя", Variant{SizeMedium, RuleNone}},
		{"Только гарнир", Variant{SizeMedium, RuleOnlyGarnish}},
		{"  big   NO meat ", Variant{SizeBig, RuleWithoutMeat}},
		{"СРЕДНЯЯ без мяса", Variant{SizeMedium, RuleWithoutMeat}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := LookupVariant(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupVariantUnknown(t *testing.T) {
	for _, token := range []string{"", "Huge", "Big no fish", "Only"} {
		_, err := LookupVariant(token)
		assert.ErrorIs(t, err, ErrInvalidVariant, "token %q", token)
	}
}

func TestEveryRuleHasAMenu(t *testing.T) {
	m := Menu{dishes: []Dish{{1, DishTypeMeat}}}
	for _, rule := range Rules {
		assert.NotPanics(t, func() { rule.Apply(m) }, "rule %s", rule)
	}
	for _, vt := range VariantTokens {
		assert.Contains(t, Rules, vt.Variant.Rule, "token %q", vt.Token)
	}
}
