package model

import (
	"fmt"
	"strings"
)

type Size string

const (
	SizeBig    Size = "big"
	SizeMedium Size = "medium"
)

type ExclusionRule string

const (
	RuleNone           ExclusionRule = "none"
	RuleWithoutMeat    ExclusionRule = "without-meat"
	RuleWithoutSalad   ExclusionRule = "without-salad"
	RuleWithoutGarnish ExclusionRule = "without-garnish"
	RuleOnlyMeat       ExclusionRule = "only-meat"
	RuleOnlySalad      ExclusionRule = "only-salad"
	RuleOnlyGarnish    ExclusionRule = "only-garnish"
)

// Variant is the size and dish selection an order token stands for.
type Variant struct {
	Size Size
	Rule ExclusionRule
}

var ruleMenus = map[ExclusionRule]func(Menu) Menu{
	RuleNone:           func(m Menu) Menu { return m },
	RuleWithoutMeat:    Menu.WithoutMeat,
	RuleWithoutSalad:   Menu.WithoutSalad,
	RuleWithoutGarnish: Menu.WithoutGarnish,
	RuleOnlyMeat:       Menu.OnlyMeat,
	RuleOnlySalad:      Menu.OnlySalad,
	RuleOnlyGarnish:    Menu.OnlyGarnish,
}

// Rules lists every exclusion rule in table order.
var Rules = []ExclusionRule{
	RuleNone,
	RuleWithoutMeat,
	RuleWithoutSalad,
	RuleWithoutGarnish,
	RuleOnlyMeat,
	RuleOnlySalad,
	RuleOnlyGarnish,
}

// Apply returns the menu variant selected by the rule.
func (r ExclusionRule) Apply(m Menu) Menu {
	return ruleMenus[r](m)
}

// VariantTokens maps every accepted order token to its variant. The sheets
// are filled in Russian; the English labels are accepted as well.
var VariantTokens = []struct {
	Token   string
	Variant Variant
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

	{"Большая", Variant{SizeBig, RuleNone}},
	{"Большая без мяса", Variant{SizeBig, RuleWithoutMeat}},
	{"Большая без салата", Variant{SizeBig, RuleWithoutSalad}},
	{"Большая без гарнира", Variant{SizeBig, RuleWithoutGarnish}},
	{"Средняя", Variant{SizeMedium, RuleNone}},
	{"Средняя без мяса", Variant{SizeMedium, RuleWithoutMeat}},
	{"Средняя без салата", Variant{SizeMedium, RuleWithoutSalad}},
	{"Средняя без гарнира", Variant{SizeMedium, RuleWithoutGarnish}},
	{"Только мясо", Variant{SizeMedium, RuleOnlyMeat}},
	{"Только салат", Variant{SizeMedium, RuleOnlySalad}},
	{"Только гарнир", Variant{SizeMedium, RuleOnlyGarnish}},
}

var variantByToken = func() map[string]Variant {
	m := make(map[string]Variant, len(VariantTokens))
	for _, vt := range VariantTokens {
		m[NormalizeToken(vt.Token)] = vt.Variant
	}
	return m
}()

// NormalizeToken lower-cases the token and collapses inner whitespace.
func NormalizeToken(token string) string {
	return strings.ToLower(strings.Join(strings.Fields(token), " "))
}

func LookupVariant(token string) (Variant, error) {
	v, ok := variantByToken[NormalizeToken(token)]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrInvalidVariant, token)
	}
	return v, nil
}
