package core

import "strings"

// categoryIcons maps normalized (lower-cased, trimmed) category names to a
// display symbol. Lookups go through CategoryIcon so capitalization variants
// all resolve to the same entry.
var categoryIcons = map[string]string{
	"food":          "🍔",
	"groceries":     "🛒",
	"fuel":          "⛽",
	"petrol":        "⛽",
	"diesel":        "⛽",
	"movie":         "🎬",
	"entertainment": "🎮",
	"shopping":      "🛍️",
	"travel":        "✈️",
	"rent":          "🏠",
	"emi":           "🏦",
	"loan":          "💳",
	"recharge":      "📱",
	"electricity":   "⚡",
	"waterbill":     "🚰",
	"internet":      "📶",
	"medical":       "🩺",
	"hospital":      "🏥",
	"education":     "📚",
	"workexpenses":  "💼",
	"office":        "🏢",
	"salary":        "💰",
	"investment":    "📈",
	"savings":       "💎",
	"gift":          "🎁",
	"insurance":     "🛡️",
	"taxi":          "🚕",
	"bike":          "🏍️",
	"car":           "🚗",
	"restaurant":    "🍽️",
	"coffee":        "☕",
	"snacks":        "🍟",
	"clothes":       "👕",
	"electronics":   "💻",
	"repair":        "🔧",
	"beauty":        "💄",
	"gym":           "🏋️",
	"subscription":  "📺",
	"donation":      "🤝",
}

// fallbackIcon is returned for unknown or blank categories.
const fallbackIcon = "🧾"

// CategoryIcon returns the display symbol for a category name. The lookup
// is case-insensitive and ignores surrounding whitespace.
func CategoryIcon(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if icon, ok := categoryIcons[key]; ok {
		return icon
	}
	return fallbackIcon
}
