package spam

import "regexp"

// Pattern is a named spam-indicative expression. Hits are counted per
// pattern, so several matches of one pattern still count once.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// DefaultPatterns covers the usual contact-form spam families.
var DefaultPatterns = []Pattern{
	{
		Name: "pharma",
		Expr: regexp.MustCompile(`(?i)\b(viagra|cialis|levitra|xanax|tramadol|phentermine|online\s+pharmacy|cheap\s+(meds|pills)|weight\s+loss\s+pills?)\b`),
	},
	{
		Name: "gambling",
		Expr: regexp.MustCompile(`(?i)\b(casinos?|online\s+poker|sports?\s+betting|slot\s+machines?|jackpots?|free\s+spins)\b`),
	},
	{
		Name: "get_rich_quick",
		Expr: regexp.MustCompile(`(?i)(\bget\s+rich\s+quick\b|\bpassive\s+income\b|\bfinancial\s+freedom\b|\bwork\s+from\s+home\s+and\s+earn\b|\bmake\s+\$?\d[\d,]*k?\s+(a|per)\s+(day|week|month)\b|\bbe\s+your\s+own\s+boss\b)`),
	},
	{
		Name: "crypto_investment",
		Expr: regexp.MustCompile(`(?i)(\b(bitcoin|crypto|forex)\s+(investment|trading\s+platform|opportunity)\b|\bdouble\s+your\s+(bitcoin|crypto|money|investment)\b|\bguaranteed\s+(returns?|profits?)\b)`),
	},
	{
		Name: "seo",
		Expr: regexp.MustCompile(`(?i)(\bseo\s+services?\b|\bbacklinks?\b|\brank\s+(#?1|first)\s+on\s+google\b|\bincrease\s+your\s+(website\s+)?(traffic|ranking)\b)`),
	},
	{
		Name: "prize",
		Expr: regexp.MustCompile(`(?i)(\byou\s+(have\s+)?won\b|\bclaim\s+your\s+(prize|reward)\b|\bcongratulations\b.{0,30}\bwinner\b)`),
	},
	{
		Name: "urgency",
		Expr: regexp.MustCompile(`(?i)(\bact\s+now\b|\blimited\s+time\s+offer\b|\bclick\s+here\s+now\b|100%\s+free\b|\brisk[-\s]free\b)`),
	},
}
