// Package analysis provides the deterministic keyword categorizer used when
// the language model is unavailable. It counts English and Kinyarwanda
// keyword hits per category; the category with the most hits wins.
package analysis

import (
	"math"
	"regexp"
	"strings"

	"igire/backend/internal/config"
	"igire/backend/internal/models"
)

// Keywords per category. Kinyarwanda stems are matched as word prefixes so
// that inflected forms still count.
var Keywords = map[models.Category][]string{
	models.CategoryWater: {
		"water", "tap", "pipe", "borehole", "leak", "flood",
		"amazi", "robine", "ntaboneka", "umugezi", "isoko ry",
	},
	models.CategorySanitation: {
		"sanitation", "garbage", "waste", "trash", "toilet", "sewage", "drain",
		"umwanda", "imyanda", "ubwiherero", "isuku", "ibishingwe",
	},
	models.CategoryRoads: {
		"road", "pothole", "bridge", "street", "traffic", "pavement",
		"umuhanda", "imihanda", "ikiraro", "icyobo", "kaburimbo",
	},
	models.CategoryElectricity: {
		"electricity", "power", "blackout", "outage", "transformer", "meter",
		"amashanyarazi", "umuriro", "cashpower", "insinga",
	},
}

// order breaks ties between categories with equal hit counts.
var order = []models.Category{
	models.CategoryWater,
	models.CategorySanitation,
	models.CategoryRoads,
	models.CategoryElectricity,
}

var patterns = compile(Keywords)

func compile(words map[models.Category][]string) map[models.Category]*regexp.Regexp {
	out := make(map[models.Category]*regexp.Regexp, len(words))
	for cat, list := range words {
		quoted := make([]string, len(list))
		for i, w := range list {
			quoted[i] = regexp.QuoteMeta(w)
		}
		out[cat] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
	}
	return out
}

// Result is the outcome of a keyword classification.
type Result struct {
	Category   models.Category
	Confidence int
	Hits       int
}

// CountHits returns how many keyword occurrences of cat appear in text.
func CountHits(cat models.Category, text string) int {
	re, ok := patterns[cat]
	if !ok {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// Classify picks the category with the most keyword hits.
func Classify(text string) Result {
	best := Result{Category: models.CategoryOther}
	for _, cat := range order {
		if hits := CountHits(cat, text); hits > best.Hits {
			best = Result{Category: cat, Hits: hits}
		}
	}
	best.Confidence = Confidence(best.Hits)
	return best
}

// Confidence maps a hit count to min(98, round(hits/3*100)), or 70 without hits.
func Confidence(hits int) int {
	if hits <= 0 {
		return config.KeywordDefaultConfidence
	}
	c := int(math.Round(float64(hits) / config.KeywordHitsForFullConfidence * 100))
	if c > config.KeywordMaxConfidence {
		return config.KeywordMaxConfidence
	}
	return c
}
