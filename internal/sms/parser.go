// Package sms handles the text-message channel: parsing inbound complaints
// written as "IGIRE <CATEGORY> <LOCATION> <DESCRIPTION>" and sending replies
// through the Africa's Talking gateway.
package sms

import (
	"errors"
	"strings"

	"igire/backend/internal/models"
)

// Keyword opens every complaint message.
const Keyword = "IGIRE"

var (
	ErrNotComplaint    = errors.New("message does not start with IGIRE")
	ErrBadFormat       = errors.New("expected IGIRE <CATEGORY> <LOCATION> <DESCRIPTION>")
	ErrUnknownCategory = errors.New("unknown category")
)

// categoryAliases maps accepted category words (English and Kinyarwanda) to categories.
var categoryAliases = map[string]models.Category{
	"water":         models.CategoryWater,
	"amazi":         models.CategoryWater,
	"sanitation":    models.CategorySanitation,
	"isuku":         models.CategorySanitation,
	"roads":         models.CategoryRoads,
	"road":          models.CategoryRoads,
	"umuhanda":      models.CategoryRoads,
	"imihanda":      models.CategoryRoads,
	"electricity":   models.CategoryElectricity,
	"umuriro":       models.CategoryElectricity,
	"amashanyarazi": models.CategoryElectricity,
	"other":         models.CategoryOther,
	"ibindi":        models.CategoryOther,
}

// Message is a parsed SMS complaint.
type Message struct {
	Category    models.Category
	Location    string
	Description string
}

// Parse reads an inbound SMS body.
func Parse(text string) (*Message, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.EqualFold(fields[0], Keyword) {
		return nil, ErrNotComplaint
	}
	if len(fields) < 4 {
		return nil, ErrBadFormat
	}

	cat, ok := categoryAliases[strings.ToLower(fields[1])]
	if !ok {
		return nil, ErrUnknownCategory
	}

	return &Message{
		Category:    cat,
		Location:    fields[2],
		Description: strings.Join(fields[3:], " "),
	}, nil
}
