package routing

import (
	"context"
	"strings"

	"igire/backend/internal/config"
	"igire/backend/internal/models"
)

// Suggestion is the routing outcome. Institution is nil when nothing matched
// and Name is then config.NotFoundAgency.
type Suggestion struct {
	Name        string
	Institution *models.Institution
}

// Resolver picks an institution for a complaint.
type Resolver struct {
	cache *Cache
}

func NewResolver(cache *Cache) *Resolver {
	return &Resolver{cache: cache}
}

// Suggest tries an exact (case-insensitive) name match on name first, then a
// department match on category. Lookup failures degrade to "Not Found".
func (r *Resolver) Suggest(ctx context.Context, name string, category models.Category) Suggestion {
	institutions, err := r.cache.Institutions(ctx)
	if err != nil {
		return Suggestion{Name: config.NotFoundAgency}
	}

	if wanted := strings.TrimSpace(name); wanted != "" {
		for i := range institutions {
			if strings.EqualFold(institutions[i].Name, wanted) {
				return Suggestion{Name: institutions[i].Name, Institution: &institutions[i]}
			}
		}
	}

	for i := range institutions {
		if models.Category(strings.ToLower(institutions[i].Department)) == category {
			return Suggestion{Name: institutions[i].Name, Institution: &institutions[i]}
		}
	}

	return Suggestion{Name: config.NotFoundAgency}
}
