// Package insights derives advisory predictions from recent complaint clusters.
package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"igire/backend/internal/config"
	"igire/backend/internal/models"

	"go.uber.org/zap"
)

type Store interface {
	ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	CreatePrediction(ctx context.Context, p *models.Prediction) error
}

type Generator struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewGenerator(store Store, logger *zap.Logger) *Generator {
	return &Generator{store: store, logger: logger, now: time.Now}
}

type clusterKey struct {
	category models.Category
	district string
}

type cluster struct {
	clusterKey
	complaints []models.Complaint
}

// Probability scores a cluster of n complaints.
func Probability(n int) int {
	p := 40 + 10*n
	if p > config.InsightMaxProbScore {
		return config.InsightMaxProbScore
	}
	return p
}

// Generate stores one prediction per (category, district) group that reached
// the minimum size inside the insight window. Earlier predictions are kept.
func (g *Generator) Generate(ctx context.Context) ([]models.Prediction, error) {
	recent, err := g.store.ListComplaints(ctx, models.ComplaintFilter{Since: g.now().Add(-config.InsightWindow)})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent complaints: %w", err)
	}

	groups := map[clusterKey]*cluster{}
	for _, c := range recent {
		if c.District == "" {
			continue
		}
		key := clusterKey{category: c.Category, district: c.District}
		if groups[key] == nil {
			groups[key] = &cluster{clusterKey: key}
		}
		groups[key].complaints = append(groups[key].complaints, c)
	}

	var hot []*cluster
	for _, cl := range groups {
		if len(cl.complaints) >= config.InsightMinCount {
			hot = append(hot, cl)
		}
	}
	sort.Slice(hot, func(i, j int) bool {
		if len(hot[i].complaints) != len(hot[j].complaints) {
			return len(hot[i].complaints) > len(hot[j].complaints)
		}
		if hot[i].category != hot[j].category {
			return hot[i].category < hot[j].category
		}
		return hot[i].district < hot[j].district
	})

	out := make([]models.Prediction, 0, len(hot))
	for _, cl := range hot {
		p := models.Prediction{
			Issue:       fmt.Sprintf("Recurring %s problems in %s (%d reports in %d days)", cl.category, cl.district, len(cl.complaints), int(config.InsightWindow.Hours()/24)),
			Category:    cl.category,
			District:    cl.district,
			Probability: Probability(len(cl.complaints)),
			Timeframe:   config.InsightTimeframe,
			Evidence:    evidence(cl.complaints),
		}
		if err := g.store.CreatePrediction(ctx, &p); err != nil {
			return out, fmt.Errorf("failed to store prediction: %w", err)
		}
		out = append(out, p)
	}

	g.logger.Info("predictions generated", zap.Int("complaints", len(recent)), zap.Int("predictions", len(out)))
	return out, nil
}

func evidence(cs []models.Complaint) []string {
	out := make([]string, 0, config.InsightMaxEvidence)
	for _, c := range cs {
		if len(out) == config.InsightMaxEvidence {
			break
		}
		if c.Description != "" {
			out = append(out, c.Description)
		}
	}
	return out
}
