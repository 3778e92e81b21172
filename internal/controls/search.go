package controls

import (
	"context"
	"sort"
	"strings"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
)

// MaxSearchResults caps the ranked result set. Truncation, not sampling.
const MaxSearchResults = 10

// Searcher filters controllable instances by substring and ranks matches.
type Searcher struct {
	api  provider.InstanceAPI
	gate *Gate
}

// NewSearcher creates a fuzzy searcher.
func NewSearcher(api provider.InstanceAPI, gate *Gate) *Searcher {
	return &Searcher{api: api, gate: gate}
}

// matchRank orders matches: exact before prefix before any other substring.
func matchRank(term, id, name string) int {
	if term == id || (name != "" && term == name) {
		return 0
	}
	if strings.HasPrefix(id, term) || (name != "" && strings.HasPrefix(name, term)) {
		return 1
	}
	return 2
}

// Search returns up to MaxSearchResults controllable instances whose ID or
// name contains term, case-insensitively, best matches first. Ties break by
// name then ID.
func (s *Searcher) Search(ctx context.Context, term string) ([]*model.Instance, error) {
	instances, err := s.api.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))

	type ranked struct {
		inst *model.Instance
		rank int
	}
	var matches []ranked
	for _, inst := range instances {
		if !s.gate.Allows(inst) {
			continue
		}
		id := strings.ToLower(inst.ID)
		name := strings.ToLower(inst.Name)
		if !strings.Contains(id, needle) && !(name != "" && strings.Contains(name, needle)) {
			continue
		}
		matches = append(matches, ranked{inst: inst, rank: matchRank(needle, id, name)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		if matches[i].inst.Name != matches[j].inst.Name {
			return matches[i].inst.Name < matches[j].inst.Name
		}
		return matches[i].inst.ID < matches[j].inst.ID
	})

	if len(matches) > MaxSearchResults {
		matches = matches[:MaxSearchResults]
	}

	results := make([]*model.Instance, len(matches))
	for i, m := range matches {
		results[i] = m.inst
	}
	return results, nil
}

// ListControllable returns every controllable, non-terminated instance.
func (s *Searcher) ListControllable(ctx context.Context) ([]*model.Instance, error) {
	instances, err := s.api.List(ctx)
	if err != nil {
		return nil, err
	}

	var controllable []*model.Instance
	for _, inst := range instances {
		if s.gate.Allows(inst) {
			controllable = append(controllable, inst)
		}
	}
	return controllable, nil
}
