// Package onlyone answers questions about content types that allow a single
// node per language.
package onlyone

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
)

// NodeFinder finds the node of a type in a language.
type NodeFinder interface {
	FirstOfType(ctx context.Context, contentType, lang string) (int64, bool, error)
}

// TypeLister lists content types flagged as only-one.
type TypeLister interface {
	ListOnlyOne(ctx context.Context) ([]models.ContentType, error)
}

// Service is the singleton lookup used by the exception layer and the
// settings form.
type Service struct {
	nodes NodeFinder
	types TypeLister
}

func New(nodes NodeFinder, types TypeLister) *Service {
	return &Service{nodes: nodes, types: types}
}

// ExistsSingletonOfType returns the id of the node of contentType in lang.
// An empty contentType never matches.
func (s *Service) ExistsSingletonOfType(ctx context.Context, contentType, lang string) (int64, bool, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return 0, false, nil
	}
	id, ok, err := s.nodes.FirstOfType(ctx, contentType, lang)
	if err != nil {
		return 0, false, fmt.Errorf("onlyone: lookup %s/%s: %w", contentType, lang, err)
	}
	return id, ok, nil
}

// AvailableContentTypes returns the names of only-one content types, sorted.
func (s *Service) AvailableContentTypes(ctx context.Context) ([]string, error) {
	types, err := s.types.ListOnlyOne(ctx)
	if err != nil {
		return nil, fmt.Errorf("onlyone: list types: %w", err)
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}
