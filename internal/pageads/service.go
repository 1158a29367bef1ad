package pageads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Manushivuz/IISPPR-MainSite/internal/ads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/logger"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/metrics"
)

// AdSource resolves advertisement ids. *ads.Service satisfies it.
type AdSource interface {
	Find(ctx context.Context, id primitive.ObjectID) (*ads.Advertisement, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]*ads.Advertisement, error)
}

type Service struct {
	repo Repository
	ads  AdSource
}

func NewService(r Repository, src AdSource) *Service {
	return &Service{repo: r, ads: src}
}

// Slot is a (page, position) pair as reported back to callers.
type Slot struct {
	Page     string
	Position Position
}

func (s Slot) String() string { return fmt.Sprintf("%s (%s)", s.Page, s.Position) }

// PageAds is a slot with its ads resolved, in stored order.
type PageAds struct {
	Page     string               `json:"page"`
	Position Position             `json:"position"`
	Ads      []*ads.Advertisement `json:"ads"`
}

// Assignment is one registry record with ids resolved, as listed by All.
type Assignment struct {
	ID       primitive.ObjectID   `json:"_id"`
	Page     string               `json:"page"`
	Position Position             `json:"position"`
	AdIDs    []*ads.Advertisement `json:"adIds"`
}

func (s *Service) parseAdID(ctx context.Context, adID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(adID))
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("Advertisement not found.")
	}
	if _, err := s.ads.Find(ctx, oid); err != nil {
		return primitive.NilObjectID, err
	}
	return oid, nil
}

// Assign adds adID to the given position of every page. Pages are written one
// at a time; a failure leaves the pages before it assigned.
func (s *Service) Assign(ctx context.Context, adID string, pages []string, position string) ([]Slot, error) {
	if strings.TrimSpace(adID) == "" || len(pages) == 0 || strings.TrimSpace(position) == "" {
		return nil, apperr.Validation("adId, pages and position are required")
	}
	pos, err := ParsePosition(position)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pages))
	seen := map[string]bool{}
	for _, p := range pages {
		name := NormalizePage(p)
		if name == "" {
			return nil, apperr.Validation("Page names must not be empty")
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	oid, err := s.parseAdID(ctx, adID)
	if err != nil {
		return nil, err
	}

	touched := make([]Slot, 0, len(names))
	for _, name := range names {
		if err := s.repo.AddAd(ctx, name, pos, oid); err != nil {
			logger.Errorf("assign ad %s to %s (%s): %v", oid.Hex(), name, pos, err)
			return touched, fmt.Errorf("assign to %s (%s): %w", name, pos, err)
		}
		metrics.PageAdOperations.WithLabelValues("assign").Inc()
		touched = append(touched, Slot{Page: name, Position: pos})
	}
	logger.Debugf("ad %s assigned to %d slot(s)", oid.Hex(), len(touched))
	return touched, nil
}

// AssignMessage renders the confirmation returned to the console.
func AssignMessage(slots []Slot) string {
	parts := make([]string, len(slots))
	for i, sl := range slots {
		parts[i] = sl.String()
	}
	return "Ad assigned to: " + strings.Join(parts, ", ")
}

func (s *Service) Unassign(ctx context.Context, adID, page, position string) error {
	name := NormalizePage(page)
	if strings.TrimSpace(adID) == "" || name == "" || strings.TrimSpace(position) == "" {
		return apperr.Validation("adId, page and position are required")
	}
	pos, err := ParsePosition(position)
	if err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(adID))
	if err != nil {
		return apperr.Validation("Invalid adId")
	}
	if err := s.repo.RemoveAd(ctx, name, pos, oid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("Ad assignment not found.")
		}
		return err
	}
	metrics.PageAdOperations.WithLabelValues("unassign").Inc()
	return nil
}

// resolve returns the ads behind ids in stored order, skipping ids whose ad is gone.
func (s *Service) resolve(ctx context.Context, ids []primitive.ObjectID) ([]*ads.Advertisement, error) {
	found, err := s.ads.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*ads.Advertisement, len(found))
	for _, ad := range found {
		byID[ad.ID] = ad
	}
	out := make([]*ads.Advertisement, 0, len(ids))
	for _, id := range ids {
		if ad, ok := byID[id]; ok {
			out = append(out, ad)
		}
	}
	return out, nil
}

// AdsForPage answers what renders at page. Without a position the first
// non-empty slot wins, top before bottom. An empty result is NotFound.
func (s *Service) AdsForPage(ctx context.Context, page, position string) (*PageAds, error) {
	name := NormalizePage(page)
	if name == "" {
		return nil, apperr.Validation("Page name is required")
	}
	var slots []*PageAd
	if strings.TrimSpace(position) != "" {
		pos, err := ParsePosition(position)
		if err != nil {
			return nil, err
		}
		pa, err := s.repo.Find(ctx, name, pos)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if pa != nil {
			slots = append(slots, pa)
		}
	} else {
		all, err := s.repo.FindByPage(ctx, name)
		if err != nil {
			return nil, err
		}
		for _, pos := range Positions {
			for _, pa := range all {
				if pa.Position == pos {
					slots = append(slots, pa)
				}
			}
		}
	}
	for _, pa := range slots {
		resolved, err := s.resolve(ctx, pa.AdIDs)
		if err != nil {
			return nil, err
		}
		if len(resolved) > 0 {
			return &PageAds{Page: name, Position: pa.Position, Ads: resolved}, nil
		}
	}
	return nil, apperr.NotFound("No ads found")
}

func (s *Service) All(ctx context.Context) ([]Assignment, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Assignment, 0, len(records))
	for _, pa := range records {
		resolved, err := s.resolve(ctx, pa.AdIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, Assignment{ID: pa.ID, Page: pa.Page, Position: pa.Position, AdIDs: resolved})
	}
	return out, nil
}

// UpdatePosition moves every ad of page's from slot into position. An empty
// from means the opposite of position. The source slot is emptied, not deleted.
func (s *Service) UpdatePosition(ctx context.Context, page, position, from string) (*PageAd, error) {
	name := NormalizePage(page)
	if name == "" || strings.TrimSpace(position) == "" {
		return nil, apperr.Validation("Page and position are required")
	}
	to, err := ParsePosition(position)
	if err != nil {
		return nil, err
	}
	src := to.Opposite()
	if strings.TrimSpace(from) != "" {
		if src, err = ParsePosition(from); err != nil {
			return nil, err
		}
	}
	if src == to {
		return nil, apperr.Validation("Source and target position are the same")
	}
	pa, err := s.repo.Merge(ctx, name, src, to)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Page ad not found")
		}
		return nil, err
	}
	metrics.PageAdOperations.WithLabelValues("move").Inc()
	return pa, nil
}

func (s *Service) DeletePage(ctx context.Context, page string) (int64, error) {
	name := NormalizePage(page)
	if name == "" {
		return 0, apperr.Validation("Page name is required")
	}
	n, err := s.repo.DeletePage(ctx, name)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, apperr.NotFound("No assignments found for page %q", name)
	}
	metrics.PageAdOperations.WithLabelValues("delete_page").Inc()
	return n, nil
}
