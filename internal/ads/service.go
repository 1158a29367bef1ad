package ads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/database"
	"github.com/Manushivuz/IISPPR-MainSite/internal/storage"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/logger"
)

const assetFolder = "ads"

// Unlinker drops deleted ads from anything that references them (the page-ad registry).
type Unlinker interface {
	RemoveAds(ctx context.Context, ids []primitive.ObjectID) error
}

// Service encapsulates advertisement business logic
type Service struct {
	repo     Repository
	assets   storage.Assets
	unlinker Unlinker
}

func NewService(r Repository, assets storage.Assets) *Service {
	return &Service{repo: r, assets: assets}
}

// SetUnlinker wires the cascade run after a batch delete.
func (s *Service) SetUnlinker(u Unlinker) { s.unlinker = u }

type CreateInput struct {
	Title       string
	Description string
	File        *upload.File
}

// UpdateInput replaces Title/Description when non-empty and the image when File is set.
type UpdateInput struct {
	Title       string
	Description string
	File        *upload.File
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Advertisement, error) {
	if in.File == nil {
		return nil, apperr.Validation("Image required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		in.File.Remove()
		return nil, apperr.Validation("Title is required")
	}
	asset, err := s.assets.Upload(ctx, assetFolder, in.File.Path, in.File.ContentType)
	if err != nil {
		in.File.Remove()
		return nil, fmt.Errorf("upload image: %w", err)
	}
	ad := &Advertisement{Title: title, Description: in.Description, ImageURL: asset.URL}
	if err := s.repo.Create(ctx, ad); err != nil {
		if derr := s.assets.Delete(ctx, asset.Key); derr != nil {
			logger.Warnf("orphaned ad asset %s: %v", asset.Key, derr)
		}
		return nil, fmt.Errorf("create ad: %w", err)
	}
	return ad, nil
}

func (s *Service) List(ctx context.Context) ([]*Advertisement, error) {
	return s.repo.List(ctx)
}

// Get looks an ad up by its hex id.
func (s *Service) Get(ctx context.Context, id string) (*Advertisement, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Not found")
	}
	return s.Find(ctx, oid)
}

func (s *Service) Find(ctx context.Context, id primitive.ObjectID) (*Advertisement, error) {
	ad, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Advertisement not found.")
		}
		return nil, err
	}
	return ad, nil
}

// FindMany returns the ads that exist among ids, in no particular order.
func (s *Service) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]*Advertisement, error) {
	if len(ids) == 0 {
		return []*Advertisement{}, nil
	}
	return s.repo.FindByIDs(ctx, ids)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Advertisement, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		in.File.Remove()
		return nil, apperr.NotFound("Ad not found")
	}
	ad, err := s.repo.Get(ctx, oid)
	if err != nil {
		in.File.Remove()
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Ad not found")
		}
		return nil, err
	}

	// the old image goes only once the record points at the new one
	var uploaded, oldKey string
	if in.File != nil {
		asset, err := s.assets.Upload(ctx, assetFolder, in.File.Path, in.File.ContentType)
		if err != nil {
			in.File.Remove()
			return nil, fmt.Errorf("upload image: %w", err)
		}
		oldKey, _ = s.assets.KeyFromURL(ad.ImageURL)
		uploaded = asset.Key
		ad.ImageURL = asset.URL
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		ad.Title = t
	}
	if in.Description != "" {
		ad.Description = in.Description
	}
	if err := s.repo.Update(ctx, ad); err != nil {
		if uploaded != "" {
			if derr := s.assets.Delete(ctx, uploaded); derr != nil {
				logger.Warnf("orphaned ad asset %s: %v", uploaded, derr)
			}
		}
		return nil, fmt.Errorf("update ad: %w", err)
	}
	if oldKey != "" {
		if err := s.assets.Delete(ctx, oldKey); err != nil {
			logger.Warnf("ad %s: delete old image %s: %v", ad.ID.Hex(), oldKey, err)
		}
	}
	return ad, nil
}

// DeleteMany removes every matching ad in one database call. Image removal is
// one bulk call whose failure is logged only; registry references are dropped afterwards.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("Array of ad IDs is required.")
	}
	oids, err := database.ParseObjectIDs(ids)
	if err != nil {
		return 0, apperr.Validation("%v", err)
	}
	found, err := s.repo.FindByIDs(ctx, oids)
	if err != nil {
		return 0, err
	}
	if len(found) == 0 {
		return 0, apperr.NotFound("No ads found with the provided IDs.")
	}

	keys := make([]string, 0, len(found))
	foundIDs := make([]primitive.ObjectID, 0, len(found))
	for _, ad := range found {
		foundIDs = append(foundIDs, ad.ID)
		if key, ok := s.assets.KeyFromURL(ad.ImageURL); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		if err := s.assets.DeleteMany(ctx, keys); err != nil {
			logger.Warnf("bulk image delete for %d ad(s): %v", len(keys), err)
		}
	}

	if _, err := s.repo.DeleteByIDs(ctx, foundIDs); err != nil {
		return 0, fmt.Errorf("delete ads: %w", err)
	}
	if s.unlinker != nil {
		if err := s.unlinker.RemoveAds(ctx, foundIDs); err != nil {
			logger.Warnf("unlink %d deleted ad(s) from pages: %v", len(foundIDs), err)
		}
	}
	return len(found), nil
}
