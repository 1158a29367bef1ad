package testimonials

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

const assetFolder = "testimonials"

type Service struct {
	repo   Repository
	assets storage.Assets
}

func NewService(r Repository, assets storage.Assets) *Service {
	return &Service{repo: r, assets: assets}
}

type CreateInput struct {
	Text   string
	Author string
	File   *upload.File
}

// UpdateInput fields are applied only when non-nil.
type UpdateInput struct {
	Text   *string
	Author *string
	File   *upload.File
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Testimonial, error) {
	if in.File == nil {
		return nil, apperr.Validation("Image required")
	}
	if strings.TrimSpace(in.Text) == "" {
		in.File.Remove()
		return nil, apperr.Validation("Testimonial text is required")
	}
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = DefaultAuthor
	}
	asset, err := s.assets.Upload(ctx, assetFolder, in.File.Path, in.File.ContentType)
	if err != nil {
		in.File.Remove()
		return nil, fmt.Errorf("upload image: %w", err)
	}
	t := &Testimonial{Text: in.Text, Author: author, ImageURL: asset.URL}
	if err := s.repo.Create(ctx, t); err != nil {
		if derr := s.assets.Delete(ctx, asset.Key); derr != nil {
			logger.Warnf("orphaned testimonial asset %s: %v", asset.Key, derr)
		}
		return nil, fmt.Errorf("create testimonial: %w", err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]*Testimonial, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Testimonial, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Testimonial not found.")
	}
	t, err := s.repo.Get(ctx, oid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("Testimonial not found.")
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Testimonial, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		in.File.Remove()
		return nil, err
	}
	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			in.File.Remove()
			return nil, apperr.Validation("Testimonial text is required")
		}
		t.Text = *in.Text
	}
	if in.Author != nil {
		t.Author = strings.TrimSpace(*in.Author)
		if t.Author == "" {
			t.Author = DefaultAuthor
		}
	}
	var uploaded, oldKey string
	if in.File != nil {
		asset, err := s.assets.Upload(ctx, assetFolder, in.File.Path, in.File.ContentType)
		if err != nil {
			in.File.Remove()
			return nil, fmt.Errorf("upload image: %w", err)
		}
		oldKey, _ = s.assets.KeyFromURL(t.ImageURL)
		uploaded = asset.Key
		t.ImageURL = asset.URL
	}
	if err := s.repo.Update(ctx, t); err != nil {
		if uploaded != "" {
			if derr := s.assets.Delete(ctx, uploaded); derr != nil {
				logger.Warnf("orphaned testimonial asset %s: %v", uploaded, derr)
			}
		}
		return nil, fmt.Errorf("update testimonial: %w", err)
	}
	if oldKey != "" {
		if err := s.assets.Delete(ctx, oldKey); err != nil {
			logger.Warnf("testimonial %s: delete old image %s: %v", t.ID.Hex(), oldKey, err)
		}
	}
	return t, nil
}

// DeleteMany follows the same all-or-nothing contract as advertisements.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("Array of testimonial IDs is required.")
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
		return 0, apperr.NotFound("No testimonials found with the provided IDs.")
	}
	keys := []string{}
	foundIDs := make([]primitive.ObjectID, 0, len(found))
	for _, t := range found {
		foundIDs = append(foundIDs, t.ID)
		if key, ok := s.assets.KeyFromURL(t.ImageURL); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		if err := s.assets.DeleteMany(ctx, keys); err != nil {
			logger.Warnf("bulk image delete for %d testimonial(s): %v", len(keys), err)
		}
	}
	if _, err := s.repo.DeleteByIDs(ctx, foundIDs); err != nil {
		return 0, fmt.Errorf("delete testimonials: %w", err)
	}
	return len(found), nil
}
