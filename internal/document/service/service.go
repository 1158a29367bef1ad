package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
	"github.com/Manushivuz/IISPPR-MainSite/internal/document"
	"github.com/Manushivuz/IISPPR-MainSite/internal/document/repository"
	"github.com/Manushivuz/IISPPR-MainSite/internal/storage"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
	"github.com/Manushivuz/IISPPR-MainSite/pkg/logger"
)

const assetFolder = "documents"

// Failure reasons reported by DeleteMany.
const (
	ReasonNotFound    = "Not found"
	ReasonAssetFailed = "Asset deletion failed"
	ReasonUnexpected  = "Unexpected error"
)

// Service defines the document operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*document.Document, error)
	Get(ctx context.Context, docType, id string) (*document.Document, error)
	List(ctx context.Context, docType string) ([]*document.Document, error)
	Delete(ctx context.Context, docType, id string) error
	DeleteMany(ctx context.Context, docType string, ids []string) (*BatchResult, error)
}

type CreateInput struct {
	Type        string
	Title       string
	AuthorNames string // comma separated
	Date        string
	File        *upload.File
}

// Failure is one id that DeleteMany could not remove.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// BatchResult reports every id of a batch delete as either deleted or failed.
type BatchResult struct {
	Deleted []string  `json:"deleted"`
	Failed  []Failure `json:"failed"`
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(assets storage.Assets) Service {
	return New(repository.NewMemoryRepo(), assets)
}

// NewMongoService returns a Service backed by a MongoDB collection.
func NewMongoService(col *mongo.Collection, assets storage.Assets) Service {
	return New(repository.NewMongoRepo(col), assets)
}

func New(repo repository.Repository, assets storage.Assets) Service {
	return &documentService{repo: repo, assets: assets, now: time.Now}
}

type documentService struct {
	repo   repository.Repository
	assets storage.Assets
	now    func() time.Time
}

func (s *documentService) Create(ctx context.Context, in CreateInput) (*document.Document, error) {
	t, err := document.ParseType(in.Type)
	if err != nil {
		in.File.Remove()
		return nil, err
	}
	if in.File == nil {
		return nil, apperr.Validation("PDF file is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		in.File.Remove()
		return nil, apperr.Validation("Title is required")
	}
	date, err := document.ParseDate(in.Date, s.now().UTC())
	if err != nil {
		in.File.Remove()
		return nil, err
	}
	asset, err := s.assets.Upload(ctx, assetFolder, in.File.Path, in.File.ContentType)
	if err != nil {
		in.File.Remove()
		return nil, fmt.Errorf("PDF upload failed: %w", err)
	}
	d := &document.Document{
		Type:        t,
		Title:       title,
		AuthorNames: document.SplitAuthors(in.AuthorNames),
		Date:        date,
		PDFURL:      asset.URL,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		if derr := s.assets.Delete(ctx, asset.Key); derr != nil {
			logger.Warnf("orphaned %s pdf %s: %v", t, asset.Key, derr)
		}
		return nil, fmt.Errorf("create %s: %w", t, err)
	}
	return d, nil
}

func (s *documentService) Get(ctx context.Context, docType, id string) (*document.Document, error) {
	t, err := document.ParseType(docType)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Document not found")
	}
	d, err := s.repo.Get(ctx, t, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Document not found")
		}
		return nil, err
	}
	return d, nil
}

func (s *documentService) List(ctx context.Context, docType string) ([]*document.Document, error) {
	t, err := document.ParseType(docType)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, t)
}

// Delete removes one document. A failed PDF removal is logged and the record is removed anyway.
func (s *documentService) Delete(ctx context.Context, docType, id string) error {
	d, err := s.Get(ctx, docType, id)
	if err != nil {
		return err
	}
	if key, ok := s.assets.KeyFromURL(d.PDFURL); ok {
		if err := s.assets.Delete(ctx, key); err != nil {
			logger.Warnf("%s %s: delete pdf %s: %v", d.Type, d.ID.Hex(), key, err)
		}
	}
	if err := s.repo.Delete(ctx, d.Type, d.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Document not found")
		}
		return err
	}
	return nil
}

// DeleteMany handles each id on its own; one id failing never stops the others.
// A document whose PDF cannot be removed is kept and reported as failed.
func (s *documentService) DeleteMany(ctx context.Context, docType string, ids []string) (*BatchResult, error) {
	t, err := document.ParseType(docType)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("Array of IDs is required.")
	}
	res := &BatchResult{Deleted: []string{}, Failed: []Failure{}}
	for _, id := range ids {
		if f := s.deleteOne(ctx, t, id); f != nil {
			res.Failed = append(res.Failed, *f)
			continue
		}
		res.Deleted = append(res.Deleted, id)
	}
	logger.Infof("batch delete %s: %d deleted, %d failed", t, len(res.Deleted), len(res.Failed))
	return res, nil
}

func (s *documentService) deleteOne(ctx context.Context, t document.Type, id string) *Failure {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &Failure{ID: id, Reason: ReasonNotFound}
	}
	d, err := s.repo.Get(ctx, t, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Failure{ID: id, Reason: ReasonNotFound}
		}
		return &Failure{ID: id, Reason: ReasonUnexpected, Error: err.Error()}
	}
	if key, ok := s.assets.KeyFromURL(d.PDFURL); ok {
		if err := s.assets.Delete(ctx, key); err != nil {
			return &Failure{ID: id, Reason: ReasonAssetFailed, Error: err.Error()}
		}
	}
	if err := s.repo.Delete(ctx, t, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Failure{ID: id, Reason: ReasonNotFound}
		}
		return &Failure{ID: id, Reason: ReasonUnexpected, Error: err.Error()}
	}
	return nil
}
