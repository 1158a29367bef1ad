// Package upload stores multipart files in a temp directory until the asset host takes them.
package upload

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
)

// File is an uploaded file waiting in the temp directory.
type File struct {
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
}

// Remove deletes the temp copy. Safe on nil and on already-consumed files.
func (f *File) Remove() {
	if f == nil || f.Path == "" {
		return
	}
	_ = os.Remove(f.Path)
}

// Intake saves form files into Dir.
type Intake struct {
	Dir      string
	MaxBytes int64
}

func NewIntake(dir string, maxBytes int64) (*Intake, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Intake{Dir: dir, MaxBytes: maxBytes}, nil
}

// FromForm saves the named form file. It returns (nil, nil) when the request carries none.
// When allowed is non-empty the sniffed content type must match one of its entries;
// an entry ending in "/" matches a whole family ("image/").
func (in *Intake) FromForm(c *gin.Context, field string, allowed ...string) (*File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperr.Validation("invalid multipart form: %v", err)
	}
	if in.MaxBytes > 0 && fh.Size > in.MaxBytes {
		return nil, apperr.Validation("file exceeds %d bytes", in.MaxBytes)
	}
	dst := filepath.Join(in.Dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	mt, err := mimetype.DetectFile(dst)
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	f := &File{Path: dst, OriginalName: fh.Filename, ContentType: mt.String(), Size: fh.Size}
	if len(allowed) > 0 && !matches(mt, allowed) {
		f.Remove()
		return nil, apperr.Validation("Only %s files are allowed", strings.Join(allowed, ", "))
	}
	return f, nil
}

func matches(mt *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if strings.HasSuffix(a, "/") {
			if strings.HasPrefix(mt.String(), a) {
				return true
			}
			continue
		}
		if mt.Is(a) {
			return true
		}
	}
	return false
}
