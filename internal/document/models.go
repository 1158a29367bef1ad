package document

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
)

// Type separates articles from reports. It is fixed at creation.
type Type string

const (
	Article Type = "article"
	Report  Type = "report"
)

func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t != Article && t != Report {
		return "", apperr.Validation("Invalid or missing document type. Use 'article' or 'report'.")
	}
	return t, nil
}

// Document is a published article or report backed by a PDF.
type Document struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Type        Type               `json:"type" bson:"type"`
	Title       string             `json:"title" bson:"title"`
	AuthorNames []string           `json:"author_names" bson:"author_names"`
	Date        time.Time          `json:"date" bson:"date"`
	PDFURL      string             `json:"pdfUrl" bson:"pdfUrl"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SplitAuthors turns "A, B,,C" into [A B C].
func SplitAuthors(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ParseDate accepts RFC3339 or YYYY-MM-DD; blank means now.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation("Invalid date %q", s)
}
