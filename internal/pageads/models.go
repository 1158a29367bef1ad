// Package pageads keeps the registry of which advertisements render in which page slot.
package pageads

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
)

type Position string

const (
	Top    Position = "top"
	Bottom Position = "bottom"
)

// Positions lists slots in lookup order.
var Positions = []Position{Top, Bottom}

// ParsePosition trims and lowercases s; only top and bottom are accepted.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if p != Top && p != Bottom {
		return "", apperr.Validation("Position must be 'top' or 'bottom'")
	}
	return p, nil
}

func (p Position) Opposite() Position {
	if p == Top {
		return Bottom
	}
	return Top
}

func NormalizePage(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PageAd is one (page, position) slot and its ordered, de-duplicated ad ids.
type PageAd struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Page      string               `json:"page" bson:"page"`
	Position  Position             `json:"position" bson:"position"`
	AdIDs     []primitive.ObjectID `json:"adIds" bson:"adIds"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
}
