package testimonials

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultAuthor = "Anonymous"

// Testimonial is a quote shown on the public site, optionally with a portrait.
type Testimonial struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	Author    string             `json:"author" bson:"author"`
	ImageURL  string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
