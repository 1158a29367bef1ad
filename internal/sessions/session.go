package sessions

import "time"

// Session is a refresh session issued at login
type Session struct {
	RefreshToken string    `bson:"refreshToken" json:"refreshToken"`
	AdminID      string    `bson:"adminId" json:"adminId"`
	ExpiresAt    time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
