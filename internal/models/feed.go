package models

import "time"

// FeedItem is a status update posted by a profile.
type FeedItem struct {
	ID         int       `json:"id"`
	ProfileID  int       `json:"user_profile"`
	StatusText string    `json:"status_text"`
	CreatedOn  time.Time `json:"created_on"`
}

func (f FeedItem) OwnerID() int { return f.ProfileID }
