package models

import "time"

// AccountStats are the headline counters for the authenticated account.
type AccountStats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
	Posts     int `json:"posts"`
}

// Profile is the full public record for one account.
type Profile struct {
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username"`
	FullName    string `json:"full_name,omitempty"`
	Biography   string `json:"biography,omitempty"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	Posts       int    `json:"posts"`
	Private     bool   `json:"private,omitempty"`
	Verified    bool   `json:"verified,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	PictureURL  string `json:"picture_url,omitempty"`
}

// Stats projects the profile counters into an AccountStats.
func (p Profile) Stats() AccountStats {
	return AccountStats{
		Followers: p.Followers,
		Following: p.Following,
		Posts:     p.Posts,
	}
}

// UserSummary is one row of a user search result.
type UserSummary struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name,omitempty"`
	Followers int    `json:"followers"`
	Verified  bool   `json:"verified,omitempty"`
	Private   bool   `json:"private,omitempty"`
}

// PostSummary is one entry of the home feed.
type PostSummary struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	Likes    int       `json:"likes"`
	Comments int       `json:"comments"`
	TakenAt  time.Time `json:"taken_at,omitzero"`
}

// PostConfirmation is returned once an upload has been published.
type PostConfirmation struct {
	MediaID string `json:"media_id"`
	Code    string `json:"code,omitempty"`
}
