package dto

// ProfileResponse carries the per-account profile document.
type ProfileResponse struct {
	UserID          string `json:"userId"`
	ProfileImageURL string `json:"profileImageUrl"`
}
