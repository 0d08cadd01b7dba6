package models

// CompanyRef is the short company view returned with user information
type CompanyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserInformation is the profile view of an authenticated user
type UserInformation struct {
	Profile *UserProfile `json:"user_info"`
	Company *CompanyRef  `json:"company"`
	User    *User        `json:"data"`
}

// LoginResult is returned on successful authentication
type LoginResult struct {
	AccessToken string `json:"access"`
	ExpiresAt   int64  `json:"expires_at"`
	User        *User  `json:"user"`
}

// RegistrationResult is returned after a successful signup
type RegistrationResult struct {
	User    *User        `json:"user"`
	Profile *UserProfile `json:"user_profile"`
	Company *Company     `json:"company"`
}

// RatingResult reports the stored rating and the product's new average
type RatingResult struct {
	ProductID     int64  `json:"product"`
	Rating        int    `json:"rating,omitempty"`
	AverageRating string `json:"ave_rating"`
}
