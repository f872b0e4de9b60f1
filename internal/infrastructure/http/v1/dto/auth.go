package dto

// LoginRequest for profile login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse includes the access token and the signed-in profile.
type LoginResponse struct {
	AccessToken string           `json:"accessToken"`
	TokenType   string           `json:"tokenType"`
	Profile     *ProfileResponse `json:"profile"`
}
