package models

// Credentials for login request. There is no username: the submitted
// password alone resolves which store (or the hub) is authenticating.
type Credentials struct {
	Password string `json:"password" binding:"required"`
}

// LoginResult carries the issued tokens and the resolved identity.
type LoginResult struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Role         string  `json:"role"`
	StoreID      *string `json:"store_id,omitempty"`
	StoreName    *string `json:"store_name,omitempty"`
}

// RegisterStorePayload for creating a new tenant store (hub only).
type RegisterStorePayload struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}
