package domain

// TokenPair bundles the two tokens minted per login event. Each expires on
// its own schedule; ExpiresIn is seconds until the access token expires.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
