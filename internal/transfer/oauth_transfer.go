package transfer

// TokenResponse is the common shape of an authorization-code exchange reply.
// All three platforms return JSON with these fields; refresh_token and
// expires_in are optional depending on platform and scope.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

// Profile is the normalized identity a platform profile is mapped to.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LinkedInUserInfo is the OpenID Connect userinfo document.
type LinkedInUserInfo struct {
	Sub        string `json:"sub"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

type TwitterUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type TwitterUserResponse struct {
	Data TwitterUser `json:"data"`
}

type FacebookUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
