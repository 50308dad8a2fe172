package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type OAuthProvider struct {
	ClientID     string
	ClientSecret string
	Scope        string
}

type Config struct {
	LinkedIn           OAuthProvider
	Twitter            OAuthProvider
	Facebook           OAuthProvider
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	PostgresURI        string
	RedisURI           string
	BaseURL            string
	FrontendURL        string
	R2                 R2
	SecretKey          string
	EncryptionKey      string
	CookieName         string
	Production         bool
}

func LoadConfig() *Config {
	return &Config{
		LinkedIn: OAuthProvider{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			Scope:        getEnv("LINKEDIN_SCOPE", "openid profile email w_member_social"),
		},
		Twitter: OAuthProvider{
			ClientID:     getEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: getEnv("TWITTER_CLIENT_SECRET", ""),
			Scope:        getEnv("TWITTER_SCOPE", "tweet.read tweet.write users.read offline.access"),
		},
		Facebook: OAuthProvider{
			ClientID:     getEnv("FACEBOOK_APP_ID", ""),
			ClientSecret: getEnv("FACEBOOK_APP_SECRET", ""),
			Scope:        getEnv("FACEBOOK_SCOPE", "pages_manage_posts pages_read_engagement"),
		},
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", ""),
		BaseURL:            getEnv("BASE_URL", "http://localhost:3000"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:     getEnv("SECRET_KEY", ""),
		EncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", "dora_session"),
		Production:    getEnv("APP_ENV", "development") == "production",
	}
}

// Provider returns the OAuth client settings for a publishing platform.
func (c *Config) Provider(platform string) (OAuthProvider, bool) {
	switch platform {
	case "linkedin":
		return c.LinkedIn, true
	case "twitter":
		return c.Twitter, true
	case "facebook":
		return c.Facebook, true
	default:
		return OAuthProvider{}, false
	}
}

// RedirectURI is where a platform sends the user back after consent.
func (c *Config) RedirectURI(platform string) string {
	return c.BaseURL + "/auth/callback/" + platform
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
