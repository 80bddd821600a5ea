package main

import (
	"log"
	"os"
)

const devFallbackSecret = "dev-insecure-secret-change" // development fallback, never for production

// Config holds all environment-derived settings. It is read once at startup
// and treated as immutable for the process lifetime.
type Config struct {
	JWTSecret            string
	Port                 string
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURL    string
	OAuthErrorRedirect   string
	OAuthSuccessRedirect string
}

func loadConfig() Config {
	cfg := Config{
		JWTSecret:            os.Getenv("JWT_SECRET"),
		Port:                 os.Getenv("PORT"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:    os.Getenv("GOOGLE_REDIRECT_URL"),
		OAuthErrorRedirect:   os.Getenv("OAUTH_ERROR_REDIRECT"),
		OAuthSuccessRedirect: os.Getenv("OAUTH_SUCCESS_REDIRECT"),
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devFallbackSecret
		log.Println("WARNING: JWT_SECRET is not set; using the insecure development fallback. Do not run like this in production.")
	}
	if cfg.Port == "" {
		cfg.Port = "8081"
	}
	if cfg.OAuthErrorRedirect == "" {
		cfg.OAuthErrorRedirect = "/login/error"
	}
	if cfg.OAuthSuccessRedirect == "" {
		cfg.OAuthSuccessRedirect = "/"
	}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		log.Println("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; Google login routes will reject requests")
	}
	return cfg
}
