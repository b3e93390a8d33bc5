package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// AppConfig is loaded from the environment once at startup and never mutated
// afterwards. It satisfies blog.Config for the auth wiring.
type AppConfig struct {
	HTTPAddr        string `env:"BLOG_HTTP_ADDR" envDefault:":8000"`
	DSN             string `env:"BLOG_DSN" envDefault:"file:blog.db?cache=shared"`
	SigningKey      string `env:"BLOG_SIGNING_KEY" envDefault:"dev-signing-key-change-me"`
	SigningMethod   string `env:"BLOG_SIGNING_METHOD" envDefault:"HS256"`
	TokenExpiration int    `env:"BLOG_TOKEN_EXPIRATION" envDefault:"30"`
	Issuer          string `env:"BLOG_ISSUER" envDefault:"go-blog"`
	ContextKey      string `env:"BLOG_CONTEXT_KEY" envDefault:"user"`
	AuthScheme      string `env:"BLOG_AUTH_SCHEME" envDefault:"Bearer"`
	Debug           bool   `env:"BLOG_DEBUG" envDefault:"false"`
}

// LoadConfig parses the environment into an AppConfig.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *AppConfig) GetContextKey() string {
	return c.ContextKey
}

// GetTokenExpiration is the token lifetime in minutes.
func (c *AppConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *AppConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *AppConfig) GetIssuer() string {
	return c.Issuer
}
