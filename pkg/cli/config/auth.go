package config

import "github.com/urfave/cli/v3"

// Auth holds bearer token verification settings
type Auth struct {
	JWTSecret string `masq:"secret"`
}

// Flags returns CLI flags for auth configuration
func (c *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 key of tokens issued by the sign-in backend. Saved dataset routes are disabled when empty.",
			Destination: &c.JWTSecret,
			Sources:     cli.EnvVars("DATAMART_JWT_SECRET"),
		},
	}
}
