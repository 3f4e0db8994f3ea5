package accounts

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// EnvConfig implements Config from environment variables.
type EnvConfig struct {
	SigningKey      string   `env:"ACCOUNTS_SIGNING_KEY,required,notEmpty"`
	TokenExpiration int      `env:"ACCOUNTS_TOKEN_EXPIRATION" envDefault:"72"`
	Issuer          string   `env:"ACCOUNTS_ISSUER" envDefault:"accounts"`
	Audience        []string `env:"ACCOUNTS_AUDIENCE" envDefault:"accounts"`
	Domain          string   `env:"ACCOUNTS_DOMAIN" envDefault:"http://localhost:3000"`
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is merged in first when present; a missing file is not
// an error.
func LoadConfig() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment configuration")
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

func (c *EnvConfig) GetAudience() []string {
	return c.Audience
}

func (c *EnvConfig) GetDomain() string {
	return c.Domain
}
