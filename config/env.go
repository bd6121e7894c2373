package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/w6g2000/polymarket-go-client/auth"
)

// LoadAPICreds reads API credentials from the environment, loading a .env
// file first when one is present.
func LoadAPICreds() (auth.APICreds, error) {
	_ = godotenv.Load()

	creds := auth.APICreds{
		ApiKey:     os.Getenv("POLY_API_KEY"),
		Secret:     os.Getenv("POLY_SECRET"),
		Passphrase: os.Getenv("POLY_PASSPHRASE"),
	}
	if creds.ApiKey == "" || creds.Secret == "" || creds.Passphrase == "" {
		return auth.APICreds{}, errors.New("POLY_API_KEY, POLY_SECRET and POLY_PASSPHRASE must be set")
	}

	return creds, nil
}

// LoadPrivateKey reads the signing key from PRIVATE_KEY, loading a .env file
// first when one is present.
func LoadPrivateKey() (string, error) {
	_ = godotenv.Load()

	key := os.Getenv("PRIVATE_KEY")
	if key == "" {
		return "", errors.New("PRIVATE_KEY must be set")
	}
	return key, nil
}
