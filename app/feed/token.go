package feed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	TokenLength    = 15
	tokenAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxTokenTrials = 16
)

// TokenExistsFunc reports whether a token is already used by a stored feed.
type TokenExistsFunc func(ctx context.Context, token string) (bool, error)

// GenerateToken draws random tokens until one is not taken.
func GenerateToken(ctx context.Context, exists TokenExistsFunc) (string, error) {
	for attempt := 1; attempt <= maxTokenTrials; attempt++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, token)
		if err != nil {
			return "", fmt.Errorf("failed to check feed token: %w", err)
		}
		if !taken {
			return token, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique feed token after %d attempts", maxTokenTrials)
}

var alphabetSize = big.NewInt(int64(len(tokenAlphabet)))

func randomToken() (string, error) {
	token := make([]byte, TokenLength)
	for i := range token {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read random data: %w", err)
		}
		token[i] = tokenAlphabet[n.Int64()]
	}
	return string(token), nil
}
