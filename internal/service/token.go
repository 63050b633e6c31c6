package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkoreshkov/saas-backend/internal/domain"
)

// TokenService issues and verifies signed access tokens.
type TokenService struct {
	secret            []byte
	issuer            string
	accessTokenExpiry time.Duration
}

// NewTokenService creates a new token service.
func NewTokenService(secret, issuer string, accessTokenExpiry time.Duration) *TokenService {
	return &TokenService{
		secret:            []byte(secret),
		issuer:            issuer,
		accessTokenExpiry: accessTokenExpiry,
	}
}

// GenerateAccessToken issues a signed access token for the user.
// The email_confirmed claim is the string "true" or "false".
func (t *TokenService) GenerateAccessToken(user *domain.User, roles []string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":             user.ID,
		"email":           user.Email,
		"name":            user.FullName,
		"roles":           roles,
		"email_confirmed": strconv.FormatBool(user.IsEmailConfirmed),
		"iss":             t.issuer,
		"exp":             now.Add(t.accessTokenExpiry).Unix(),
		"iat":             now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken verifies a token's signature and expiry and
// returns its claims.
func (t *TokenService) ValidateAccessToken(tokenString string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, ok := mapClaims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid sub in token")
	}

	email, ok := mapClaims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid email in token")
	}

	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp in token")
	}

	iat, _ := mapClaims["iat"].(float64)
	name, _ := mapClaims["name"].(string)
	confirmed, _ := mapClaims["email_confirmed"].(string)

	var roles []string
	if rawRoles, ok := mapClaims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if role, ok := r.(string); ok {
				roles = append(roles, role)
			}
		}
	}

	return &domain.TokenClaims{
		UserID:         userID,
		Email:          email,
		Name:           name,
		Roles:          roles,
		EmailConfirmed: confirmed == "true",
		Exp:            int64(exp),
		Iat:            int64(iat),
	}, nil
}

// AccessTokenExpirySeconds returns the access token lifetime in seconds.
func (t *TokenService) AccessTokenExpirySeconds() int {
	return int(t.accessTokenExpiry.Seconds())
}
