package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/K-Gaydukov/marketplace/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService verifies bearer tokens issued by the auth gateway and
// mints short-lived service tokens for service-to-service calls. It is
// constructed explicitly with key material; there is no global key state.
type TokenService struct {
	keys        *KeyMaterial
	issuer      string
	serviceName string
	ttl         time.Duration
}

func NewTokenService(keys *KeyMaterial, issuer, serviceName string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenService{keys: keys, issuer: issuer, serviceName: serviceName, ttl: ttl}
}

var ErrInvalidToken = errors.New("invalid token")

// Verify parses and validates raw and resolves the principal once.
// Service tokens are recognized by the svc claim, never by comparing
// subjects downstream. A token without svc must carry uid/role.
func (s *TokenService) Verify(raw string) (entity.Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.keys.Public, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithLeeway(30*time.Second))
	if err != nil || !token.Valid {
		return entity.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Principal{}, fmt.Errorf("%w: claims parsing error", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)

	if svc, _ := claims["svc"].(bool); svc {
		return entity.Principal{
			Kind:     entity.PrincipalService,
			Username: sub,
			Role:     entity.RoleAdmin,
			Token:    raw,
		}, nil
	}

	uid, ok := claims["uid"].(float64)
	if !ok {
		return entity.Principal{}, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}
	roleStr, _ := claims["role"].(string)
	role := entity.Role(roleStr)
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return entity.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, roleStr)
	}
	fio, _ := claims["fio"].(string)

	return entity.Principal{
		Kind:     entity.PrincipalUser,
		UserID:   int64(uid),
		Username: sub,
		FullName: fio,
		Role:     role,
		Token:    raw,
	}, nil
}

// MintServiceToken signs a short-lived token identifying this service.
// Used by the catalog adapter for stock adjustments.
func (s *TokenService) MintServiceToken() (string, error) {
	if s.keys.Private == nil {
		return "", errors.New("signing not configured (no RSA private key)")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  s.serviceName,
		"svc":  true,
		"role": string(entity.RoleAdmin),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.keys.Private)
}
