package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/K-Gaydukov/marketplace/configs"
)

// KeyMaterial holds the RSA pair used for token verification and, when
// the private half is configured, service-token signing.
type KeyMaterial struct {
	Public  *rsa.PublicKey
	Private *rsa.PrivateKey // nil => verify-only
}

func LoadKeyMaterial(c configs.Config) (*KeyMaterial, error) {
	if c.Security.PublicKeyPEM == "" {
		return nil, errors.New("missing security.public_key_pem")
	}

	pub, err := parseRSAPublicKeyFromPEM([]byte(c.Security.PublicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse rsa pub pem: %w", err)
	}

	var pri *rsa.PrivateKey
	if c.Security.PrivateKeyPEM != "" {
		pri, err = parseRSAPrivateKeyFromPEM([]byte(c.Security.PrivateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse rsa pri pem: %w", err)
		}
	}

	return &KeyMaterial{Public: pub, Private: pri}, nil
}

func parseRSAPublicKeyFromPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no pem block")
	}
	pubAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := pubAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not rsa public key")
	}
	return pub, nil
}

func parseRSAPrivateKeyFromPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no pem block in RSA private key")
	}

	// try PKCS#8 first
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		if rsaKey, ok := key.(*rsa.PrivateKey); ok {
			return rsaKey, nil
		}
		return nil, errors.New("not an RSA private key in PKCS#8")
	}

	// fallback to PKCS#1
	rsaKey, err2 := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err2 != nil {
		return nil, fmt.Errorf("parse RSA private key failed (PKCS#8: %v, PKCS#1: %v)", err, err2)
	}
	return rsaKey, nil
}
