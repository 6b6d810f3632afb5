// Package linktoken issues and verifies the opaque tokens embedded in payment links.
package linktoken

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rp-pay-dashboard/internal/core/domain"
)

// Claims identify the payment a link collects.
type Claims struct {
	TenantID string `json:"tid,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs link tokens with an HMAC secret and builds link URLs on host.
type Issuer struct {
	secret []byte
	host   string
	now    func() time.Time
}

// NewIssuer creates an issuer. host is a bare hostname such as pay.rp-pay.com.
func NewIssuer(secret, host string) *Issuer {
	return &Issuer{secret: []byte(secret), host: host, now: time.Now}
}

// Token signs a token for paymentID. Links do not expire.
func (i *Issuer) Token(paymentID, tenantID string) (string, error) {
	claims := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  paymentID,
			IssuedAt: jwt.NewNumericDate(i.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign link token: %w", err)
	}
	return signed, nil
}

// Link returns https://<host>/l/<token> for paymentID.
func (i *Issuer) Link(paymentID, tenantID string) (string, error) {
	token, err := i.Token(paymentID, tenantID)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "https", Host: i.host, Path: "/l/" + token}
	return u.String(), nil
}

// Verify checks token and returns its claims.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Only HS256 is accepted.
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidLinkToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidLinkToken)
	}
	return claims, nil
}
