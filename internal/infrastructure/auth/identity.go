package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"arrangement/internal/domain"
	"arrangement/internal/ports/output"
)

const (
	EmployeeIDClaim = "https://api.bekk.no/claims/employeeId"
	PermissionClaim = "https://api.bekk.no/claims/permission"
	AdminPermission = "admin:arrangement"
)

var _ output.Identity = (*Identity)(nil)

// Identity reads the signed-in user from an access token. The signature is
// not checked here; the APIs verify every request.
type Identity struct {
	raw    string
	claims jwt.MapClaims
	now    func() time.Time
}

// NewIdentity parses token. An empty token gives an anonymous identity.
func NewIdentity(token string) (*Identity, error) {
	id := &Identity{now: time.Now}
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return id, nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	id.raw = token
	id.claims = claims
	return id, nil
}

func (i *Identity) IsAuthenticated() bool {
	if i.raw == "" {
		return false
	}
	return i.claims.VerifyExpiresAt(i.now().Unix(), false)
}

func (i *Identity) AccessToken() string {
	if !i.IsAuthenticated() {
		return ""
	}
	return i.raw
}

func (i *Identity) EmployeeID() (int, error) {
	if !i.IsAuthenticated() {
		return 0, domain.ErrNotAuthenticated
	}
	switch v := i.claims[EmployeeIDClaim].(type) {
	case float64:
		return int(v), nil
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n, nil
		}
	}
	return 0, domain.ErrEmployeeIDUnavailable
}

func (i *Identity) IsAdmin() bool {
	if !i.IsAuthenticated() {
		return false
	}
	switch v := i.claims[PermissionClaim].(type) {
	case string:
		return v == AdminPermission
	case []any:
		for _, p := range v {
			if s, ok := p.(string); ok && s == AdminPermission {
				return true
			}
		}
	}
	return false
}
