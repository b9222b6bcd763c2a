/*
Package auth verifies staff credentials and issues session tokens.

DEVICE BINDING:
  Every account is bound to at most one device token. A login presenting
  a different token than the bound one fails with
  generic.ErrDeviceMismatch. An account with no binding (new, or reset by
  an administrator) binds the presented token, or a new one, on its next
  successful login.

BOOTSTRAP ADMIN:
  A principal account configured outside the users collection, so a
  fresh install can log in and enroll staff. Its password is stored as a
  bcrypt hash in configuration. It is not device-bound.

TOKENS:
  HS256 JWTs carrying the identity. Expiry is checked against the
  injected clock.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/personnel"
	"golang.org/x/crypto/bcrypt"
)

// Identity is a verified caller.
type Identity struct {
	UserID       string                 `json:"userId"`
	Name         string                 `json:"name"`
	Role         personnel.Role         `json:"role"`
	AdminSubRole personnel.AdminSubRole `json:"adminSubRole,omitempty"`
}

func (i Identity) IsAdmin() bool { return i.Role == personnel.RoleAdmin }

// Session is the result of a successful login.
type Session struct {
	Identity
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	DeviceToken string    `json:"deviceToken,omitempty"`
}

// BootstrapAdmin is the configured principal account.
type BootstrapAdmin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
}

type claims struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	AdminSubRole string `json:"sub_role,omitempty"`
	jwt.RegisteredClaims
}

// Service logs users in and verifies their tokens.
type Service struct {
	users     *personnel.Directory
	secret    []byte
	ttl       time.Duration
	clock     generic.Clock
	bootstrap *BootstrapAdmin
}

func NewService(users *personnel.Directory, secret string, ttl time.Duration, clock generic.Clock, bootstrap *BootstrapAdmin) *Service {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Service{users: users, secret: []byte(secret), ttl: ttl, clock: clock, bootstrap: bootstrap}
}

// Login checks email and password for role and enforces the device
// binding. deviceToken is the token the client holds, possibly empty.
func (s *Service) Login(ctx context.Context, email, password string, role personnel.Role, deviceToken string) (*Session, error) {
	if id, ok := s.loginBootstrap(email, password, role); ok {
		return s.issue(id, "")
	}

	u, err := s.users.FindByEmail(ctx, email, role)
	if errors.Is(err, generic.ErrNotFound) {
		return nil, fmt.Errorf("%w: account not found for role %s", generic.ErrUnauthorized, role)
	}
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, fmt.Errorf("%w: incorrect password", generic.ErrUnauthorized)
	}

	if u.DeviceID != "" && u.DeviceID != deviceToken {
		return nil, &DeviceMismatchError{UserID: u.ID}
	}
	bound := u.DeviceID
	if bound == "" {
		if bound, err = s.users.BindDevice(ctx, u.ID, deviceToken); err != nil {
			return nil, err
		}
		if deviceToken != "" && bound != deviceToken {
			// another login bound a different device first
			return nil, &DeviceMismatchError{UserID: u.ID}
		}
	}

	sub := u.AdminSubRole
	if u.IsAdmin() && (sub == "" || sub == personnel.NoSubRole) {
		sub = personnel.Principal
	}
	return s.issue(Identity{UserID: u.ID, Name: u.Name, Role: u.Role, AdminSubRole: sub}, bound)
}

func (s *Service) loginBootstrap(email, password string, role personnel.Role) (Identity, bool) {
	b := s.bootstrap
	if b == nil || role != personnel.RoleAdmin || b.Email == "" || b.PasswordHash == "" {
		return Identity{}, false
	}
	if !equalFoldTrim(email, b.Email) {
		return Identity{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(b.PasswordHash), []byte(password)) != nil {
		return Identity{}, false
	}
	return Identity{UserID: b.ID, Name: b.Name, Role: personnel.RoleAdmin, AdminSubRole: personnel.Principal}, true
}

// Issue signs a token for id without checking credentials.
func (s *Service) Issue(id Identity) (*Session, error) {
	return s.issue(id, "")
}

func (s *Service) issue(id Identity, device string) (*Session, error) {
	now := s.clock.Now()
	exp := now.Add(s.ttl)
	c := claims{
		Name:         id.Name,
		Role:         string(id.Role),
		AdminSubRole: string(id.AdminSubRole),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Identity: id, Token: signed, ExpiresAt: exp, DeviceToken: device}, nil
}

// Verify parses token and returns the identity it carries.
func (s *Service) Verify(token string) (*Identity, error) {
	var c claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", generic.ErrUnauthorized)
	}
	if !c.VerifyExpiresAt(s.clock.Now(), true) {
		return nil, fmt.Errorf("%w: token expired", generic.ErrUnauthorized)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", generic.ErrUnauthorized)
	}
	return &Identity{
		UserID:       c.Subject,
		Name:         c.Name,
		Role:         personnel.Role(c.Role),
		AdminSubRole: personnel.AdminSubRole(c.AdminSubRole),
	}, nil
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// DeviceMismatchError reports a login from a device other than the bound
// one. UserID lets the client start device recovery.
type DeviceMismatchError struct {
	UserID string
}

func (e *DeviceMismatchError) Error() string {
	return "this account is bound to another device"
}

func (e *DeviceMismatchError) Unwrap() error {
	return generic.ErrDeviceMismatch
}
