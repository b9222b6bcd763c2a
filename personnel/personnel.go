/*
Package personnel manages the users collection.

PURPOSE:
  Staff enroll themselves as teachers or administrators, and each
  account is bound to one device token at enrollment. Administrators
  later edit profiles and clear device bindings.

STORAGE:
  One list under generic.KeyUsers, in enrollment order. Passwords are
  kept only as bcrypt hashes.

SEE ALSO:
  - auth: login and device binding checks on top of Directory
*/
package personnel

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/i18n"
	"github.com/warp/edutime/notify"
	"golang.org/x/crypto/bcrypt"
)

// Role separates teaching staff from administrators.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

func (r Role) Valid() bool { return r == RoleTeacher || r == RoleAdmin }

// AdminSubRole scopes an administrator's duties.
type AdminSubRole string

const (
	Principal   AdminSubRole = "Principal"
	HRManager   AdminSubRole = "HR Manager"
	Coordinator AdminSubRole = "Academic Coordinator"
	NoSubRole   AdminSubRole = "None"
)

func (r AdminSubRole) Valid() bool {
	switch r {
	case Principal, HRManager, Coordinator, NoSubRole:
		return true
	}
	return false
}

// AdminDepartment is assigned to every enrolled administrator.
const AdminDepartment = "Administration"

// User is one staff account.
type User struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Mobile       string       `json:"mobile,omitempty"`
	PasswordHash string       `json:"passwordHash,omitempty"`
	Department   string       `json:"department"`
	Position     string       `json:"position"`
	Avatar       string       `json:"avatar,omitempty"`
	Role         Role         `json:"role"`
	AdminSubRole AdminSubRole `json:"adminSubRole,omitempty"`
	EmployeeCode string       `json:"employeeCode,omitempty"`
	OfficeID     string       `json:"officeId,omitempty"`
	DeviceID     string       `json:"deviceId,omitempty"`
	VerifiedAt   *time.Time   `json:"verifiedAt,omitempty"`
}

// IsAdmin reports whether u has administrator rights.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CheckPassword compares password with the stored hash.
func (u User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// NewDeviceToken returns a fresh device binding token, "SEC-" plus eight
// uppercase characters.
func NewDeviceToken() string {
	return "SEC-" + generic.ShortCode(8)
}

// HashPassword hashes password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Enrollment is the input of Directory.Enroll.
type Enrollment struct {
	Name         string
	Email        string
	Password     string
	Mobile       string
	Role         Role
	AdminSubRole AdminSubRole
	Department   string
	Position     string
	EmployeeCode string
	OfficeID     string
}

// ProfileUpdate holds the administrator-editable profile fields.
type ProfileUpdate struct {
	Name       string
	Department string
	Position   string
}

// Directory reads and writes users through the ledger.
type Directory struct {
	ledger   *generic.Ledger
	notifier notify.Pusher
	clock    generic.Clock
}

func NewDirectory(ledger *generic.Ledger, notifier notify.Pusher, clock generic.Clock) *Directory {
	return &Directory{ledger: ledger, notifier: notifier, clock: clock}
}

// Enroll creates an account and binds it to a new device token, returned
// on the user.
func (d *Directory) Enroll(ctx context.Context, in Enrollment) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	verified := d.clock.Now().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Mobile:       in.Mobile,
		PasswordHash: hash,
		Department:   in.Department,
		Position:     in.Position,
		Role:         in.Role,
		AdminSubRole: NoSubRole,
		DeviceID:     NewDeviceToken(),
		VerifiedAt:   &verified,
	}
	if in.Role == RoleAdmin {
		sub := in.AdminSubRole
		if sub == "" {
			sub = HRManager
		}
		u.AdminSubRole = sub
		u.Department = AdminDepartment
		u.Position = string(sub)
		u.OfficeID = in.OfficeID
	} else {
		u.EmployeeCode = in.EmployeeCode
	}

	err = d.ledger.Update(ctx, func(s generic.Store) error {
		users, err := generic.LoadList[User](ctx, s, generic.KeyUsers)
		if err != nil {
			return err
		}
		for _, existing := range users {
			if existing.Email == u.Email {
				return generic.Invalid("email", "%s is already enrolled", u.Email)
			}
		}
		return generic.SaveJSON(ctx, s, generic.KeyUsers, append(users, u))
	})
	if err != nil {
		return nil, err
	}

	notify.Send(ctx, d.notifier, notify.AdminTarget, notify.Success, i18n.Enrollment,
		map[string]any{"Role": string(u.Role), "Name": u.Name})
	return &u, nil
}

func (in Enrollment) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return generic.Invalid("name", "is required")
	}
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return generic.Invalid("email", "must be a valid address")
	}
	if len(in.Password) < 6 {
		return generic.Invalid("password", "must be at least 6 characters")
	}
	if !in.Role.Valid() {
		return generic.Invalid("role", "must be TEACHER or ADMIN")
	}
	if in.Role == RoleAdmin && in.AdminSubRole != "" && (!in.AdminSubRole.Valid() || in.AdminSubRole == NoSubRole) {
		return generic.Invalid("adminSubRole", "unknown sub-role %q", in.AdminSubRole)
	}
	if in.Role == RoleTeacher && strings.TrimSpace(in.Department) == "" {
		return generic.Invalid("department", "is required")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Get returns the user with id.
func (d *Directory) Get(ctx context.Context, id string) (*User, error) {
	var found *User
	err := d.ledger.View(ctx, func(s generic.Store) error {
		u, err := Lookup(ctx, s, id)
		found = u
		return err
	})
	return found, err
}

// Lookup reads one user inside a running ledger Update or View.
func Lookup(ctx context.Context, s generic.Store, id string) (*User, error) {
	users, err := generic.LoadList[User](ctx, s, generic.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, &generic.NotFoundError{Kind: "user", ID: id}
}

// FindByEmail returns the account with email and role.
func (d *Directory) FindByEmail(ctx context.Context, email string, role Role) (*User, error) {
	email = normalizeEmail(email)
	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email && users[i].Role == role {
			return &users[i], nil
		}
	}
	return nil, &generic.NotFoundError{Kind: "user", ID: email}
}

// List returns all users in enrollment order.
func (d *Directory) List(ctx context.Context) ([]User, error) {
	var users []User
	err := d.ledger.View(ctx, func(s generic.Store) error {
		var err error
		users, err = generic.LoadList[User](ctx, s, generic.KeyUsers)
		return err
	})
	return users, err
}

// Search matches q case-insensitively against name and department. An
// empty q returns everyone.
func (d *Directory) Search(ctx context.Context, q string) ([]User, error) {
	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return users, nil
	}
	out := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Department), q) {
			out = append(out, u)
		}
	}
	return out, nil
}

// UpdateProfile changes name, department and position.
func (d *Directory) UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, generic.Invalid("name", "is required")
	}
	var updated User
	err := d.modify(ctx, id, func(u *User) bool {
		u.Name = strings.TrimSpace(in.Name)
		u.Department = in.Department
		u.Position = in.Position
		updated = *u
		return true
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ResetDevice clears id's device binding; the next login binds again.
func (d *Directory) ResetDevice(ctx context.Context, id string) error {
	err := d.modify(ctx, id, func(u *User) bool {
		if u.DeviceID == "" {
			return false
		}
		u.DeviceID = ""
		return true
	})
	if err != nil {
		return err
	}
	notify.Send(ctx, d.notifier, id, notify.Warning, i18n.DeviceReset, nil)
	return nil
}

// BindDevice binds token to id if no device is bound and returns the
// token now bound. An empty token is replaced by a new one.
func (d *Directory) BindDevice(ctx context.Context, id, token string) (string, error) {
	var bound string
	err := d.modify(ctx, id, func(u *User) bool {
		if u.DeviceID != "" {
			bound = u.DeviceID
			return false
		}
		if token == "" {
			token = NewDeviceToken()
		}
		u.DeviceID = token
		bound = token
		return true
	})
	return bound, err
}

// Seed inserts users, replacing any with the same id.
func (d *Directory) Seed(ctx context.Context, seed []User) error {
	return d.ledger.Update(ctx, func(s generic.Store) error {
		users, err := generic.LoadList[User](ctx, s, generic.KeyUsers)
		if err != nil {
			return err
		}
		for _, u := range seed {
			u.Email = normalizeEmail(u.Email)
			replaced := false
			for i := range users {
				if users[i].ID == u.ID {
					users[i] = u
					replaced = true
					break
				}
			}
			if !replaced {
				users = append(users, u)
			}
		}
		return generic.SaveJSON(ctx, s, generic.KeyUsers, users)
	})
}

// modify applies fn to user id and saves when fn reports a change.
func (d *Directory) modify(ctx context.Context, id string, fn func(*User) bool) error {
	return d.ledger.Update(ctx, func(s generic.Store) error {
		users, err := generic.LoadList[User](ctx, s, generic.KeyUsers)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].ID == id {
				if !fn(&users[i]) {
					return nil
				}
				return generic.SaveJSON(ctx, s, generic.KeyUsers, users)
			}
		}
		return &generic.NotFoundError{Kind: "user", ID: id}
	})
}
