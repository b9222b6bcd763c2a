package personnel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/edutime/generic"
	"github.com/warp/edutime/generic/store"
	"github.com/warp/edutime/i18n"
	"github.com/warp/edutime/notify"
	"github.com/warp/edutime/personnel"
)

type fixture struct {
	dir    *personnel.Directory
	center *notify.Center
}

func newFixture(t *testing.T) fixture {
	tr, err := i18n.New("en")
	require.NoError(t, err)
	clock := generic.FixedClock(time.Date(2024, 1, 10, 7, 30, 0, 0, time.UTC))
	ledger := generic.NewLedger(store.NewTxMemory())
	center := notify.NewCenter(ledger, tr, clock)
	return fixture{dir: personnel.NewDirectory(ledger, center, clock), center: center}
}

func teacher(email string) personnel.Enrollment {
	return personnel.Enrollment{
		Name:         "Arjun Singh",
		Email:        email,
		Password:     "s3cret!",
		Role:         personnel.RoleTeacher,
		Department:   "Mathematics",
		Position:     "Class Teacher",
		EmployeeCode: "EMP-104",
	}
}

func TestEnroll_Teacher(t *testing.T) {
	// GIVEN: A new teacher enrollment with a mixed-case email
	// WHEN: Enrolled
	// THEN: The email is lower-cased, a device is bound, the password is hashed
	//       and the admins are told

	f := newFixture(t)
	ctx := context.Background()

	u, err := f.dir.Enroll(ctx, teacher("Arjun.Singh@School.EDU"))
	require.NoError(t, err)

	assert.Equal(t, "arjun.singh@school.edu", u.Email)
	assert.Regexp(t, `^SEC-[0-9A-Z]{8}$`, u.DeviceID)
	assert.NotEqual(t, "s3cret!", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret!"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.Equal(t, "EMP-104", u.EmployeeCode)
	assert.Equal(t, personnel.NoSubRole, u.AdminSubRole)

	inbox, err := f.center.List(ctx, notify.AdminTarget)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "New Enrollment: TEACHER", inbox[0].Title)
	assert.Equal(t, "Arjun Singh has joined the system.", inbox[0].Message)
}

func TestEnroll_AdminGetsAdministrationDepartment(t *testing.T) {
	f := newFixture(t)

	u, err := f.dir.Enroll(context.Background(), personnel.Enrollment{
		Name:         "Priya Nair",
		Email:        "priya@school.edu",
		Password:     "s3cret!",
		Role:         personnel.RoleAdmin,
		AdminSubRole: personnel.HRManager,
		Department:   "Science",
		OfficeID:     "OFF-7",
	})
	require.NoError(t, err)

	assert.Equal(t, personnel.AdminDepartment, u.Department)
	assert.Equal(t, "HR Manager", u.Position)
	assert.Equal(t, "OFF-7", u.OfficeID)
	assert.True(t, u.IsAdmin())
}

func TestEnroll_AdminWithoutSubRoleIsHRManager(t *testing.T) {
	f := newFixture(t)

	u, err := f.dir.Enroll(context.Background(), personnel.Enrollment{
		Name:     "Dewi Lestari",
		Email:    "dewi@school.edu",
		Password: "s3cret!",
		Role:     personnel.RoleAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, personnel.HRManager, u.AdminSubRole)
	assert.Equal(t, "HR Manager", u.Position)
}

func TestEnroll_DuplicateEmailIgnoresCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.Enroll(ctx, teacher("arjun@school.edu"))
	require.NoError(t, err)

	_, err = f.dir.Enroll(ctx, teacher("ARJUN@school.edu"))
	var vErr *generic.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)

	users, _ := f.dir.List(ctx)
	assert.Len(t, users, 1)
}

func TestEnroll_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*personnel.Enrollment)
		field string
	}{
		{"missing name", func(e *personnel.Enrollment) { e.Name = " " }, "name"},
		{"bad email", func(e *personnel.Enrollment) { e.Email = "nope" }, "email"},
		{"short password", func(e *personnel.Enrollment) { e.Password = "123" }, "password"},
		{"unknown role", func(e *personnel.Enrollment) { e.Role = "JANITOR" }, "role"},
		{"teacher without department", func(e *personnel.Enrollment) { e.Department = "" }, "department"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := teacher("a@school.edu")
			tt.edit(&in)

			_, err := f.dir.Enroll(context.Background(), in)
			var vErr *generic.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.dir.Seed(ctx, []personnel.User{
		{ID: "3", Name: "Dr. Albert Smith", Department: "Science (Physics)", Role: personnel.RoleTeacher},
		{ID: "22", Name: "Mrs. Keith Jones", Department: "Mathematics", Role: personnel.RoleTeacher},
	}))

	got, err := f.dir.Search(ctx, "PHYS")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	got, err = f.dir.Search(ctx, "jones")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "22", got[0].ID)

	got, _ = f.dir.Search(ctx, "")
	assert.Len(t, got, 2)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.dir.Seed(ctx, []personnel.User{{ID: "3", Name: "Dr. Albert Smith", Role: personnel.RoleTeacher}}))

	_, err := f.dir.UpdateProfile(ctx, "3", personnel.ProfileUpdate{Name: ""})
	assert.ErrorIs(t, err, generic.ErrValidation)

	u, err := f.dir.UpdateProfile(ctx, "3", personnel.ProfileUpdate{Name: "Albert Smith", Department: "Physics", Position: "HOD"})
	require.NoError(t, err)
	assert.Equal(t, "Physics", u.Department)

	_, err = f.dir.UpdateProfile(ctx, "missing", personnel.ProfileUpdate{Name: "X"})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestDeviceBinding(t *testing.T) {
	// GIVEN: An enrolled user
	// WHEN: The device is reset, then bound again
	// THEN: The first bind wins and later binds report the bound token

	f := newFixture(t)
	ctx := context.Background()
	u, err := f.dir.Enroll(ctx, teacher("arjun@school.edu"))
	require.NoError(t, err)

	bound, err := f.dir.BindDevice(ctx, u.ID, "SEC-OTHER000")
	require.NoError(t, err)
	assert.Equal(t, u.DeviceID, bound, "already bound")

	require.NoError(t, f.dir.ResetDevice(ctx, u.ID))
	got, _ := f.dir.Get(ctx, u.ID)
	assert.Empty(t, got.DeviceID)

	bound, err = f.dir.BindDevice(ctx, u.ID, "SEC-NEWPHONE")
	require.NoError(t, err)
	assert.Equal(t, "SEC-NEWPHONE", bound)

	inbox, _ := f.center.List(ctx, u.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Device Binding Cleared", inbox[0].Title)

	assert.ErrorIs(t, f.dir.ResetDevice(ctx, "missing"), generic.ErrNotFound)
}

func TestFindByEmail_MatchesRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.dir.Enroll(ctx, teacher("arjun@school.edu"))
	require.NoError(t, err)

	u, err := f.dir.FindByEmail(ctx, "ARJUN@school.edu", personnel.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "Arjun Singh", u.Name)

	_, err = f.dir.FindByEmail(ctx, "arjun@school.edu", personnel.RoleAdmin)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}
