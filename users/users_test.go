package users_test

import (
	"testing"

	"github.com/jrsteele09/rxadmin/users"
	fakeuserrepo "github.com/jrsteele09/rxadmin/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestRoleSections(t *testing.T) {
	t.Run("super admin", func(t *testing.T) {
		u := &users.User{Role: users.RoleSuperAdmin}
		require.True(t, u.IsSuperAdmin())
		require.True(t, u.CanAccess(users.SectionCompanies))
		require.True(t, u.CanAccess(users.SectionSupport))
		require.True(t, u.CanAccess(users.SectionOrders))
		require.False(t, u.CanAccess(users.SectionMedicationOfferings))
	})

	t.Run("company admin", func(t *testing.T) {
		u := &users.User{Role: users.RoleCompanyAdmin, CompanyID: "c1"}
		require.False(t, u.IsSuperAdmin())
		require.False(t, u.CanAccess(users.SectionCompanies))
		require.True(t, u.CanAccess(users.SectionMedicationOfferings))
		require.True(t, u.CanAccess(users.SectionPatients))
		require.Equal(t, "c1", u.Tenant())
	})

	t.Run("no user", func(t *testing.T) {
		var u *users.User
		require.False(t, u.IsSuperAdmin())
		require.False(t, u.CanAccess(users.SectionDashboard))
	})

	t.Run("unknown role", func(t *testing.T) {
		require.Empty(t, users.Role("GUEST").Sections())
		require.False(t, users.Role("GUEST").Valid())
	})
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Jane Doe", (&users.User{FirstName: "Jane", LastName: "Doe"}).DisplayName())
	require.Equal(t, "jane@example.com", (&users.User{Email: "jane@example.com"}).DisplayName())
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Passw0rdX"))
	require.ErrorContains(t, users.ValidatePasswordStrength("short1A"), "at least 8")
	require.ErrorContains(t, users.ValidatePasswordStrength("password1"), "uppercase")
	require.ErrorContains(t, users.ValidatePasswordStrength("PASSWORD1"), "lowercase")
	require.ErrorContains(t, users.ValidatePasswordStrength("Passwordx"), "number")
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("admin123")
	require.NoError(t, err)
	require.True(t, users.CheckPasswordHash("admin123", hash))
	require.False(t, users.CheckPasswordHash("admin124", hash))
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, repo.Upsert(&users.Account{User: users.User{Email: "B@example.com", Role: users.RoleCompanyAdmin}}))
	require.NoError(t, repo.Upsert(&users.Account{User: users.User{Email: "a@example.com", Role: users.RoleSuperAdmin}}))

	a, err := repo.GetByEmail("b@EXAMPLE.com")
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)

	byID, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	require.Equal(t, a, byID)

	require.NoError(t, repo.SetBlocked("b@example.com", true))
	require.False(t, a.Blocked, "callers hold copies")
	blocked, err := repo.GetByID(a.ID)
	require.NoError(t, err)
	require.True(t, blocked.Blocked)

	all, err := repo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "B@example.com", all[0].Email)

	page, err := repo.List(1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)

	empty, err := repo.List(5, 10)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = repo.GetByEmail("missing@example.com")
	require.Error(t, err)
}
