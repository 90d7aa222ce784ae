package sqlitepersister_test

import (
	"path/filepath"
	"testing"

	"github.com/jrsteele09/rxadmin/session"
	"github.com/jrsteele09/rxadmin/session/sqlitepersister"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/stretchr/testify/require"
)

func TestPersister(t *testing.T) {
	p, err := sqlitepersister.New(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	_, err = p.Load("auth-storage")
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, p.Save("auth-storage", []byte("one")))
	require.NoError(t, p.Save("auth-storage", []byte("two")))

	data, err := p.Load("auth-storage")
	require.NoError(t, err)
	require.Equal(t, "two", string(data))

	require.NoError(t, p.Remove("auth-storage"))
	require.ErrorIs(t, p.Remove("auth-storage"), session.ErrNotFound)
}

func TestPersister_RestoresStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	p, err := sqlitepersister.New(path)
	require.NoError(t, err)

	store := session.NewStore(p, session.DefaultKey)
	store.SetSession(&users.User{ID: "u1", Role: users.RoleCompanyAdmin, Email: "c@example.com"}, "A1", "R1")
	require.NoError(t, p.Close())

	reopened, err := sqlitepersister.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	restored := session.NewStore(reopened, session.DefaultKey)
	require.True(t, restored.IsAuthenticated())
	require.Equal(t, "R1", restored.RefreshToken())
	require.Equal(t, users.RoleCompanyAdmin, restored.User().Role)
}
