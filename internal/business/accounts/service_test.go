package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/acolhimento-gf/visitantes-api/internal/repository"
	"github.com/acolhimento-gf/visitantes-api/internal/repository/memstore"
	"github.com/acolhimento-gf/visitantes-api/internal/session"
)

func newTestService(t *testing.T) (*Service, *session.Issuer) {
	t.Helper()
	issuer := session.NewIssuer("test-secret", 0)
	svc := NewService(memstore.NewUserStore(), issuer, nil)
	svc.cost = bcrypt.MinCost
	return svc, issuer
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newTestService(t)

	u, err := svc.CreateUser(ctx, UserInput{Nome: " Maria ", Email: "Maria@Igreja.org", Role: "secretaria", Password: "segredo1"})
	require.NoError(t, err)
	assert.Equal(t, "Maria", u.Nome)
	assert.Equal(t, "maria@igreja.org", u.Email)
	assert.NotEqual(t, "segredo1", u.PasswordHash)

	res, err := svc.Login(ctx, "MARIA@igreja.org ", "segredo1")
	require.NoError(t, err)
	assert.Equal(t, "secretaria", res.Role)
	assert.Equal(t, "/visitantes/novo", res.Landing)

	sess, err := issuer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.True(t, sess.Can(session.RegisterVisitors))
	assert.False(t, sess.Can(session.ViewDashboard))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.CreateUser(ctx, UserInput{Nome: "Admin", Email: "admin@igreja.org", Role: "admin", Password: "segredo1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin@igreja.org", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ninguem@igreja.org", "segredo1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cases := []struct {
		name string
		in   UserInput
	}{
		{"missing name", UserInput{Email: "a@b.com", Role: "admin", Password: "123456"}},
		{"bad email", UserInput{Nome: "A", Email: "nope", Role: "admin", Password: "123456"}},
		{"bad role", UserInput{Nome: "A", Email: "a@b.com", Role: "pastor", Password: "123456"}},
		{"short password", UserInput{Nome: "A", Email: "a@b.com", Role: "admin", Password: "12345"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tc.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	in := UserInput{Nome: "A", Email: "a@b.com", Role: "admin", Password: "123456"}
	_, err := svc.CreateUser(ctx, in)
	require.NoError(t, err)

	in.Email = "A@B.com"
	_, err = svc.CreateUser(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a, err := svc.CreateUser(ctx, UserInput{Nome: "A", Email: "a@b.com", Role: "secretaria", Password: "123456"})
	require.NoError(t, err)
	b, err := svc.CreateUser(ctx, UserInput{Nome: "B", Email: "b@b.com", Role: "secretaria", Password: "123456"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, a.ID, UserInput{Nome: "A2", Email: "a@b.com", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", updated.Role)
	assert.Equal(t, a.PasswordHash, updated.PasswordHash, "blank password keeps the hash")

	_, err = svc.UpdateUser(ctx, a.ID, UserInput{Nome: "A2", Email: "a@b.com", Role: "admin", Password: "novasenha"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "a@b.com", "novasenha")
	assert.NoError(t, err)

	_, err = svc.UpdateUser(ctx, b.ID, UserInput{Nome: "B", Email: "a@b.com", Role: "secretaria"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.UpdateUser(ctx, "missing", UserInput{Nome: "X", Email: "x@b.com", Role: "admin"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	u, err := svc.CreateUser(ctx, UserInput{Nome: "A", Email: "a@b.com", Role: "admin", Password: "123456"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteUser(ctx, u.ID, u.ID), ErrSelfDelete)
	require.NoError(t, svc.DeleteUser(ctx, "other-admin", u.ID))
	assert.ErrorIs(t, svc.DeleteUser(ctx, "other-admin", u.ID), repository.ErrNotFound)
}

func TestResolveFollowsStoredUser(t *testing.T) {
	ctx := context.Background()
	svc, issuer := newTestService(t)

	u, err := svc.CreateUser(ctx, UserInput{Nome: "Admin", Email: "admin@igreja.org", Role: "admin", Password: "segredo1"})
	require.NoError(t, err)
	sess, err := issuer.Issue(u.ID, u.Nome, session.RoleAdmin)
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, resolved.Role)

	_, err = svc.UpdateUser(ctx, u.ID, UserInput{Nome: "Ana", Email: "admin@igreja.org", Role: "secretaria"})
	require.NoError(t, err)
	resolved, err = svc.Resolve(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, session.RoleSecretary, resolved.Role)
	assert.Equal(t, "Ana", resolved.Name)
	assert.Equal(t, session.RoleAdmin, sess.Role, "parsed session is not mutated")

	require.NoError(t, svc.DeleteUser(ctx, "someone-else", u.ID))
	_, err = svc.Resolve(ctx, sess)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}
