package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: RoleAdmin},
		{in: " ADMIN ", want: RoleAdmin},
		{in: "secretaria", want: RoleSecretary},
		{in: "coach", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidRole, "input %q", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestRoleCapabilities(t *testing.T) {
	all := []Capability{RegisterVisitors, ViewVisitors, UpdateVisitorStatus, LookupCEP, DeleteVisitors, ExportVisitors, ViewDashboard, ManageUsers, RunBackfill}
	for _, c := range all {
		assert.True(t, RoleAdmin.Can(c), "admin should %s", c)
	}

	secretaryAllowed := map[Capability]bool{RegisterVisitors: true, ViewVisitors: true, UpdateVisitorStatus: true, LookupCEP: true}
	for _, c := range all {
		assert.Equal(t, secretaryAllowed[c], RoleSecretary.Can(c), "secretaria %s", c)
	}

	assert.False(t, Role("guest").Can(ViewVisitors))
	assert.False(t, RoleAdmin.Can(Capability(999)))
}

func TestNilSessionGrantsNothing(t *testing.T) {
	var s *Session
	assert.False(t, s.Can(ViewVisitors))
	assert.True(t, s.Expired(time.Now()))
}

func TestAttachAndFrom(t *testing.T) {
	assert.Nil(t, From(context.Background()))

	s := &Session{UserID: "u1", Role: RoleSecretary}
	ctx := Attach(context.Background(), s)
	assert.Same(t, s, From(ctx))
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	issued, err := issuer.Issue("user-1", "Maria", RoleSecretary)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)

	parsed, err := issuer.Parse(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.UserID)
	assert.Equal(t, "Maria", parsed.Name)
	assert.Equal(t, RoleSecretary, parsed.Role)
	assert.WithinDuration(t, issued.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	other := NewIssuer("other-secret", time.Hour)

	foreign, err := other.Issue("user-1", "Maria", RoleAdmin)
	require.NoError(t, err)
	_, err = issuer.Parse(foreign.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	past := time.Now().Add(-2 * time.Hour)
	issuer.now = func() time.Time { return past }
	stale, err := issuer.Issue("user-1", "Maria", RoleAdmin)
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.Parse(stale.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLanding(t *testing.T) {
	assert.Equal(t, "/dashboard", RoleAdmin.Landing())
	assert.Equal(t, "/visitantes/novo", RoleSecretary.Landing())
}
