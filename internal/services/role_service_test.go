package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/store"
	"github.com/devprosvn/devpros-achievo/internal/store/memstore"
)

// brokenRoleStore fails every operation, standing in for an unreachable
// database.
type brokenRoleStore struct{}

var errBackendDown = errors.New("backend down")

func (brokenRoleStore) ByWallet(context.Context, string) (*models.RoleAssignment, error) {
	return nil, errBackendDown
}

func (brokenRoleStore) Upsert(context.Context, *models.RoleAssignment) error {
	return errBackendDown
}

func (brokenRoleStore) List(context.Context) ([]models.RoleAssignment, error) {
	return nil, errBackendDown
}

func newRoleTestService() (*RoleService, *store.Store) {
	st := memstore.New()
	return NewRoleService(st, testOwner, zap.NewNop()), st
}

func TestOwnerIsAlwaysAdmin(t *testing.T) {
	ctx := context.Background()

	// Storage failures must not touch the owner's role.
	svc := NewRoleService(&store.Store{Roles: brokenRoleStore{}}, testOwner, zap.NewNop())

	role, err := svc.RoleOf(ctx, testOwner)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, role)

	allowed, err := svc.HasAtLeastRole(ctx, testOwner, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestRoleLookupFailsOpen(t *testing.T) {
	svc := NewRoleService(&store.Store{Roles: brokenRoleStore{}}, testOwner, zap.NewNop())

	role, err := svc.RoleOf(context.Background(), "alice.testnet")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, role)
}

func TestRoleOfProvisionsDefault(t *testing.T) {
	ctx := context.Background()
	svc, st := newRoleTestService()

	role, err := svc.RoleOf(ctx, "alice.testnet")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, role)

	stored, err := st.Roles.ByWallet(ctx, "alice.testnet")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, stored.Role)
	require.Equal(t, "system", stored.AssignedBy)
}

func TestRoleOfRequiresWallet(t *testing.T) {
	svc, _ := newRoleTestService()

	_, err := svc.RoleOf(context.Background(), "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()
	svc, st := newRoleTestService()

	assignment, err := svc.AssignRole(ctx, testOwner, "org.testnet", models.RoleOrgVerifier)
	require.NoError(t, err)
	require.Equal(t, models.RoleOrgVerifier, assignment.Role)
	require.Equal(t, testOwner, assignment.AssignedBy)

	stored, err := st.Roles.ByWallet(ctx, "org.testnet")
	require.NoError(t, err)
	require.Equal(t, models.RoleOrgVerifier, stored.Role)

	role, err := svc.RoleOf(ctx, "org.testnet")
	require.NoError(t, err)
	require.Equal(t, models.RoleOrgVerifier, role)
}

func TestAssignRoleRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc, st := newRoleTestService()

	_, err := svc.AssignRole(ctx, "stranger.testnet", "alice.testnet", models.RoleModerator)
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = st.Roles.ByWallet(ctx, "alice.testnet")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAssignRoleOwnerIsImmutable(t *testing.T) {
	ctx := context.Background()
	svc, st := newRoleTestService()

	_, err := svc.AssignRole(ctx, testOwner, testOwner, models.RoleUser)
	require.ErrorIs(t, err, ErrPolicy)

	// The policy check runs before any write.
	_, err = st.Roles.ByWallet(ctx, testOwner)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Re-asserting admin on the owner is allowed.
	_, err = svc.AssignRole(ctx, testOwner, testOwner, models.RoleAdmin)
	require.NoError(t, err)
}

func TestAssignRoleValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoleTestService()

	_, err := svc.AssignRole(ctx, testOwner, "alice.testnet", models.Role("superuser"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.AssignRole(ctx, testOwner, "", models.RoleModerator)
	require.ErrorIs(t, err, ErrValidation)
}

func TestHasAtLeastRoleHierarchy(t *testing.T) {
	ctx := context.Background()
	svc, st := newRoleTestService()

	require.NoError(t, st.Roles.Upsert(ctx, &models.RoleAssignment{
		WalletAddress: "mod.testnet",
		Role:          models.RoleModerator,
	}))

	cases := []struct {
		required models.Role
		want     bool
	}{
		{models.RoleUser, true},
		{models.RoleOrgVerifier, true},
		{models.RoleModerator, true},
		{models.RoleAdmin, false},
	}
	for _, tc := range cases {
		got, err := svc.HasAtLeastRole(ctx, "mod.testnet", tc.required)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "required %s", tc.required)
	}
}
