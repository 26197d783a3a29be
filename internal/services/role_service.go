package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/store"
)

// RoleService derives, persists and checks wallet roles, and gates every
// privileged mutation in the system.
type RoleService struct {
	roles  store.RoleStore
	owner  string
	logger *zap.Logger
}

func NewRoleService(st *store.Store, ownerAccountID string, logger *zap.Logger) *RoleService {
	return &RoleService{
		roles:  st.Roles,
		owner:  ownerAccountID,
		logger: logger.With(zap.String("service", "role_service")),
	}
}

// OwnerAccountID returns the contract-owner wallet address.
func (rs *RoleService) OwnerAccountID() string {
	return rs.owner
}

// RoleOf resolves the effective role of a wallet. The contract owner is
// admin by construction, before and regardless of storage. Unknown
// wallets are provisioned with the default role on first sight. Storage
// failures for non-owner wallets fail open to the default role.
func (rs *RoleService) RoleOf(ctx context.Context, walletAddress string) (models.Role, error) {
	if walletAddress == rs.owner {
		return models.RoleAdmin, nil
	}
	if walletAddress == "" {
		return "", fmt.Errorf("%w: wallet address is required", ErrValidation)
	}

	assignment, err := rs.roles.ByWallet(ctx, walletAddress)
	switch {
	case err == nil:
		return assignment.Role, nil
	case errors.Is(err, store.ErrNotFound):
		provisioned := &models.RoleAssignment{
			WalletAddress: walletAddress,
			Role:          models.RoleUser,
			AssignedBy:    "system",
			AssignedAt:    time.Now().UTC(),
		}
		if err := rs.roles.Upsert(ctx, provisioned); err != nil {
			rs.logger.Warn("failed to provision default role",
				zap.String("wallet", walletAddress),
				zap.Error(err))
		}
		return models.RoleUser, nil
	default:
		rs.logger.Warn("role lookup failed, defaulting to user",
			zap.String("wallet", walletAddress),
			zap.Error(err))
		return models.RoleUser, nil
	}
}

// HasAtLeastRole reports whether the wallet's effective role ranks at or
// above required.
func (rs *RoleService) HasAtLeastRole(ctx context.Context, walletAddress string, required models.Role) (bool, error) {
	role, err := rs.RoleOf(ctx, walletAddress)
	if err != nil {
		return false, err
	}
	return role.AtLeast(required), nil
}

// AssignRole upserts the role of targetWallet. Only admins may assign
// roles; the owner's admin role is immutable and the policy check runs
// before any storage write.
func (rs *RoleService) AssignRole(ctx context.Context, actorWallet, targetWallet string, newRole models.Role) (*models.RoleAssignment, error) {
	if !newRole.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, newRole)
	}
	if targetWallet == "" {
		return nil, fmt.Errorf("%w: target wallet address is required", ErrValidation)
	}

	isAdmin, err := rs.HasAtLeastRole(ctx, actorWallet, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, fmt.Errorf("%w: role assignment requires admin", ErrNotAuthorized)
	}

	if targetWallet == rs.owner && newRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: contract owner role cannot be changed", ErrPolicy)
	}

	assignment := &models.RoleAssignment{
		WalletAddress: targetWallet,
		Role:          newRole,
		AssignedBy:    actorWallet,
		AssignedAt:    time.Now().UTC(),
	}
	if err := rs.roles.Upsert(ctx, assignment); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	rs.logger.Info("Role assigned",
		zap.String("target", targetWallet),
		zap.String("role", string(newRole)),
		zap.String("assigned_by", actorWallet))
	return assignment, nil
}

// ListRoles returns every stored role assignment.
func (rs *RoleService) ListRoles(ctx context.Context) ([]models.RoleAssignment, error) {
	return rs.roles.List(ctx)
}
