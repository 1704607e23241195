package service

import (
	"context"
	"testing"
	"time"

	"hydrosense-data/internal/domain"

	"github.com/stretchr/testify/require"
)

func newInvitationTestEnv(t *testing.T) (*testEnv, *InvitationService) {
	env := newTestEnv(t)
	svc := NewInvitationService(env.repos.Invitations, env.repos.HouseholdUsers, env.repos.Users, env.uow, 0, testLogger())
	return env, svc
}

func TestInviteRequiresAdmin(t *testing.T) {
	env, svc := newInvitationTestEnv(t)
	adminID := env.seedUser(t, "admin@example.com", "pw")
	memberID := env.seedUser(t, "member@example.com", "pw")
	householdID := env.seedHousehold(t, adminID, 2)
	ctx := context.Background()
	require.NoError(t, env.repos.HouseholdUsers.AddMember(ctx, &domain.HouseholdUser{
		HouseholdID: householdID, UserID: memberID, Role: domain.RoleMember,
	}))

	_, err := svc.Invite(ctx, memberID, InviteRequest{HouseholdID: householdID, InvitedEmail: "new@example.com"})
	requireErrorKind(t, err, domain.ErrKindForbidden)

	inv, err := svc.Invite(ctx, adminID, InviteRequest{HouseholdID: householdID, InvitedEmail: "new@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, inv.Token)
	require.Equal(t, domain.InvitationPending, inv.Status)
	require.True(t, inv.ExpiresAt.After(time.Now()))

	_, err = svc.Invite(ctx, adminID, InviteRequest{HouseholdID: householdID, InvitedEmail: "not-an-email"})
	requireErrorKind(t, err, domain.ErrKindBadRequest)
}

func TestAcceptInvitationAddsMember(t *testing.T) {
	env, svc := newInvitationTestEnv(t)
	adminID := env.seedUser(t, "admin@example.com", "pw")
	inviteeID := env.seedUser(t, "new@example.com", "pw")
	householdID := env.seedHousehold(t, adminID, 2)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, adminID, InviteRequest{HouseholdID: householdID, InvitedEmail: "new@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, inviteeID, inv.Token))

	m, err := env.repos.HouseholdUsers.GetMembership(ctx, householdID, inviteeID)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, domain.RoleMember, m.Role)

	stored, err := env.repos.Invitations.GetInvitation(ctx, inv.InvitationID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, stored.Status)

	// 状态已迁移，重复接受被拒绝
	requireErrorKind(t, svc.Accept(ctx, inviteeID, inv.Token), domain.ErrKindBadRequest)
}

func TestAcceptInvitationWrongEmail(t *testing.T) {
	env, svc := newInvitationTestEnv(t)
	adminID := env.seedUser(t, "admin@example.com", "pw")
	otherID := env.seedUser(t, "other@example.com", "pw")
	householdID := env.seedHousehold(t, adminID, 2)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, adminID, InviteRequest{HouseholdID: householdID, InvitedEmail: "new@example.com"})
	require.NoError(t, err)

	// 受邀邮箱与当前用户不符：拒绝且不产生成员
	requireErrorKind(t, svc.Accept(ctx, otherID, inv.Token), domain.ErrKindForbidden)
	m, err := env.repos.HouseholdUsers.GetMembership(ctx, householdID, otherID)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestAcceptExpiredInvitation(t *testing.T) {
	env, svc := newInvitationTestEnv(t)
	adminID := env.seedUser(t, "admin@example.com", "pw")
	inviteeID := env.seedUser(t, "new@example.com", "pw")
	householdID := env.seedHousehold(t, adminID, 2)
	ctx := context.Background()

	_, err := env.repos.Invitations.CreateInvitation(ctx, &domain.HouseholdInvitation{
		HouseholdID:  householdID,
		InvitedEmail: "new@example.com",
		InviterID:    adminID,
		Token:        "expired-token",
		Status:       domain.InvitationPending,
		ExpiresAt:    time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	requireErrorKind(t, svc.Accept(ctx, inviteeID, "expired-token"), domain.ErrKindBadRequest)

	m, err := env.repos.HouseholdUsers.GetMembership(ctx, householdID, inviteeID)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestDeclineInvitation(t *testing.T) {
	env, svc := newInvitationTestEnv(t)
	adminID := env.seedUser(t, "admin@example.com", "pw")
	inviteeID := env.seedUser(t, "new@example.com", "pw")
	householdID := env.seedHousehold(t, adminID, 2)
	ctx := context.Background()

	inv, err := svc.Invite(ctx, adminID, InviteRequest{HouseholdID: householdID, InvitedEmail: "new@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Decline(ctx, inviteeID, inv.Token))

	stored, err := env.repos.Invitations.GetInvitation(ctx, inv.InvitationID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationDeclined, stored.Status)

	m, err := env.repos.HouseholdUsers.GetMembership(ctx, householdID, inviteeID)
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestListInvitationsExpiresStale(t *testing.T) {
	env, svc := newInvitationTestEnv(t)
	adminID := env.seedUser(t, "admin@example.com", "pw")
	householdID := env.seedHousehold(t, adminID, 2)
	ctx := context.Background()

	_, err := env.repos.Invitations.CreateInvitation(ctx, &domain.HouseholdInvitation{
		HouseholdID:  householdID,
		InvitedEmail: "stale@example.com",
		InviterID:    adminID,
		Token:        "stale-token",
		Status:       domain.InvitationPending,
		ExpiresAt:    time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	items, err := svc.ListInvitations(ctx, adminID, householdID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, domain.InvitationExpired, items[0].Status)
}
