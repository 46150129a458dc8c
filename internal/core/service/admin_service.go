package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/api/metrics"
	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

type adminService struct {
	store ports.Store
	log   zerolog.Logger
}

// NewAdminService returns an AdminService.
func NewAdminService(store ports.Store, log zerolog.Logger) ports.AdminService {
	return &adminService{store: store, log: log}
}

// VerifyUser sets both verified and is_active to approve.
func (s *adminService) VerifyUser(ctx context.Context, sess ports.Session, userID string, approve bool) error {
	if sess.Role() != domain.RoleAdmin {
		return fmt.Errorf("verify user: %w", domain.ErrForbidden)
	}
	if err := s.store.Users().SetVerification(ctx, userID, approve, approve); err != nil {
		return fmt.Errorf("verify user: %w", err)
	}

	metrics.VerificationsTotal.WithLabelValues("user", strconv.FormatBool(approve)).Inc()
	s.log.Info().Str("admin_id", sess.UserID()).Str("user_id", userID).Bool("approved", approve).Msg("user reviewed")
	return nil
}

// VerifyProposal approves a proposal into active or rejects it into closed.
func (s *adminService) VerifyProposal(ctx context.Context, sess ports.Session, proposalID string, approve bool) error {
	if sess.Role() != domain.RoleAdmin {
		return fmt.Errorf("verify proposal: %w", domain.ErrForbidden)
	}
	status := domain.VerificationStatus(approve)
	if err := s.store.Proposals().SetVerification(ctx, proposalID, approve, status); err != nil {
		return fmt.Errorf("verify proposal: %w", err)
	}

	metrics.VerificationsTotal.WithLabelValues("proposal", strconv.FormatBool(approve)).Inc()
	s.log.Info().
		Str("admin_id", sess.UserID()).
		Str("proposal_id", proposalID).
		Str("status", string(status)).
		Msg("proposal reviewed")
	return nil
}
