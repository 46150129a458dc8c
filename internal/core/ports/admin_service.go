package ports

import "context"

// AdminService applies admin review decisions.
type AdminService interface {
	VerifyUser(ctx context.Context, sess Session, userID string, approve bool) error
	VerifyProposal(ctx context.Context, sess Session, proposalID string, approve bool) error
}
