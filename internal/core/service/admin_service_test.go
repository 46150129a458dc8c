package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/microsharks/dealroom/internal/core/domain"
)

func TestVerifyUser(t *testing.T) {
	m := seed()
	svc := NewAdminService(m, zerolog.Nop())

	if err := svc.VerifyUser(context.Background(), session(m, "adm-1"), "new-1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u := m.users["new-1"]; !u.Verified || !u.IsActive {
		t.Errorf("user should be verified and active: %+v", u)
	}

	if err := svc.VerifyUser(context.Background(), session(m, "adm-1"), "new-1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u := m.users["new-1"]; u.Verified || u.IsActive {
		t.Errorf("rejected user should be unverified and inactive: %+v", u)
	}

	if err := svc.VerifyUser(context.Background(), session(m, "adm-1"), "ghost", true); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestVerifyProposal(t *testing.T) {
	m := seed()
	svc := NewAdminService(m, zerolog.Nop())
	sess := session(m, "adm-1")

	if err := svc.VerifyProposal(context.Background(), sess, "prop-2", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := m.proposals["prop-2"]; !p.Verified || p.Status != domain.ProposalActive {
		t.Errorf("approved proposal should be verified and active: %+v", p)
	}

	if err := svc.VerifyProposal(context.Background(), sess, "prop-2", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := m.proposals["prop-2"]; p.Verified || p.Status != domain.ProposalClosed {
		t.Errorf("rejected proposal should be unverified and closed: %+v", p)
	}
}

func TestAdminActions_RequireAdmin(t *testing.T) {
	m := seed()
	svc := NewAdminService(m, zerolog.Nop())

	if err := svc.VerifyUser(context.Background(), session(m, "ent-1"), "new-1", true); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.VerifyProposal(context.Background(), session(m, "inv-1"), "prop-2", true); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if m.users["new-1"].Verified || m.proposals["prop-2"].Verified {
		t.Error("nothing should change without admin role")
	}
}
