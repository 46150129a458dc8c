package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// Row types map the external tables one to one. Numeric columns are nullable.

type userRow struct {
	ID        string `gorm:"primaryKey;type:text"`
	FullName  string
	Email     string
	Role      string
	Verified  bool
	IsActive  bool
	CreatedAt time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		FullName:  r.FullName,
		Email:     r.Email,
		Role:      domain.Role(r.Role),
		Verified:  r.Verified,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}

func userRef(r *userRow) *domain.UserRef {
	if r == nil {
		return nil
	}
	return &domain.UserRef{ID: r.ID, FullName: r.FullName, Email: r.Email}
}

type proposalRow struct {
	ID              string `gorm:"primaryKey;type:text"`
	UserID          string `gorm:"index"`
	Title           string
	Tagline         string
	Category        string
	Location        string
	AmountNeeded    decimal.NullDecimal `gorm:"type:numeric"`
	EquityOffered   decimal.NullDecimal `gorm:"type:numeric"`
	FundingReceived decimal.NullDecimal `gorm:"type:numeric"`
	Status          string
	Verified        bool
	SuccessScore    int
	CreatedAt       time.Time

	Owner *userRow `gorm:"foreignKey:UserID"`
}

func (proposalRow) TableName() string { return "proposals" }

func (r proposalRow) toDomain() domain.Proposal {
	return domain.Proposal{
		ID:              r.ID,
		OwnerID:         r.UserID,
		Title:           r.Title,
		Tagline:         r.Tagline,
		Category:        r.Category,
		Location:        r.Location,
		AmountNeeded:    r.AmountNeeded,
		EquityOffered:   r.EquityOffered,
		FundingReceived: r.FundingReceived,
		Status:          domain.ProposalStatus(r.Status),
		Verified:        r.Verified,
		SuccessScore:    r.SuccessScore,
		CreatedAt:       r.CreatedAt,
	}
}

func proposalRef(r *proposalRow) *domain.ProposalRef {
	if r == nil {
		return nil
	}
	return &domain.ProposalRef{ID: r.ID, Title: r.Title, Owner: userRef(r.Owner)}
}

type offerRow struct {
	ID               string              `gorm:"primaryKey;type:text"`
	ProposalID       string              `gorm:"index"`
	InvestorID       string              `gorm:"index"`
	Amount           decimal.NullDecimal `gorm:"type:numeric"`
	EquityPercentage decimal.NullDecimal `gorm:"type:numeric"`
	Valuation        decimal.NullDecimal `gorm:"type:numeric"`
	Message          string
	Status           string
	CreatedAt        time.Time
	AcceptedAt       *time.Time

	Proposal *proposalRow `gorm:"foreignKey:ProposalID"`
	Investor *userRow     `gorm:"foreignKey:InvestorID"`
}

func (offerRow) TableName() string { return "offers" }

func (r offerRow) toDomain() domain.Offer {
	return domain.Offer{
		ID:               r.ID,
		ProposalID:       r.ProposalID,
		InvestorID:       r.InvestorID,
		Amount:           r.Amount,
		EquityPercentage: r.EquityPercentage,
		Valuation:        r.Valuation,
		Message:          r.Message,
		Status:           domain.OfferStatus(r.Status),
		CreatedAt:        r.CreatedAt,
		AcceptedAt:       r.AcceptedAt,
	}
}

func (r offerRow) withParties() domain.OfferWithParties {
	return domain.OfferWithParties{Offer: r.toDomain(), Proposal: proposalRef(r.Proposal), Investor: userRef(r.Investor)}
}

type dealRow struct {
	ID               string `gorm:"primaryKey;type:text"`
	OfferID          string `gorm:"uniqueIndex"`
	ProposalID       string
	EntrepreneurID   string              `gorm:"index"`
	InvestorID       string              `gorm:"index"`
	InvestmentAmount decimal.NullDecimal `gorm:"type:numeric"`
	EquityPercentage decimal.NullDecimal `gorm:"type:numeric"`
	DealStatus       string
	DealDate         time.Time

	Proposal     *proposalRow `gorm:"foreignKey:ProposalID"`
	Investor     *userRow     `gorm:"foreignKey:InvestorID"`
	Entrepreneur *userRow     `gorm:"foreignKey:EntrepreneurID"`
}

func (dealRow) TableName() string { return "deals" }

func newDealRow(d *domain.Deal) *dealRow {
	return &dealRow{
		ID:               d.ID,
		OfferID:          d.OfferID,
		ProposalID:       d.ProposalID,
		EntrepreneurID:   d.EntrepreneurID,
		InvestorID:       d.InvestorID,
		InvestmentAmount: d.InvestmentAmount,
		EquityPercentage: d.EquityPercentage,
		DealStatus:       d.Status,
		DealDate:         d.DealDate,
	}
}

func (r dealRow) toDomain() domain.Deal {
	return domain.Deal{
		ID:               r.ID,
		OfferID:          r.OfferID,
		ProposalID:       r.ProposalID,
		EntrepreneurID:   r.EntrepreneurID,
		InvestorID:       r.InvestorID,
		InvestmentAmount: r.InvestmentAmount,
		EquityPercentage: r.EquityPercentage,
		Status:           r.DealStatus,
		DealDate:         r.DealDate,
	}
}

func (r dealRow) withParties() domain.DealWithParties {
	return domain.DealWithParties{
		Deal:         r.toDomain(),
		Proposal:     proposalRef(r.Proposal),
		Investor:     userRef(r.Investor),
		Entrepreneur: userRef(r.Entrepreneur),
	}
}

type notificationRow struct {
	ID        string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"index"`
	Title     string
	Message   string
	Type      string
	Link      string
	Read      bool
	CreatedAt time.Time
}

func (notificationRow) TableName() string { return "notifications" }

func newNotificationRow(n *domain.Notification) *notificationRow {
	return &notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (r notificationRow) toDomain() domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Message:   r.Message,
		Type:      r.Type,
		Link:      r.Link,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

type fundingLogRow struct {
	ID          string `gorm:"primaryKey;type:text"`
	ProposalID  string
	InvestorID  string
	Amount      decimal.NullDecimal `gorm:"type:numeric"`
	EquityGiven decimal.NullDecimal `gorm:"type:numeric"`
	CreatedAt   time.Time
}

func (fundingLogRow) TableName() string { return "funding_logs" }

// models lists every row type for AutoMigrate.
func models() []any {
	return []any{&userRow{}, &proposalRow{}, &offerRow{}, &dealRow{}, &notificationRow{}, &fundingLogRow{}}
}
