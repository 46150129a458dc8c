package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/microsharks/dealroom/internal/core/domain"
)

// Collection names match the external schema's table names.
const (
	collectionUsers         = "users"
	collectionProposals     = "proposals"
	collectionOffers        = "offers"
	collectionDeals         = "deals"
	collectionNotifications = "notifications"
	collectionFundingLogs   = "funding_logs"
)

// Numeric columns are stored as Decimal128 and may be absent or null.

func fromDecimal128(p *primitive.Decimal128) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	bi, exp, err := p.BigInt()
	if err != nil {
		// NaN and infinities
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromBigInt(bi, int32(exp)))
}

func toDecimal128(d decimal.NullDecimal) (*primitive.Decimal128, error) {
	if !d.Valid {
		return nil, nil
	}
	v, ok := primitive.ParseDecimal128FromBigInt(d.Decimal.Coefficient(), int(d.Decimal.Exponent()))
	if !ok {
		return nil, fmt.Errorf("amount %s does not fit decimal128", d.Decimal)
	}
	return &v, nil
}

type userDoc struct {
	ID        string    `bson:"_id"`
	FullName  string    `bson:"full_name"`
	Email     string    `bson:"email"`
	Role      string    `bson:"role"`
	Verified  bool      `bson:"verified"`
	IsActive  bool      `bson:"is_active"`
	CreatedAt time.Time `bson:"created_at"`
}

// toDomain keeps an unrecognised role as stored; SwitchRole rejects it later.
func (d userDoc) toDomain() domain.User {
	return domain.User{
		ID:        d.ID,
		FullName:  d.FullName,
		Email:     d.Email,
		Role:      domain.Role(d.Role),
		Verified:  d.Verified,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
	}
}

func (d userDoc) ref() *domain.UserRef {
	return &domain.UserRef{ID: d.ID, FullName: d.FullName, Email: d.Email}
}

type proposalDoc struct {
	ID              string                `bson:"_id"`
	UserID          string                `bson:"user_id"`
	Title           string                `bson:"title"`
	Tagline         string                `bson:"tagline,omitempty"`
	Category        string                `bson:"category,omitempty"`
	Location        string                `bson:"location,omitempty"`
	AmountNeeded    *primitive.Decimal128 `bson:"amount_needed"`
	EquityOffered   *primitive.Decimal128 `bson:"equity_offered"`
	FundingReceived *primitive.Decimal128 `bson:"funding_received"`
	Status          string                `bson:"status"`
	Verified        bool                  `bson:"verified"`
	SuccessScore    int                   `bson:"success_score"`
	CreatedAt       time.Time             `bson:"created_at"`
}

func (d proposalDoc) toDomain() domain.Proposal {
	return domain.Proposal{
		ID:              d.ID,
		OwnerID:         d.UserID,
		Title:           d.Title,
		Tagline:         d.Tagline,
		Category:        d.Category,
		Location:        d.Location,
		AmountNeeded:    fromDecimal128(d.AmountNeeded),
		EquityOffered:   fromDecimal128(d.EquityOffered),
		FundingReceived: fromDecimal128(d.FundingReceived),
		Status:          domain.ProposalStatus(d.Status),
		Verified:        d.Verified,
		SuccessScore:    d.SuccessScore,
		CreatedAt:       d.CreatedAt,
	}
}

type offerDoc struct {
	ID               string                `bson:"_id"`
	ProposalID       string                `bson:"proposal_id"`
	InvestorID       string                `bson:"investor_id"`
	Amount           *primitive.Decimal128 `bson:"amount"`
	EquityPercentage *primitive.Decimal128 `bson:"equity_percentage"`
	Valuation        *primitive.Decimal128 `bson:"valuation"`
	Message          string                `bson:"message,omitempty"`
	Status           string                `bson:"status"`
	CreatedAt        time.Time             `bson:"created_at"`
	AcceptedAt       *time.Time            `bson:"accepted_at,omitempty"`
}

func (d offerDoc) toDomain() domain.Offer {
	return domain.Offer{
		ID:               d.ID,
		ProposalID:       d.ProposalID,
		InvestorID:       d.InvestorID,
		Amount:           fromDecimal128(d.Amount),
		EquityPercentage: fromDecimal128(d.EquityPercentage),
		Valuation:        fromDecimal128(d.Valuation),
		Message:          d.Message,
		Status:           domain.OfferStatus(d.Status),
		CreatedAt:        d.CreatedAt,
		AcceptedAt:       d.AcceptedAt,
	}
}

type dealDoc struct {
	ID               string                `bson:"_id"`
	OfferID          string                `bson:"offer_id"`
	ProposalID       string                `bson:"proposal_id"`
	EntrepreneurID   string                `bson:"entrepreneur_id"`
	InvestorID       string                `bson:"investor_id"`
	InvestmentAmount *primitive.Decimal128 `bson:"investment_amount"`
	EquityPercentage *primitive.Decimal128 `bson:"equity_percentage"`
	DealStatus       string                `bson:"deal_status"`
	DealDate         time.Time             `bson:"deal_date"`
}

func newDealDoc(d *domain.Deal) (*dealDoc, error) {
	amount, err := toDecimal128(d.InvestmentAmount)
	if err != nil {
		return nil, err
	}
	equity, err := toDecimal128(d.EquityPercentage)
	if err != nil {
		return nil, err
	}
	return &dealDoc{
		ID:               d.ID,
		OfferID:          d.OfferID,
		ProposalID:       d.ProposalID,
		EntrepreneurID:   d.EntrepreneurID,
		InvestorID:       d.InvestorID,
		InvestmentAmount: amount,
		EquityPercentage: equity,
		DealStatus:       d.Status,
		DealDate:         d.DealDate,
	}, nil
}

func (d dealDoc) toDomain() domain.Deal {
	return domain.Deal{
		ID:               d.ID,
		OfferID:          d.OfferID,
		ProposalID:       d.ProposalID,
		EntrepreneurID:   d.EntrepreneurID,
		InvestorID:       d.InvestorID,
		InvestmentAmount: fromDecimal128(d.InvestmentAmount),
		EquityPercentage: fromDecimal128(d.EquityPercentage),
		Status:           d.DealStatus,
		DealDate:         d.DealDate,
	}
}

type notificationDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	Type      string    `bson:"type"`
	Link      string    `bson:"link,omitempty"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"created_at"`
}

func newNotificationDoc(n *domain.Notification) notificationDoc {
	return notificationDoc{
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

func (d notificationDoc) toDomain() domain.Notification {
	return domain.Notification{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		Message:   d.Message,
		Type:      d.Type,
		Link:      d.Link,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

type fundingLogDoc struct {
	ID          string                `bson:"_id"`
	ProposalID  string                `bson:"proposal_id"`
	InvestorID  string                `bson:"investor_id"`
	Amount      *primitive.Decimal128 `bson:"amount"`
	EquityGiven *primitive.Decimal128 `bson:"equity_given"`
	CreatedAt   time.Time             `bson:"created_at"`
}

func newFundingLogDoc(l *domain.FundingLog) (*fundingLogDoc, error) {
	amount, err := toDecimal128(l.Amount)
	if err != nil {
		return nil, err
	}
	equity, err := toDecimal128(l.EquityGiven)
	if err != nil {
		return nil, err
	}
	return &fundingLogDoc{
		ID:          l.ID,
		ProposalID:  l.ProposalID,
		InvestorID:  l.InvestorID,
		Amount:      amount,
		EquityGiven: equity,
		CreatedAt:   l.CreatedAt,
	}, nil
}
