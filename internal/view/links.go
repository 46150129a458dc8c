package view

import (
	"net/url"
	"strings"
	"sync/atomic"
)

// PageLinks locates the proposal and offer pages. Those pages are served by
// the rest of the site, not by this service. "{id}" in a pattern is replaced
// with the query-escaped record id.
type PageLinks struct {
	ProposalDetail string
	ProposalEdit   string
	OfferDetail    string
}

// DefaultPageLinks points at the site's static detail pages.
var DefaultPageLinks = PageLinks{
	ProposalDetail: "/proposal-details.html?id={id}",
	ProposalEdit:   "/edit-proposal.html?id={id}",
	OfferDetail:    "/offer-detail.html?id={id}",
}

var pageLinks atomic.Pointer[PageLinks]

func init() { SetPageLinks(DefaultPageLinks) }

// SetPageLinks replaces the card link patterns. Empty fields keep the
// default pattern.
func SetPageLinks(l PageLinks) {
	if l.ProposalDetail == "" {
		l.ProposalDetail = DefaultPageLinks.ProposalDetail
	}
	if l.ProposalEdit == "" {
		l.ProposalEdit = DefaultPageLinks.ProposalEdit
	}
	if l.OfferDetail == "" {
		l.OfferDetail = DefaultPageLinks.OfferDetail
	}
	pageLinks.Store(&l)
}

func links() *PageLinks { return pageLinks.Load() }

func expandLink(pattern, id string) string {
	return strings.ReplaceAll(pattern, "{id}", url.QueryEscape(id))
}
