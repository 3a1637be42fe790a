package authz

import "github.com/mrskaggs/forkful/backend/internal/identity"

// Policy centralizes role checks so handlers and services evaluate one
// decision per operation instead of re-deriving role logic ad hoc.
type Policy struct{}

func NewPolicy() *Policy { return &Policy{} }

// CanModerate reports whether the actor may toggle moderation flags.
func (p *Policy) CanModerate(actor identity.Identity) bool {
	return actor.IsAdmin()
}

// CanBlock reports whether the actor may create or remove blocks.
func (p *Policy) CanBlock(actor identity.Identity) bool {
	return actor.IsAdmin()
}

// CanReviewReports reports whether the actor may list and review reports.
func (p *Policy) CanReviewReports(actor identity.Identity) bool {
	return actor.IsAdmin()
}

// CanDeleteComment reports whether the actor may delete the given author's
// comment. Owners and admins both qualify.
func (p *Policy) CanDeleteComment(actor identity.Identity, authorID uint) bool {
	return actor.IsAdmin() || actor.UserID == authorID
}
