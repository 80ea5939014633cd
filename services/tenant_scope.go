package services

import "github.com/google/uuid"

// CanAccessConversation decides whether a requester may see or act on a
// conversation, given the conversation's owning company. Superadmins bypass
// the company check; conversations without a company (cross-tenant support
// threads) are visible to all participants.
func CanAccessConversation(identity *Identity, conversationCompanyID *uuid.UUID) bool {
	if identity == nil {
		return false
	}
	if identity.IsSuperadmin {
		return true
	}
	if conversationCompanyID == nil {
		return true
	}
	if identity.CompanyID == nil {
		return false
	}
	return *identity.CompanyID == *conversationCompanyID
}
