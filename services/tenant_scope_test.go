package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanAccessConversation(t *testing.T) {
	companyX := uuid.New()
	companyY := uuid.New()

	tests := []struct {
		name     string
		identity *Identity
		convCo   *uuid.UUID
		expected bool
	}{
		{
			name:     "nil identity",
			identity: nil,
			convCo:   &companyX,
			expected: false,
		},
		{
			name:     "same company",
			identity: &Identity{CompanyID: &companyX},
			convCo:   &companyX,
			expected: true,
		},
		{
			name:     "different company",
			identity: &Identity{CompanyID: &companyY},
			convCo:   &companyX,
			expected: false,
		},
		{
			name:     "superadmin bypasses company check",
			identity: &Identity{CompanyID: &companyY, IsSuperadmin: true},
			convCo:   &companyX,
			expected: true,
		},
		{
			name:     "companyless conversation visible to anyone",
			identity: &Identity{CompanyID: &companyY},
			convCo:   nil,
			expected: true,
		},
		{
			name:     "companyless requester cannot see company thread",
			identity: &Identity{},
			convCo:   &companyX,
			expected: false,
		},
		{
			name:     "companyless requester sees companyless thread",
			identity: &Identity{},
			convCo:   nil,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanAccessConversation(tt.identity, tt.convCo)
			if got != tt.expected {
				t.Errorf("CanAccessConversation() = %v, want %v", got, tt.expected)
			}
		})
	}
}
