package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docTypes(reqs []RequiredDocument) []KYCDocumentType {
	out := make([]KYCDocumentType, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Type)
	}
	return out
}

func TestRequiredDocuments_RoleBaselines(t *testing.T) {
	customer := RequiredDocuments(RoleCustomer, "")
	assert.Equal(t, []KYCDocumentType{DocIDProof, DocAddressProof, DocPANCard}, docTypes(customer))

	merchant := RequiredDocuments(RoleMerchant, "")
	assert.Equal(t, []KYCDocumentType{DocIDProof, DocAddressProof, DocPANCard, DocBankStatement}, docTypes(merchant))

	// Merchant baseline is a strict superset of the customer baseline.
	merchantSet := make(map[KYCDocumentType]bool)
	for _, d := range docTypes(merchant) {
		merchantSet[d] = true
	}
	for _, d := range docTypes(customer) {
		assert.True(t, merchantSet[d], "merchant set missing %s", d)
	}

	assert.Empty(t, RequiredDocuments(RoleBanker, ""))
}

func TestRequiredDocuments_LoanTypeWidening(t *testing.T) {
	// BUSINESS adds a bank statement for customers.
	business := RequiredDocuments(RoleCustomer, LoanBusiness)
	assert.Contains(t, docTypes(business), DocBankStatement)

	// VEHICLE adds address proof, which the customer baseline already has;
	// the set must not grow or duplicate.
	vehicle := RequiredDocuments(RoleCustomer, LoanVehicle)
	assert.Len(t, vehicle, 3)

	// Merchants already require a bank statement; EQUIPMENT must not duplicate it.
	equipment := RequiredDocuments(RoleMerchant, LoanEquipment)
	assert.Len(t, equipment, 4)

	seen := make(map[KYCDocumentType]bool)
	for _, d := range docTypes(equipment) {
		require.False(t, seen[d], "duplicate %s", d)
		seen[d] = true
	}
}

func TestRequiredDocuments_Deterministic(t *testing.T) {
	first := RequiredDocuments(RoleMerchant, LoanBusiness)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, RequiredDocuments(RoleMerchant, LoanBusiness))
	}
}

func TestCompletionStatus_NotRequired(t *testing.T) {
	c := CompletionStatus(nil, nil)
	assert.Equal(t, CompletionNotRequired, c.Status)
	assert.Zero(t, c.PercentComplete)
	assert.False(t, c.NeedsAction)
}

func TestCompletionStatus_Empty(t *testing.T) {
	required := RequiredDocuments(RoleCustomer, "")
	c := CompletionStatus(nil, required)
	assert.Equal(t, CompletionIncomplete, c.Status)
	assert.Equal(t, 0, c.PercentComplete)
	assert.Equal(t, 3, c.Incomplete)
	assert.True(t, c.NeedsAction)
}

func TestCompletionStatus_Complete(t *testing.T) {
	required := RequiredDocuments(RoleCustomer, "")
	docs := []*KYCDocument{
		{Type: DocIDProof, Status: KYCVerified},
		{Type: DocAddressProof, Status: KYCVerified},
		{Type: DocPANCard, Status: KYCVerified},
	}
	c := CompletionStatus(docs, required)
	assert.Equal(t, CompletionComplete, c.Status)
	assert.Equal(t, 100, c.PercentComplete)
	assert.Equal(t, 3, c.Completed)
	assert.False(t, c.NeedsAction)
}

func TestCompletionStatus_VerifiedWinsOverPending(t *testing.T) {
	required := RequiredDocuments(RoleCustomer, "")
	// Same type uploaded twice: an older pending copy must not mask the
	// verified one.
	docs := []*KYCDocument{
		{Type: DocIDProof, Status: KYCPending},
		{Type: DocIDProof, Status: KYCVerified},
		{Type: DocAddressProof, Status: KYCPending},
	}
	c := CompletionStatus(docs, required)
	assert.Equal(t, 1, c.Completed)
	assert.Equal(t, 1, c.Pending)
	assert.Equal(t, 1, c.Incomplete)
	assert.Equal(t, CompletionInProgress, c.Status)
	assert.Equal(t, 33, c.PercentComplete)
	assert.True(t, c.NeedsAction)
}

func TestCompletionStatus_RejectedDoesNotCount(t *testing.T) {
	required := RequiredDocuments(RoleCustomer, "")
	docs := []*KYCDocument{
		{Type: DocIDProof, Status: KYCRejected},
		{Type: DocAddressProof, Status: KYCUploading},
	}
	c := CompletionStatus(docs, required)
	assert.Equal(t, 0, c.Completed)
	assert.Equal(t, 0, c.Pending)
	assert.Equal(t, 3, c.Incomplete)
	assert.Equal(t, CompletionIncomplete, c.Status)
}

func TestKYCDocument_Overdue(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	fresh := &KYCDocument{Status: KYCPending, CreatedAt: now.Add(-2 * 24 * time.Hour)}
	assert.Equal(t, 2, fresh.DaysPending(now))
	assert.False(t, fresh.Overdue(now))

	// Exactly three days is still on time.
	edge := &KYCDocument{Status: KYCPending, CreatedAt: now.Add(-3 * 24 * time.Hour)}
	assert.False(t, edge.Overdue(now))

	late := &KYCDocument{Status: KYCPending, CreatedAt: now.Add(-4*24*time.Hour - time.Hour)}
	assert.True(t, late.Overdue(now))

	// A verified document is never overdue, regardless of age.
	verified := &KYCDocument{Status: KYCVerified, CreatedAt: now.Add(-30 * 24 * time.Hour)}
	assert.False(t, verified.Overdue(now))
}

func TestParseKYCDocumentType(t *testing.T) {
	got, ok := ParseKYCDocumentType("PAN_CARD")
	require.True(t, ok)
	assert.Equal(t, DocPANCard, got)

	_, ok = ParseKYCDocumentType("pan_card")
	assert.False(t, ok)
	_, ok = ParseKYCDocumentType("SELFIE")
	assert.False(t, ok)
}
