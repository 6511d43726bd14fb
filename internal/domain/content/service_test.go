package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/testutil"
)

func TestNormalizeSections(t *testing.T) {
	got := NormalizeSections([]Section{
		{Heading: "  Returns ", Content: " 30 days "},
		{Heading: "", Content: "orphan text"},
		{Heading: "Refunds", Content: "   "},
		{Heading: "RETURNS", Content: "duplicate"},
		{Heading: "Exchanges", Content: "Within 7 days"},
	})

	assert.Equal(t, []Section{
		{Heading: "Returns", Content: "30 days"},
		{Heading: "Exchanges", Content: "Within 7 days"},
	}, got)
	assert.Empty(t, NormalizeSections(nil))
}

func TestPolicyDocuments(t *testing.T) {
	db := testutil.NewTestDB(t, &PolicyDocument{})
	svc := NewService(db, logger.Discard())
	ctx := context.Background()

	empty, err := svc.GetPolicy(ctx, PolicyPrivacy)
	require.NoError(t, err)
	assert.Empty(t, empty.Sections)

	_, err = svc.GetPolicy(ctx, PolicyKind("cookies"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.PutPolicy(ctx, PolicyShippingReturns, &PolicyRequest{
		Title:    "Shipping",
		Sections: []Section{{Heading: "Delivery", Content: "3-5 days"}},
	}, 1)
	require.NoError(t, err)

	doc, err := svc.PutPolicy(ctx, PolicyShippingReturns, &PolicyRequest{
		Title: "Shipping & Returns",
		Sections: []Section{
			{Heading: "Delivery", Content: "2-4 days"},
			{Heading: "delivery", Content: "ignored"},
			{Heading: "Returns", Content: "Free pickup"},
		},
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, "Shipping & Returns", doc.Title)
	assert.Equal(t, uint(2), doc.UpdatedBy)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "2-4 days", doc.Sections[0].Content)

	var n int64
	require.NoError(t, db.Model(&PolicyDocument{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestFAQs(t *testing.T) {
	db := testutil.NewTestDB(t, &FAQ{})
	svc := NewService(db, logger.Discard())
	ctx := context.Background()

	second, err := svc.SaveFAQ(ctx, 0, &FAQRequest{Question: "How long is delivery?", Answer: "3-5 days", DisplayOrder: 2})
	require.NoError(t, err)
	first, err := svc.SaveFAQ(ctx, 0, &FAQRequest{Question: "Do you ship abroad?", Answer: "Not yet", DisplayOrder: 1})
	require.NoError(t, err)

	inactive := false
	_, err = svc.SaveFAQ(ctx, second.ID, &FAQRequest{Question: "How long is delivery?", Answer: "2 days", IsActive: &inactive, DisplayOrder: 2})
	require.NoError(t, err)

	public, err := svc.ListFAQs(ctx, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, first.ID, public[0].ID)

	all, err := svc.ListFAQs(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2 days", all[1].Answer)
	assert.False(t, all[1].IsActive)

	_, err = svc.SaveFAQ(ctx, 99, &FAQRequest{Question: "q", Answer: "a"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.SaveFAQ(ctx, 0, &FAQRequest{Question: " ", Answer: "a"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
