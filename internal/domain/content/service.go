package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service manages FAQ entries and policy documents
type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewService creates a new content service
func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

// FAQRequest represents FAQ create/update data
type FAQRequest struct {
	Question     string `json:"question" binding:"required"`
	Answer       string `json:"answer" binding:"required"`
	IsActive     *bool  `json:"is_active"`
	DisplayOrder int    `json:"display_order"`
}

// PolicyRequest represents a policy document replacement
type PolicyRequest struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// ListFAQs returns FAQ entries in display order
func (s *Service) ListFAQs(ctx context.Context, includeInactive bool) ([]FAQ, error) {
	query := s.db.WithContext(ctx)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var faqs []FAQ
	if err := query.Order("display_order ASC, id ASC").Find(&faqs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve faqs: %w", err)
	}
	return faqs, nil
}

// SaveFAQ creates an FAQ when id is 0 and updates it otherwise
func (s *Service) SaveFAQ(ctx context.Context, id uint, req *FAQRequest) (*FAQ, error) {
	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" || answer == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "question and answer are required")
	}

	var faq FAQ
	if id != 0 {
		if err := s.db.WithContext(ctx).First(&faq, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.New(apperr.ErrNotFound, "faq not found")
			}
			return nil, fmt.Errorf("failed to retrieve faq: %w", err)
		}
	} else {
		faq.IsActive = true
	}

	faq.Question = question
	faq.Answer = answer
	faq.DisplayOrder = req.DisplayOrder
	if req.IsActive != nil {
		faq.IsActive = *req.IsActive
	}

	// Select("*") writes zero values such as is_active=false
	if err := s.db.WithContext(ctx).Select("*").Save(&faq).Error; err != nil {
		return nil, fmt.Errorf("failed to save faq: %w", err)
	}
	return &faq, nil
}

// GetPolicy returns a policy document. A page never written comes back
// empty rather than missing.
func (s *Service) GetPolicy(ctx context.Context, kind PolicyKind) (*PolicyDocument, error) {
	if !kind.Valid() {
		return nil, apperr.New(apperr.ErrNotFound, "unknown page %q", kind)
	}

	var doc PolicyDocument
	err := s.db.WithContext(ctx).Where("kind = ?", kind).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &PolicyDocument{Kind: kind, Sections: []Section{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve policy: %w", err)
	}
	return &doc, nil
}

// PutPolicy replaces a policy document with normalized sections
func (s *Service) PutPolicy(ctx context.Context, kind PolicyKind, req *PolicyRequest, actorID uint) (*PolicyDocument, error) {
	if !kind.Valid() {
		return nil, apperr.New(apperr.ErrNotFound, "unknown page %q", kind)
	}

	doc := PolicyDocument{
		Kind:      kind,
		Title:     strings.TrimSpace(req.Title),
		Sections:  NormalizeSections(req.Sections),
		UpdatedBy: actorID,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "sections", "updated_by", "updated_at"}),
		}).
		Create(&doc).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"kind":     kind,
		"sections": len(doc.Sections),
		"actor_id": actorID,
	}).Info("Policy document updated")

	return s.GetPolicy(ctx, kind)
}

// NormalizeSections trims every section, drops those missing a heading or
// content and keeps only the first section for each heading, compared case-insensitively
func NormalizeSections(in []Section) []Section {
	out := make([]Section, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, sec := range in {
		heading := strings.TrimSpace(sec.Heading)
		body := strings.TrimSpace(sec.Content)
		if heading == "" || body == "" {
			continue
		}

		key := strings.ToLower(heading)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, Section{Heading: heading, Content: body})
	}
	return out
}
