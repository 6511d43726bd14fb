package content

import (
	"time"

	"gorm.io/datatypes"
)

// PolicyKind names one of the fixed policy pages
type PolicyKind string

const (
	PolicyTerms           PolicyKind = "terms"
	PolicyShippingReturns PolicyKind = "shipping_returns"
	PolicyPrivacy         PolicyKind = "privacy"
)

// Valid reports whether k is a known policy page
func (k PolicyKind) Valid() bool {
	switch k {
	case PolicyTerms, PolicyShippingReturns, PolicyPrivacy:
		return true
	}
	return false
}

// FAQ is a question and answer shown on the help page
type FAQ struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Question     string    `gorm:"size:500;not null" json:"question"`
	Answer       string    `gorm:"type:text;not null" json:"answer"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	DisplayOrder int       `gorm:"default:0;index" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Section is one headed block of a policy document
type Section struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// PolicyDocument holds the structured body of a policy page
type PolicyDocument struct {
	ID        uint                         `gorm:"primaryKey" json:"id"`
	Kind      PolicyKind                   `gorm:"size:30;uniqueIndex;not null" json:"kind"`
	Title     string                       `gorm:"size:255" json:"title"`
	Sections  datatypes.JSONSlice[Section] `json:"sections"`
	UpdatedBy uint                         `json:"updated_by"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// TableName overrides
func (FAQ) TableName() string            { return "faqs" }
func (PolicyDocument) TableName() string { return "policy_documents" }
