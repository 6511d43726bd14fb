// internal/pkg/email/types.go
package email

import (
	"time"
)

// Template identifies a notification email
type Template string

const (
	TemplateOrderConfirmation Template = "order_confirmation"
	TemplateOrderCancelled    Template = "order_cancelled"
	TemplateBackInStock       Template = "back_in_stock"
)

// Email represents a rendered email message
type Email struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	HTMLContent string   `json:"html_content"`
	Template    Template `json:"template"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName   string `json:"site_name"`
	SiteURL    string `json:"site_url"`
	SupportURL string `json:"support_url"`
	UserName   string `json:"user_name"`
	Year       int    `json:"year"`
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderID     uint        `json:"order_id"`
	OrderDate   string      `json:"order_date"`
	OrderTotal  string      `json:"order_total"`
	DeliveryFee string      `json:"delivery_fee"`
	Items       []OrderItem `json:"items"`
	Address     []string    `json:"address"`
}

// OrderCancelledData contains data for order cancellation email
type OrderCancelledData struct {
	EmailTemplateData
	OrderID     uint        `json:"order_id"`
	OrderTotal  string      `json:"order_total"`
	Reason      string      `json:"reason"`
	CancelledBy string      `json:"cancelled_by"`
	Items       []OrderItem `json:"items"`
}

// BackInStockData contains data for back-in-stock email
type BackInStockData struct {
	EmailTemplateData
	ProductName string `json:"product_name"`
	ProductURL  string `json:"product_url"`
	Price       string `json:"price"`
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, siteURL, userName string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:   siteName,
		SiteURL:    siteURL,
		SupportURL: siteURL + "/support",
		UserName:   userName,
		Year:       time.Now().Year(),
	}
}

// baseData lets the renderer fill in site-wide fields on any template payload
type baseData interface {
	base() *EmailTemplateData
}

func (d *EmailTemplateData) base() *EmailTemplateData { return d }
