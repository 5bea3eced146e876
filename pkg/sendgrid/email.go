// Package sendgrid delivers transactional storefront email.
package sendgrid

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sproutify/sproutify-platform/internal/models"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string) *EmailService {
	return &EmailService{client: sendgrid.NewSendClient(apiKey), fromEmail: fromEmail, fromName: fromName}
}

// SendOrderReceipt emails a plain-text receipt for a freshly paid order.
func (e *EmailService) SendOrderReceipt(ctx context.Context, to string, order *models.Order) error {

	from := mail.NewEmail(e.fromName, e.fromEmail)
	recipient := mail.NewEmail("", to)

	subject := fmt.Sprintf("Your order %s is confirmed", order.ID)
	message := mail.NewSingleEmail(from, subject, recipient, receiptBody(order), "")

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}

	return nil
}

func receiptBody(order *models.Order) string {

	var b strings.Builder

	fmt.Fprintf(&b, "Thank you for your order!\n\n")
	fmt.Fprintf(&b, "Order: %s\n\n", order.ID)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s @ %.2f\n", item.Quantity, item.Name, item.Price)
	}

	fmt.Fprintf(&b, "\nItems:    %.2f\n", order.ItemsPrice)
	fmt.Fprintf(&b, "Shipping: %.2f\n", order.ShippingPrice)
	fmt.Fprintf(&b, "Tax:      %.2f\n", order.TaxPrice)
	fmt.Fprintf(&b, "Total:    %.2f\n", order.TotalPrice)

	if order.ShippingAddress != nil {
		addr := order.ShippingAddress
		fmt.Fprintf(&b, "\nShipping to: %s, %s %s, %s\n", addr.Address, addr.City, addr.PostalCode, addr.Country)
	}

	return b.String()
}
