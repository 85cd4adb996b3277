package services

import (
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/utils"
)

// CustomerInfo is the checkout contact passed through to the gateway.
type CustomerInfo struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
}

// PaymentService wraps the payment gateway. The gateway is an opaque
// collaborator: failures surface directly as ErrUpstreamFailure.
type PaymentService interface {
	CreateTransaction(order *models.Order, customer CustomerInfo) (token, redirectURL string, err error)
}

type midtransPayment struct {
	client snap.Client
	logger utils.Logger
}

func NewMidtransPayment(serverKey string, production bool, logger utils.Logger) PaymentService {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var client snap.Client
	client.New(serverKey, env)

	return &midtransPayment{
		client: client,
		logger: logger,
	}
}

func (p *midtransPayment) CreateTransaction(order *models.Order, customer CustomerInfo) (string, string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.Reference,
			GrossAmt: int64(order.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.FirstName,
			LName: customer.LastName,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
	}

	resp, err := p.client.CreateTransaction(req)
	if err != nil {
		p.logger.Error("Payment gateway transaction failed",
			"order_reference", order.Reference,
			"error", err)
		return "", "", fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	p.logger.Info("Payment transaction created",
		"order_reference", order.Reference,
		"amount", order.Amount)

	return resp.Token, resp.RedirectURL, nil
}
