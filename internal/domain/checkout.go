package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const CurrencyUSD = "USD"

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

type CardBrand string

const (
	CardBrandVisa       CardBrand = "visa"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandAmex       CardBrand = "amex"
	CardBrandPayPal     CardBrand = "paypal"
)

func (b CardBrand) Valid() bool {
	switch b {
	case CardBrandVisa, CardBrandMastercard, CardBrandAmex, CardBrandPayPal:
		return true
	}
	return false
}

type CustomerInfo struct {
	FullName      string `json:"fullName"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
}

// Trimmed returns the customer info with surrounding whitespace removed.
func (c CustomerInfo) Trimmed() CustomerInfo {
	return CustomerInfo{
		FullName:      strings.TrimSpace(c.FullName),
		Address:       strings.TrimSpace(c.Address),
		ContactNumber: strings.TrimSpace(c.ContactNumber),
	}
}

// CheckoutForm is the raw customer input collected at checkout.
type CheckoutForm struct {
	FullName        string        `json:"fullName"`
	Address         string        `json:"address"`
	ContactNumber   string        `json:"contactNumber"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	CardType        CardBrand     `json:"cardType"`
	PaymentMethodID string        `json:"paymentMethodId,omitempty"`
}

func (f CheckoutForm) Customer() CustomerInfo {
	return CustomerInfo{
		FullName:      f.FullName,
		Address:       f.Address,
		ContactNumber: f.ContactNumber,
	}.Trimmed()
}

// PaymentSelection is one of CashSelection, PayPalSelection or CardSelection.
type PaymentSelection interface {
	Method() string
	paymentSelection()
}

type CashSelection struct{}

func (CashSelection) Method() string { return "cash" }
func (CashSelection) paymentSelection() {}

type PayPalSelection struct{}

func (PayPalSelection) Method() string { return "paypal" }
func (PayPalSelection) paymentSelection() {}

// CardSelection routes to the card processor. Only visa, mastercard and amex
// are card selections; paypal chosen under "card" is a PayPalSelection.
type CardSelection struct {
	Brand   CardBrand
	Details CardDetails
}

func (CardSelection) Method() string { return "card" }
func (CardSelection) paymentSelection() {}

// CardDetails carries the tokenized card collected by the card form.
type CardDetails struct {
	PaymentMethodID string
}

// Order is the immutable snapshot handed to a payment backend.
type Order struct {
	Items        []CartItem      `json:"items"`
	CustomerInfo CustomerInfo    `json:"customerInfo"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// ItemsTotal recomputes the total from the order lines.
func (o Order) ItemsTotal() decimal.Decimal {
	return CartState{Items: o.Items}.Total()
}
