package checkout

import (
	"github.com/fjod/gizmo_store/internal/domain"
)

// Validate checks the customer fields in form order and derives the payment
// selection. It never touches the network.
func Validate(form domain.CheckoutForm) (domain.CustomerInfo, domain.PaymentSelection, error) {
	customer := form.Customer()

	switch {
	case customer.FullName == "":
		return customer, nil, invalid("fullName", MessageFullNameRequired)
	case customer.Address == "":
		return customer, nil, invalid("address", MessageAddressRequired)
	case customer.ContactNumber == "":
		return customer, nil, invalid("contactNumber", MessageContactNumberRequired)
	}

	sel, err := SelectPayment(form)
	return customer, sel, err
}

func SelectPayment(form domain.CheckoutForm) (domain.PaymentSelection, error) {
	switch form.PaymentMethod {
	case domain.PaymentMethodCash:
		return domain.CashSelection{}, nil
	case domain.PaymentMethodCard:
		if !form.CardType.Valid() {
			return nil, invalid("cardType", MessageCardTypeRequired)
		}
		if form.CardType == domain.CardBrandPayPal {
			return domain.PayPalSelection{}, nil
		}
		return domain.CardSelection{
			Brand:   form.CardType,
			Details: domain.CardDetails{PaymentMethodID: form.PaymentMethodID},
		}, nil
	default:
		return nil, invalid("paymentMethod", MessagePaymentMethodRequired)
	}
}
