package checkout

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	phonePattern = regexp.MustCompile(`^03\d{9}$`)
	cvvPattern   = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidPhone accepts Pakistani mobile numbers: 03 followed by 9 digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LuhnValid runs the Luhn checksum over the digits of number. Card numbers
// shorter than 13 digits are rejected outright.
func LuhnValid(number string) bool {
	digits := digitsOf(number)
	if len(digits) < 13 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		n := int(digits[i] - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

// ValidExpiry checks MM/YY shape with month in [1,12].
func ValidExpiry(expiry string) bool {
	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return false
	}
	return month >= 1 && month <= 12
}

func ValidCVV(cvv string) bool {
	return cvvPattern.MatchString(cvv)
}

func validateDelivery(d DeliveryDetails) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(d.Address) == "" {
		errs["delivery_address"] = "Address is required"
	}
	if strings.TrimSpace(d.City) == "" {
		errs["delivery_city"] = "City is required"
	}
	if strings.TrimSpace(d.Phone) == "" {
		errs["phone"] = "Phone is required"
	} else if !ValidPhone(d.Phone) {
		errs["phone"] = "Enter valid Pakistani phone (03XXXXXXXXX)"
	}
	return errs
}

func validatePayment(p PaymentDetails) map[string]string {
	errs := map[string]string{}
	switch details := p.(type) {
	case CODDetails:
		// Nothing to collect.
	case WalletDetails:
		if strings.TrimSpace(details.Phone) == "" {
			errs["wallet_phone"] = "Phone number is required"
		} else if !ValidPhone(details.Phone) {
			errs["wallet_phone"] = "Enter valid phone (03XXXXXXXXX)"
		}
	case CardDetails:
		if digitsOf(details.Number) == "" {
			errs["card_number"] = "Card number is required"
		} else if !LuhnValid(details.Number) {
			errs["card_number"] = "Invalid card number"
		}
		if strings.TrimSpace(details.Name) == "" {
			errs["card_name"] = "Cardholder name is required"
		}
		if strings.TrimSpace(details.Expiry) == "" {
			errs["card_expiry"] = "Expiry is required"
		} else if !ValidExpiry(details.Expiry) {
			errs["card_expiry"] = "Use MM/YY format"
		}
		if strings.TrimSpace(details.CVV) == "" {
			errs["card_cvv"] = "CVV is required"
		} else if !ValidCVV(details.CVV) {
			errs["card_cvv"] = "Enter 3 or 4 digit CVV"
		}
	}
	return errs
}
