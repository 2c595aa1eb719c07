package enums

type PaymentMethod string

const (
	PaymentMethodCOD  PaymentMethod = "cod"
	PaymentMethodKnet PaymentMethod = "knet"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCOD, PaymentMethodKnet:
		return true
	default:
		return false
	}
}

func (p PaymentMethod) String() string {
	return string(p)
}
