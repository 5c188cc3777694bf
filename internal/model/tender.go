package model

// PaymentMethod is the internal tender code persisted in sale_payments.method.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCard     PaymentMethod = "CARD"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodOther    PaymentMethod = "OTHER"
)

// Tender names exposed to clients.
const (
	TenderEfectivo      = "EFECTIVO"
	TenderTarjeta       = "TARJETA"
	TenderTransferencia = "TRANSFERENCIA"
	TenderOtro          = "OTRO"
)

var tenderToMethod = map[string]PaymentMethod{
	TenderEfectivo:      MethodCash,
	TenderTarjeta:       MethodCard,
	TenderTransferencia: MethodTransfer,
	TenderOtro:          MethodOther,
}

var methodToTender = map[PaymentMethod]string{
	MethodCash:     TenderEfectivo,
	MethodCard:     TenderTarjeta,
	MethodTransfer: TenderTransferencia,
	MethodOther:    TenderOtro,
}

// Methods lists every internal code in display order.
var Methods = []PaymentMethod{MethodCash, MethodCard, MethodTransfer, MethodOther}

// ParseTender maps a client-facing tender name to its internal code.
func ParseTender(name string) (PaymentMethod, bool) {
	m, ok := tenderToMethod[name]
	return m, ok
}

// Tender returns the client-facing name. Unknown codes are returned unchanged.
func (m PaymentMethod) Tender() string {
	if t, ok := methodToTender[m]; ok {
		return t
	}
	return string(m)
}
