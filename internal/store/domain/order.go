package domain

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentUnset PaymentMethod = ""
	PaymentCard  PaymentMethod = "card"
	PaymentCash  PaymentMethod = "cash"
)

// KnownPayment reports whether m is one of the enumerated methods.
func KnownPayment(m PaymentMethod) bool {
	return m == PaymentCard || m == PaymentCash
}

// Field names a validated order field.
type Field string

const (
	FieldAddress Field = "address"
	FieldPayment Field = "payment"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldItems   Field = "items"
)

// OrderDraft holds the order fields as the customer fills them in across the
// two checkout forms. The draft survives modal dismissal and is cleared only
// on successful submission or an explicit reset.
type OrderDraft struct {
	Payment PaymentMethod
	Address string
	Email   string
	Phone   string
}

// Empty reports whether the draft equals its default shape.
func (d OrderDraft) Empty() bool {
	return d == OrderDraft{}
}

// Order is the payload submitted to the remote API. Items and Total are
// derived from the basket against a freshly fetched catalog immediately
// before submission; a locally computed total is provisional until the
// remote response confirms it.
type Order struct {
	Payment PaymentMethod `json:"payment"`
	Email   string        `json:"email"`
	Phone   string        `json:"phone"`
	Address string        `json:"address"`
	Total   int64         `json:"total"`
	Items   []string      `json:"items"`
}

// OrderResult is the remote API's response to a submitted order. Its total
// is authoritative.
type OrderResult struct {
	ID    string `json:"id"`
	Total int64  `json:"total"`
}
