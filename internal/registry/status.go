package registry

// PaymentStatus is the local three-state status stored on a purchase.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusApproved PaymentStatus = "approved"
	StatusRejected PaymentStatus = "rejected"
)

var gatewayStatus = map[string]PaymentStatus{
	"approved":     StatusApproved,
	"pending":      StatusPending,
	"in_process":   StatusPending,
	"rejected":     StatusRejected,
	"cancelled":    StatusRejected,
	"refunded":     StatusRejected,
	"charged_back": StatusRejected,
}

// FromGatewayStatus maps a MercadoPago payment status onto the local enum.
// Unknown or empty statuses land on pending. Every reconciliation entry point
// goes through this single mapping.
func FromGatewayStatus(remote string) PaymentStatus {
	if s, ok := gatewayStatus[remote]; ok {
		return s
	}
	return StatusPending
}

// ValidStatus reports whether s is one of the three storable values.
// Used to validate admin overrides coming off the wire.
func ValidStatus(s string) bool {
	switch PaymentStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Deletable: approved purchases are kept for history and may not be removed.
func (s PaymentStatus) Deletable() bool { return s != StatusApproved }
