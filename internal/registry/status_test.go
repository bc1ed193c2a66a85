package registry

import "testing"

func TestFromGatewayStatus_MappingTable(t *testing.T) {
	cases := map[string]PaymentStatus{
		"approved":     StatusApproved,
		"pending":      StatusPending,
		"in_process":   StatusPending,
		"rejected":     StatusRejected,
		"cancelled":    StatusRejected,
		"refunded":     StatusRejected,
		"charged_back": StatusRejected,
	}
	for remote, want := range cases {
		if got := FromGatewayStatus(remote); got != want {
			t.Errorf("FromGatewayStatus(%q) = %q, want %q", remote, got, want)
		}
	}
}

func TestFromGatewayStatus_UnknownFallsBackToPending(t *testing.T) {
	for _, remote := range []string{"", "authorized", "in_mediation", "whatever"} {
		if got := FromGatewayStatus(remote); got != StatusPending {
			t.Errorf("FromGatewayStatus(%q) = %q, want pending", remote, got)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected"} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "APPROVED", "cancelled", "done"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestDeletable(t *testing.T) {
	if StatusApproved.Deletable() {
		t.Error("approved purchases must not be deletable")
	}
	if !StatusPending.Deletable() || !StatusRejected.Deletable() {
		t.Error("pending and rejected purchases must be deletable")
	}
}
