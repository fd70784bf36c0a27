package model

import "testing"

func TestAppointmentLifecycle(t *testing.T) {
	// pending -> accepted -> completed is the happy path
	if !CanTransitionAppointment(AppointmentPending, AppointmentAccepted) {
		t.Fatalf("pending -> accepted must be allowed")
	}
	if !CanTransitionAppointment(AppointmentAccepted, AppointmentCompleted) {
		t.Fatalf("accepted -> completed must be allowed")
	}
	if !CanTransitionAppointment(AppointmentPending, AppointmentCancelled) {
		t.Fatalf("pending -> cancelled must be allowed")
	}
}

func TestAppointmentTerminalStates(t *testing.T) {
	for _, terminal := range []string{AppointmentCompleted, AppointmentCancelled} {
		for _, to := range []string{AppointmentPending, AppointmentAccepted, AppointmentCompleted, AppointmentCancelled} {
			if CanTransitionAppointment(terminal, to) {
				t.Fatalf("terminal state %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestAppointmentDisallowedEdges(t *testing.T) {
	cases := []struct{ from, to string }{
		{AppointmentPending, AppointmentCompleted},  // cannot skip assignment
		{AppointmentAccepted, AppointmentCancelled}, // cancel only while pending
		{AppointmentAccepted, AppointmentPending},
		{"BOGUS", AppointmentAccepted},
		{AppointmentPending, "BOGUS"},
	}
	for _, tc := range cases {
		if CanTransitionAppointment(tc.from, tc.to) {
			t.Fatalf("%s -> %s must be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderLifecycle(t *testing.T) {
	path := []string{OrderProcessing, OrderShipped, OrderDelivered, OrderCompleted}
	for i := 0; i+1 < len(path); i++ {
		if !CanTransitionOrder(path[i], path[i+1]) {
			t.Fatalf("%s -> %s must be allowed", path[i], path[i+1])
		}
	}
	if !CanTransitionOrder(OrderProcessing, OrderCancelled) {
		t.Fatalf("processing -> cancelled must be allowed")
	}
	if !CanTransitionOrder(OrderShipped, OrderCancelled) {
		t.Fatalf("shipped -> cancelled must be allowed")
	}
	if CanTransitionOrder(OrderDelivered, OrderCancelled) {
		t.Fatalf("delivered orders cannot be cancelled")
	}
	if CanTransitionOrder(OrderCompleted, OrderProcessing) {
		t.Fatalf("completed is terminal")
	}
	if CanTransitionOrder(OrderCancelled, OrderShipped) {
		t.Fatalf("cancelled is terminal")
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{AppointmentPending, AppointmentAccepted, AppointmentCompleted, AppointmentCancelled} {
		if !ValidAppointmentStatus(s) {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	for _, s := range []string{OrderProcessing, OrderShipped, OrderDelivered, OrderCompleted, OrderCancelled} {
		if !ValidOrderStatus(s) {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if ValidAppointmentStatus("pending") || ValidOrderStatus("shipped") {
		t.Fatalf("status names are upper case; lower case must be invalid")
	}
	if ValidAppointmentStatus("") || ValidOrderStatus("") {
		t.Fatalf("empty status must be invalid")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleCustomer, RoleBeekeeper, RoleAdmin} {
		if !ValidRole(r) {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	if ValidRole("customer") || ValidRole("OWNER") || ValidRole("") {
		t.Fatalf("unknown roles must be invalid")
	}
}
