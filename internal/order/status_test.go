package order

import (
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "assigned", "in_transit", "delivered", "cancelled"} {
		if _, err := ParseStatus(s); err != nil {
			t.Fatalf("ParseStatus(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "shipped", "CANCELLED", "processing"} {
		if _, err := ParseStatus(s); err != ErrInvalidStatus {
			t.Fatalf("ParseStatus(%q) should fail, got %v", s, err)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusDelivered, true},
		{StatusConfirmed, StatusConfirmed, true},
		{StatusDelivered, StatusInTransit, false},
		{StatusAssigned, StatusPending, false},
		{StatusDelivered, StatusCancelled, true},
		{StatusPending, StatusCancelled, true},
		{StatusCancelled, StatusCancelled, true},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusDelivered, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !StatusDelivered.Terminal() || !StatusCancelled.Terminal() || StatusAssigned.Terminal() {
		t.Fatal("terminal states are delivered and cancelled")
	}
}

func TestBuildList(t *testing.T) {
	q, args := buildList(ListFilter{Status: StatusConfirmed, OnlyUnassigned: true, Limit: 500, Offset: -3})
	if !strings.Contains(q, "WHERE status = $1 AND delivery_man_id IS NULL") {
		t.Fatalf("query=%s", q)
	}
	if !strings.HasSuffix(q, "ORDER BY created_at DESC LIMIT $2 OFFSET $3") {
		t.Fatalf("query=%s", q)
	}
	if len(args) != 3 || args[0] != "confirmed" || args[1] != 20 || args[2] != 0 {
		t.Fatalf("args=%v", args)
	}

	q, args = buildList(ListFilter{DeliveryManID: "d1", DeliveryPriorities: true, Limit: 5})
	if !strings.Contains(q, "delivery_man_id = $1") || !strings.Contains(q, "CASE status WHEN 'assigned' THEN 1") {
		t.Fatalf("query=%s", q)
	}
	if len(args) != 3 || args[0] != "d1" || args[1] != 5 {
		t.Fatalf("args=%v", args)
	}
}

func TestStockErrorMessage(t *testing.T) {
	err := &StockError{Issues: []StockIssue{{ProductID: "p1"}, {ProductID: "p2"}}}
	if err.Error() != "stock validation failed for p1, p2" {
		t.Fatalf("msg=%q", err.Error())
	}
}
