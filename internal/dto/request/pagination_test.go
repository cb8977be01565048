package request

import "testing"

func TestPaginatedRequestLimitOffset(t *testing.T) {
	p := PaginatedRequest{Page: 3, PerPage: 20}
	if p.Limit() != 20 {
		t.Errorf("expected limit 20, got %d", p.Limit())
	}
	if p.Offset() != 40 {
		t.Errorf("expected offset 40, got %d", p.Offset())
	}

	zero := PaginatedRequest{}
	if zero.Limit() != 10 {
		t.Errorf("expected default limit 10, got %d", zero.Limit())
	}
	if zero.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", zero.Offset())
	}

	big := PaginatedRequest{Page: 1, PerPage: 500}
	if big.Limit() != 100 {
		t.Errorf("expected limit capped at 100, got %d", big.Limit())
	}
}
