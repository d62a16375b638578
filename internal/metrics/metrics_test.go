package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/printandread/shelf/internal/domain"
)

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("material 3: %w", domain.ErrNotFound), "not_found"},
		{"offline", domain.ErrServerOffline, "offline"},
		{"status", &domain.APIError{Status: 409, Message: "duplicate code"}, "status"},
		{"other", errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorType(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRecordAPIRequestCountsErrors(t *testing.T) {
	before := testutil.ToFloat64(APIRequestErrors.WithLabelValues("test_op", "offline"))

	RecordAPIRequest("test_op", time.Now(), nil)
	RecordAPIRequest("test_op", time.Now(), domain.ErrServerOffline)

	after := testutil.ToFloat64(APIRequestErrors.WithLabelValues("test_op", "offline"))
	if after-before != 1 {
		t.Fatalf("expected one recorded error, got %v", after-before)
	}
}
