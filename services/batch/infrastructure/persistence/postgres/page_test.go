package postgres

import (
	"math"
	"testing"

	"github.com/ghuser/medtrace/services/batch/domain/repositories"
)

func TestPageParams(t *testing.T) {
	tests := []struct {
		name       string
		opts       repositories.QueryOpts
		wantLimit  int32
		wantOffset int32
	}{
		{"defaults", repositories.QueryOpts{}, defaultPageSize, 0},
		{"explicit", repositories.QueryOpts{Limit: 20, Offset: 40}, 20, 40},
		{"negative offset", repositories.QueryOpts{Limit: 5, Offset: -3}, 5, 0},
		{"offset past int4", repositories.QueryOpts{Limit: 5, Offset: math.MaxInt32 + 1}, 5, math.MaxInt32},
		{"limit past int4", repositories.QueryOpts{Limit: math.MaxInt32 + 10}, math.MaxInt32, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := pageParams(tt.opts)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
