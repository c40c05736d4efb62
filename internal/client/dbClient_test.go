package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "file",
			in:   "storefront.db",
			want: "storefront.db?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "existing options kept",
			in:   "file:storefront.db?cache=shared&_busy_timeout=100",
			want: "file:storefront.db?cache=shared&_busy_timeout=100&_txlock=immediate&_journal_mode=WAL",
		},
		{
			name: "memory skips wal",
			in:   "file::memory:",
			want: "file::memory:?_txlock=immediate&_busy_timeout=5000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}
