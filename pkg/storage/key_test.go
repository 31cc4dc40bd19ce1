package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/uploadhub/pkg/storage"
)

func TestUploadKey(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 1, 1, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		filename string
		at       time.Time
		want     string
	}{
		{
			name:     "spaces replaced with underscores",
			filename: "a b.png",
			at:       day,
			want:     "2024-01-01/a_b.png",
		},
		{
			name:     "plain filename kept as is",
			filename: "report.pdf",
			at:       day,
			want:     "2024-01-01/report.pdf",
		},
		{
			name:     "multiple spaces all replaced",
			filename: "my holiday photo.jpg",
			at:       day,
			want:     "2024-01-01/my_holiday_photo.jpg",
		},
		{
			name:     "date taken in UTC",
			filename: "late.txt",
			at:       time.Date(2024, 6, 30, 23, 30, 0, 0, time.FixedZone("UTC+2", 2*3600)),
			want:     "2024-06-30/late.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, storage.UploadKey(tt.filename, tt.at))
		})
	}
}
