package instrumentation

import "testing"

func TestBucketSelectionSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{-1, "0"},
		{0, "0"},
		{1, "1"},
		{2, "2-10"},
		{10, "2-10"},
		{11, "11-25"},
		{25, "11-25"},
		{26, "26-50"},
		{50, "26-50"},
		{51, "51-100"},
		{100, "51-100"},
		{101, "100+"},
		{5000, "100+"},
	}

	for _, tt := range tests {
		if got := BucketSelectionSize(tt.n); got != tt.want {
			t.Errorf("BucketSelectionSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestBucketAttempts(t *testing.T) {
	tests := []struct {
		attempts int
		want     string
	}{
		{1, "1"},
		{2, "2"},
		{3, "3"},
		{4, "4+"},
		{10, "4+"},
	}

	for _, tt := range tests {
		if got := BucketAttempts(tt.attempts); got != tt.want {
			t.Errorf("BucketAttempts(%d) = %q, want %q", tt.attempts, got, tt.want)
		}
	}
}
