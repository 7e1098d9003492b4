package docid

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		row    int
		want   string
	}{
		{name: "default prefix", prefix: DefaultPrefix, row: 0, want: "doc_0"},
		{name: "larger row", prefix: DefaultPrefix, row: 1548, want: "doc_1548"},
		{name: "custom prefix", prefix: "chunk", row: 7, want: "chunk_7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.prefix, tt.row); got != tt.want {
				t.Errorf("Encode(%q, %d) = %q, want %q", tt.prefix, tt.row, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantRow int
		wantErr bool
	}{
		{name: "round trip zero", id: "doc_0", wantRow: 0},
		{name: "round trip large", id: "doc_1548", wantRow: 1548},
		{name: "prefix with underscore", id: "my_docs_12", wantRow: 12},
		{name: "no underscore", id: "doc3", wantErr: true},
		{name: "trailing underscore", id: "doc_", wantErr: true},
		{name: "non-integer suffix", id: "doc_abc", wantErr: true},
		{name: "negative suffix", id: "doc_-1", wantErr: true},
		{name: "empty", id: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := Decode(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Decode(%q) expected error, got row %d", tt.id, row)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode(%q) unexpected error: %v", tt.id, err)
			}
			if row != tt.wantRow {
				t.Errorf("Decode(%q) = %d, want %d", tt.id, row, tt.wantRow)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, row := range []int{0, 1, 42, 99999} {
		id := Encode(DefaultPrefix, row)
		got, err := Decode(id)
		if err != nil {
			t.Fatalf("Decode(%q) unexpected error: %v", id, err)
		}
		if got != row {
			t.Errorf("round trip %d -> %q -> %d", row, id, got)
		}
	}
}
