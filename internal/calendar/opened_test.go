package calendar

import (
	"testing"
)

func TestOpenedRoundTrip(t *testing.T) {
	data, err := MarshalOpened(NewOpenedSet(3, 7, 1))
	if err != nil {
		t.Fatalf("MarshalOpened() failed: %v", err)
	}
	if string(data) != "[1,3,7]" {
		t.Errorf("MarshalOpened() = %s, want [1,3,7]", data)
	}

	got, err := ParseOpened(data)
	if err != nil {
		t.Fatalf("ParseOpened() failed: %v", err)
	}
	if !got.Equal(NewOpenedSet(1, 3, 7)) {
		t.Errorf("ParseOpened() = %v, want {1,3,7}", got.Days())
	}
}

func TestParseOpened(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"Empty input", "", nil, false},
		{"Empty array", "[]", nil, false},
		{"Unordered with duplicates", "[7,3,7,1]", []int{1, 3, 7}, false},
		{"Out of range ignored", "[0,5,25,-1]", []int{5}, false},
		{"Not JSON", "opened:1,2", nil, true},
		{"Wrong type", `{"days":[1]}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOpened([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOpened() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got == nil {
				t.Fatal("ParseOpened() must always return a usable set")
			}
			if !got.Equal(NewOpenedSet(tt.want...)) {
				t.Errorf("ParseOpened() = %v, want %v", got.Days(), tt.want)
			}
		})
	}
}

func TestOpenedSetAdd(t *testing.T) {
	s := NewOpenedSet()
	if !s.Add(4) {
		t.Error("first Add(4) should report new")
	}
	if s.Add(4) {
		t.Error("second Add(4) should report existing")
	}
	if len(s) != 1 {
		t.Errorf("len = %d, want 1", len(s))
	}
}
