package tonapi

import (
	"reflect"
	"strings"
	"testing"
)

var rawHex = strings.Repeat("ab12", 16) // 64 hex chars

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{
			name:    "friendly EQ address passes through",
			address: "EQA1EIDrR33zgL21rwDIfGo7h4ETWieentUvg7jIT-3aP5GG",
			want:    "EQA1EIDrR33zgL21rwDIfGo7h4ETWieentUvg7jIT-3aP5GG",
		},
		{
			name:    "friendly UQ address passes through",
			address: "UQA1EIDrR33zgL21rwDIfGo7h4ETWieentUvg7jIT-3aP5GG",
			want:    "UQA1EIDrR33zgL21rwDIfGo7h4ETWieentUvg7jIT-3aP5GG",
		},
		{
			name:    "raw hex gets workchain prefix",
			address: rawHex,
			want:    "0:" + rawHex,
		},
		{
			name:    "already prefixed raw address kept",
			address: "0:" + rawHex,
			want:    "0:" + rawHex,
		},
		{
			name:    "unclear format returned as-is",
			address: "not-an-address",
			want:    "not-an-address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.address); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.address, got, tt.want)
			}
		})
	}
}

func TestCandidateForms(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    []string
	}{
		{
			name:    "friendly address yields one form",
			address: "EQAbc",
			want:    []string{"EQAbc"},
		},
		{
			name:    "raw hex tries prefixed form first",
			address: rawHex,
			want:    []string{"0:" + rawHex, rawHex},
		},
		{
			name:    "prefixed raw yields prefixed then original",
			address: "0:" + rawHex,
			want:    []string{"0:" + rawHex},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CandidateForms(tt.address)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CandidateForms(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}
