package main

import (
	"testing"

	"github.com/duetsim/duet/internal/config"
)

func TestSplitNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"spaces", " a , b ", []string{"a", "b"}},
		{"empty parts", "a,,b,", []string{"a", "b"}},
		{"single", "Generalist", []string{"Generalist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitNames(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitNames(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitNames(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q, want 01234567", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q, want abc", got)
	}
}

func TestGetConfigValue(t *testing.T) {
	cfg := config.Default()

	got, err := getConfigValue(cfg, "defaults.turns")
	if err != nil {
		t.Fatalf("getConfigValue: %v", err)
	}
	if got != "10" {
		t.Errorf("defaults.turns = %q, want 10", got)
	}

	got, err = getConfigValue(cfg, "Generalist")
	if err != nil {
		t.Fatalf("getConfigValue: %v", err)
	}
	if got != "meta-llama/llama-3-70b-instruct" {
		t.Errorf("Generalist = %q", got)
	}

	if _, err := getConfigValue(cfg, "no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestCreateClient_UnknownProvider(t *testing.T) {
	if _, err := createClient(config.Default(), "grpc"); err == nil {
		t.Error("expected error for unknown provider")
	}
}
