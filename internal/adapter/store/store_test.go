package store

import (
	"errors"
	"testing"

	"github.com/oceanscan/pulvis-fes-api/internal/domain"
)

func TestParseIOMode(t *testing.T) {
	tests := []struct {
		in   string
		want IOMode
	}{
		{"", Memory},
		{"memory", Memory},
		{"IO", IO},
		{" lazy ", IO},
	}
	for _, tt := range tests {
		got, err := ParseIOMode(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseIOMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseIOMode("disk"); !errors.Is(err, domain.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestGridSetClose(t *testing.T) {
	calls := 0
	set := &GridSet{Release: func() error {
		calls++
		return errors.New("closing")
	}}

	if err := set.Close(); err == nil {
		t.Error("expected the release error")
	}
	if err := set.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 release, got %d", calls)
	}

	var empty *GridSet
	if err := empty.Close(); err != nil {
		t.Errorf("nil set Close: %v", err)
	}
}
