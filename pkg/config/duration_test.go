package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalsFromString(t *testing.T) {
	var holder struct {
		Interval Duration `yaml:"interval"`
	}
	if err := yaml.Unmarshal([]byte("interval: 5m30s\n"), &holder); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := 5*time.Minute + 30*time.Second
	if holder.Interval.Duration() != want {
		t.Errorf("got %v, want %v", holder.Interval.Duration(), want)
	}
}

func TestDurationUnmarshalsEmptyAsZero(t *testing.T) {
	var holder struct {
		Interval Duration `yaml:"interval"`
	}
	if err := yaml.Unmarshal([]byte("interval: \"\"\n"), &holder); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if holder.Interval.Duration() != 0 {
		t.Errorf("expected zero duration, got %v", holder.Interval.Duration())
	}
}

func TestDurationUnmarshalRejectsInvalidText(t *testing.T) {
	var holder struct {
		Interval Duration `yaml:"interval"`
	}
	if err := yaml.Unmarshal([]byte("interval: not-a-duration\n"), &holder); err == nil {
		t.Fatal("expected an error for an invalid duration string")
	}
}
