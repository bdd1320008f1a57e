package config

import (
	"testing"
	"time"
)

func TestAsDuration(t *testing.T) {
	cases := []struct {
		in   interface{}
		want time.Duration
	}{
		{nil, 0},
		{"1m30s", 90 * time.Second},
		{5, 5 * time.Second},
		{int64(2), 2 * time.Second},
		{2.5, 2500 * time.Millisecond},
		{time.Minute, time.Minute},
	}
	for _, tc := range cases {
		got, err := asDuration(tc.in)
		if err != nil {
			t.Errorf("asDuration(%v): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("asDuration(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := asDuration("not a duration"); err == nil {
		t.Error("expected error for unparsable duration string")
	}
	if _, err := asDuration(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestAsStringSlice(t *testing.T) {
	got, err := asStringSlice([]interface{}{"a", "b"})
	if err != nil || len(got) != 2 || got[0] != "a" {
		t.Fatalf("asStringSlice = %v, %v", got, err)
	}

	got, err = asStringSlice("solo")
	if err != nil || len(got) != 1 || got[0] != "solo" {
		t.Fatalf("asStringSlice scalar = %v, %v", got, err)
	}
}

func TestLookupSettingFallsBackToLowercase(t *testing.T) {
	settings := map[string]interface{}{"stop_file": "x.flag"}
	if _, ok := lookupSetting(settings, "STOP_FILE", "stop_file"); !ok {
		t.Fatal("lookup should match lowercase key")
	}
	if _, ok := lookupSetting(settings, "missing"); ok {
		t.Fatal("lookup of absent key should fail")
	}
}
