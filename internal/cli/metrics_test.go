package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/moredip/session-share/internal/observability"
)

func TestParseSinceDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{"empty defaults to 7d", "", false, ""},
		{"whitespace defaults to 7d", "  ", false, ""},
		{"valid 7d", "7d", false, ""},
		{"valid 30d", "30d", false, ""},
		{"valid 24h", "24h", false, ""},
		{"invalid suffix", "abc", true, "unsupported duration format"},
		{"invalid day number", "xd", true, "invalid day duration"},
		{"invalid hour number", "yh", true, "invalid hour duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSinceDuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMetricsCmd_NilCalculator(t *testing.T) {
	orig := MetricsCalc
	defer func() { MetricsCalc = orig }()
	MetricsCalc = nil

	_, _, err := runCmd(t, metricsCmd, nil, "")
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("err = %v", err)
	}
}

func TestMetricsCmd_TableFormat(t *testing.T) {
	orig, origSince, origJSON := MetricsCalc, metricsSince, metricsJSON
	defer func() { MetricsCalc, metricsSince, metricsJSON = orig, origSince, origJSON }()
	metricsSince = "7d"
	metricsJSON = false

	MetricsCalc = &metricsMock{calcFn: func(time.Time) (*observability.Metrics, error) {
		return &observability.Metrics{
			BundlesCreated:    5,
			PartialPublishes:  1,
			EventCount:        42,
			BundlesByProtocol: map[string]int{"two-phase": 4, "single-phase": 1},
		}, nil
	}}

	out, _, err := runCmd(t, metricsCmd, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Bundles created:", "42", "two-phase:", "single-phase:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "single-phase:") > strings.Index(out, "two-phase:") {
		t.Error("protocols should be listed alphabetically")
	}
}

func TestMetricsCmd_JSONFormat(t *testing.T) {
	orig, origSince, origJSON := MetricsCalc, metricsSince, metricsJSON
	defer func() { MetricsCalc, metricsSince, metricsJSON = orig, origSince, origJSON }()
	metricsSince = "30d"
	metricsJSON = true

	MetricsCalc = &metricsMock{calcFn: func(time.Time) (*observability.Metrics, error) {
		return &observability.Metrics{BundlesIndexed: 3, EventCount: 10}, nil
	}}

	out, _, err := runCmd(t, metricsCmd, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var m observability.Metrics
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if m.BundlesIndexed != 3 {
		t.Errorf("BundlesIndexed = %d", m.BundlesIndexed)
	}
}

func TestMetricsCmd_CalculateError(t *testing.T) {
	orig, origSince := MetricsCalc, metricsSince
	defer func() { MetricsCalc, metricsSince = orig, origSince }()
	metricsSince = "7d"
	MetricsCalc = &metricsMock{calcFn: func(time.Time) (*observability.Metrics, error) {
		return nil, fmt.Errorf("event log corrupted")
	}}

	_, _, err := runCmd(t, metricsCmd, nil, "")
	if err == nil || !strings.Contains(err.Error(), "calculating metrics") {
		t.Errorf("err = %v", err)
	}
}
