package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// newMetricsEnv returns registered metrics plus a registry to gather from.
func newMetricsEnv(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	return m, reg
}

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	for i := range families {
		if families[i].GetName() == name {
			return families[i]
		}
	}
	return nil
}

func TestHTTPMetrics(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		requestBody    string
		responseStatus int
		responseBody   string
		wantMetrics    bool
	}{
		{
			name:           "doctor listing",
			method:         http.MethodGet,
			path:           "/api/doctors",
			responseStatus: http.StatusOK,
			responseBody:   `{"doctors":[],"count":0}`,
			wantMetrics:    true,
		},
		{
			name:           "triage submission",
			method:         http.MethodPost,
			path:           "/api/triage",
			requestBody:    `{"complaint_text":"severe chest pain"}`,
			responseStatus: http.StatusCreated,
			responseBody:   `{"emergency_id":"7f3c"}`,
			wantMetrics:    true,
		},
		{
			name:           "unknown route",
			method:         http.MethodGet,
			path:           "/api/unknown",
			responseStatus: http.StatusNotFound,
			responseBody:   `{"error":{"code":"NOT_FOUND"}}`,
			wantMetrics:    true,
		},
		{
			name:           "health check excluded",
			method:         http.MethodGet,
			path:           "/health",
			responseStatus: http.StatusOK,
			responseBody:   `{"status":"ok"}`,
			wantMetrics:    false,
		},
		{
			name:           "readiness check excluded",
			method:         http.MethodGet,
			path:           "/ready",
			responseStatus: http.StatusOK,
			responseBody:   `{"ready":true}`,
			wantMetrics:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reg := newMetricsEnv(t)

			wrapped := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.responseStatus)
				_, _ = w.Write([]byte(tt.responseBody))
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.requestBody != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.requestBody))
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.responseStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.responseStatus)
			}

			duration := gatherFamily(t, reg, MetricHTTPRequestDuration)
			total := gatherFamily(t, reg, MetricHTTPRequestsTotal)

			if tt.wantMetrics {
				if duration == nil {
					t.Error("duration metric not found")
				}
				if total == nil {
					t.Error("total metric not found")
				}
				return
			}
			if duration != nil && len(duration.GetMetric()) > 0 {
				t.Errorf("expected no duration observations for %s", tt.path)
			}
			if total != nil && len(total.GetMetric()) > 0 {
				t.Errorf("expected no counter increments for %s", tt.path)
			}
		})
	}
}

func TestHTTPMetrics_Labels(t *testing.T) {
	m, reg := newMetricsEnv(t)

	wrapped := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"doctors":[]}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	total := gatherFamily(t, reg, MetricHTTPRequestsTotal)
	if total == nil {
		t.Fatal("total metric not found")
	}
	if len(total.GetMetric()) != 1 {
		t.Fatalf("expected 1 metric entry, got %d", len(total.GetMetric()))
	}

	labelMap := make(map[string]string)
	for _, label := range total.GetMetric()[0].GetLabel() {
		labelMap[label.GetName()] = label.GetValue()
	}

	want := map[string]string{
		"method": "GET",
		"path":   "/api/doctors",
		"status": "200",
	}
	for name, value := range want {
		if labelMap[name] != value {
			t.Errorf("%s label = %s, want %s", name, labelMap[name], value)
		}
	}
}

func TestHTTPMetrics_ResponseSize(t *testing.T) {
	m, reg := newMetricsEnv(t)

	responseBody := `{"ambulances":[],"count":0}`
	wrapped := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(responseBody))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/ambulances", nil)
	wrapped.ServeHTTP(httptest.NewRecorder(), req)

	family := gatherFamily(t, reg, MetricHTTPResponseSizeBytes)
	if family == nil {
		t.Fatal("response size metric not found")
	}
	if len(family.GetMetric()) != 1 {
		t.Fatalf("expected 1 metric entry, got %d", len(family.GetMetric()))
	}

	histogram := family.GetMetric()[0].GetHistogram()
	if histogram == nil {
		t.Fatal("expected histogram, got nil")
	}
	if histogram.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", histogram.GetSampleCount())
	}
	if want := float64(len(responseBody)); histogram.GetSampleSum() != want {
		t.Errorf("sample sum = %f, want %f", histogram.GetSampleSum(), want)
	}
}

func TestMetricsResponseWriter_MultipleWrites(t *testing.T) {
	mrw := newMetricsResponseWriter(httptest.NewRecorder())

	n1, err := mrw.Write([]byte(`{"winner_id":1,`))
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	n2, err := mrw.Write([]byte(`"score":87.5}`))
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	if want := int64(n1 + n2); mrw.size != want {
		t.Errorf("size = %d, want %d", mrw.size, want)
	}
}

func TestMetricsResponseWriter_WriteHeaderOnce(t *testing.T) {
	mrw := newMetricsResponseWriter(httptest.NewRecorder())

	mrw.WriteHeader(http.StatusCreated)
	mrw.WriteHeader(http.StatusInternalServerError)

	if mrw.statusCode != http.StatusCreated {
		t.Errorf("statusCode = %d, want %d (later WriteHeader calls ignored)", mrw.statusCode, http.StatusCreated)
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	m, reg := newMetricsEnv(t)

	m.ObserveHTTPRequest("GET", "/api/doctors", "200", 0.123, 100, 500)
	m.ObserveHTTPRequest("POST", "/api/triage", "201", 0.456, 200, 300)
	m.ObserveHTTPRequest("GET", "/api/doctors", "200", 0.789, 150, 600)

	for _, name := range []string{
		MetricHTTPRequestDuration,
		MetricHTTPRequestsTotal,
		MetricHTTPRequestSizeBytes,
		MetricHTTPResponseSizeBytes,
	} {
		if gatherFamily(t, reg, name) == nil {
			t.Errorf("metric %s not found", name)
		}
	}

	total := gatherFamily(t, reg, MetricHTTPRequestsTotal)
	if total == nil {
		t.Fatal("total metric not found")
	}
	// Two distinct label sets: GET /api/doctors 200 and POST /api/triage 201.
	if len(total.GetMetric()) != 2 {
		t.Errorf("expected 2 label sets, got %d", len(total.GetMetric()))
	}
}
