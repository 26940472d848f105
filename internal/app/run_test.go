package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/citypage-weather/internal/client"
	"github.com/kjstillabower/citypage-weather/internal/config"
	"github.com/kjstillabower/citypage-weather/internal/service"
)

// newDatamart serves testdata fixtures under /{province}/{file} like the citypage datamart.
func newDatamart(t *testing.T) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/{province}/{file}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		data, err := os.ReadFile(filepath.Join("testdata", vars["province"], vars["file"]))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write(data)
	}).Methods(http.MethodGet)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// runCLI mimics main: run once, render any error as an envelope, report the exit code.
func runCLI(t *testing.T, cfg *config.Config) (string, int) {
	t.Helper()
	svc := service.NewWeatherService(client.NewCitypageClient(2*time.Second, "test"), zap.NewNop())
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, svc, &out, nil); err != nil {
		WriteError(&out, err)
		return out.String(), 1
	}
	return out.String(), 0
}

func TestRun_TemperatureOnly(t *testing.T) {
	srv := newDatamart(t)
	out, code := runCLI(t, &config.Config{URL: srv.URL + "/QC/s0000635_e.xml", Mode: config.ModeTemperature})
	if code != 0 {
		t.Fatalf("exit code = %d, output %q", code, out)
	}
	if out != "-3.2\n" {
		t.Errorf("output = %q, want %q", out, "-3.2\n")
	}
}

func TestRun_PrintsFeedText(t *testing.T) {
	srv := newDatamart(t)
	tests := []struct {
		mode config.Mode
		want string
	}{
		{config.ModeTemperature, "20.0\n"},
		{config.ModeRelativeHumidity, "71.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out, code := runCLI(t, &config.Config{URL: srv.URL + "/ON/s0000458_e.xml", Mode: tt.mode})
			if code != 0 {
				t.Fatalf("exit code = %d, output %q", code, out)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRun_HumidityOnlyUnavailable(t *testing.T) {
	srv := newDatamart(t)
	out, code := runCLI(t, &config.Config{URL: srv.URL + "/QC/s0000635_e.xml", Mode: config.ModeRelativeHumidity})
	if code == 0 {
		t.Fatalf("exit code = 0, want non-zero; output %q", out)
	}
	var env map[string]string
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("output %q is not a JSON envelope: %v", out, err)
	}
	if len(env) != 1 || !strings.Contains(env["error"], "relative humidity not available") {
		t.Errorf("envelope = %v", env)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("output %q should be a single line", out)
	}
}

func TestRun_HumidityOnlyText(t *testing.T) {
	srv := newDatamart(t)
	out, code := runCLI(t, &config.Config{URL: srv.URL + "/ON/s0000458_f.xml", Mode: config.ModeRelativeHumidity})
	if code != 0 || out != "M\n" {
		t.Errorf("output = %q (exit %d), want M", out, code)
	}
}

func TestRun_JSON(t *testing.T) {
	srv := newDatamart(t)
	out, code := runCLI(t, &config.Config{URL: srv.URL + "/QC/s0000635_e.xml", Mode: config.ModeJSON})
	if code != 0 {
		t.Fatalf("exit code = %d, output %q", code, out)
	}
	if !strings.HasSuffix(out, "\n") || strings.Count(out, "\n") != 1 {
		t.Errorf("output %q should be exactly one line", out)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := doc["relativeHumidity"]; ok {
		t.Error("relativeHumidity key present, want omitted")
	}
	if _, ok := doc["dateTime"]; ok {
		t.Error("raw dateTime records must not be serialized")
	}
	if string(doc["timestamp"]) != `"2024-01-15T19:30:00Z"` {
		t.Errorf("timestamp = %s", doc["timestamp"])
	}
	if string(doc["temperature"]) != `{"value":-3.2,"unitType":"metric","units":"C"}` {
		t.Errorf("temperature = %s", doc["temperature"])
	}
}

func TestRun_NotFound(t *testing.T) {
	srv := newDatamart(t)
	url := srv.URL + "/QC/s9999999_e.xml"
	out, code := runCLI(t, &config.Config{URL: url, Mode: config.ModeJSON})
	if code == 0 {
		t.Fatal("exit code = 0, want non-zero")
	}
	var env map[string]string
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("output %q is not a JSON envelope: %v", out, err)
	}
	if !strings.Contains(env["error"], url) || !strings.Contains(env["error"], "404") {
		t.Errorf("error %q should contain URL and status", env["error"])
	}
}

func TestRun_MalformedDocument(t *testing.T) {
	srv := newDatamart(t)
	out, code := runCLI(t, &config.Config{URL: srv.URL + "/QC/broken.xml", Mode: config.ModeTemperature})
	if code == 0 {
		t.Fatal("exit code = 0, want non-zero")
	}
	if !strings.HasPrefix(out, `{"error":"map `) {
		t.Errorf("output = %q", out)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestRun_WriteFailure(t *testing.T) {
	srv := newDatamart(t)
	svc := service.NewWeatherService(client.NewCitypageClient(2*time.Second, ""), nil)
	err := Run(context.Background(), &config.Config{URL: srv.URL + "/QC/s0000635_e.xml"}, svc, failingWriter{}, nil)
	if err == nil || !strings.Contains(err.Error(), "write output") {
		t.Errorf("Run() error = %v, want write output error", err)
	}
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, errors.New(`bad "quote"`))
	if buf.String() != `{"error":"bad \"quote\""}`+"\n" {
		t.Errorf("WriteError() = %q", buf.String())
	}
}
