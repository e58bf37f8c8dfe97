package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tabloom-cli/internal/crosstab"
	"github.com/KaramelBytes/tabloom-cli/internal/detect"
	"github.com/KaramelBytes/tabloom-cli/internal/openend"
	"github.com/KaramelBytes/tabloom-cli/internal/report"
)

func newTestServer() *httptest.Server {
	s := New(Options{
		Timeout: 5 * time.Second,
		Coding:  openend.DefaultSettings(),
		Profile: detect.DefaultProfileOptions(),
		Report:  report.DefaultOptions(),
	})
	return httptest.NewServer(s.Handler())
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(srv.URL+path, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func surveyPayload() DatasetPayload {
	p := DatasetPayload{Headers: []string{"Gender", "Region", "Score"}}
	for i := 0; i < 12; i++ {
		gender := "Male"
		if i%3 == 0 {
			gender = "Female"
		}
		region := "North"
		if i%2 == 0 {
			region = "South"
		}
		p.Rows = append(p.Rows, []any{gender, region, float64(i%5 + 1)})
	}
	return p
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestCrossTabs(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := post(t, srv, "/v1/crosstabs", CrossTabRequest{
		Dataset: surveyPayload(),
		Config: crosstab.Config{
			TableVariables:  []string{"Gender"},
			BannerVariables: []string{"Region"},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run crosstab.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	require.Len(t, run.Results, 1)
	assert.Equal(t, []string{"Total", "North", "South"}, run.Results[0].Headers)
	assert.Equal(t, []int{12, 6, 6}, run.Results[0].BaseValues)
	assert.Equal(t, 12, run.TotalRows)
}

func TestCrossTabs_Markdown(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := post(t, srv, "/v1/crosstabs", CrossTabRequest{
		Dataset: surveyPayload(),
		Config:  crosstab.Config{TableVariables: []string{"Gender"}},
		Format:  "markdown",
		Report:  &report.Options{Percentages: true},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "[CROSS-TAB SUMMARY]"))
}

func TestCrossTabs_Errors(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	tests := []struct {
		name   string
		body   CrossTabRequest
		status int
		kind   string
	}{
		{"unknown column", CrossTabRequest{
			Dataset: surveyPayload(),
			Config:  crosstab.Config{TableVariables: []string{"Age"}},
		}, http.StatusBadRequest, "VALIDATION"},
		{"missing tables", CrossTabRequest{Dataset: surveyPayload()}, http.StatusBadRequest, "VALIDATION"},
		{"custom variable", CrossTabRequest{
			Dataset: surveyPayload(),
			Config: crosstab.Config{
				TableVariables:  []string{"Band"},
				CustomVariables: map[string]crosstab.CustomVariable{"Band": {Label: "Band"}},
			},
		}, http.StatusNotImplemented, "UNSUPPORTED"},
		{"bad format", CrossTabRequest{
			Dataset: surveyPayload(),
			Config:  crosstab.Config{TableVariables: []string{"Gender"}},
			Format:  "pdf",
		}, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv, "/v1/crosstabs", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.kind, body.Error.Kind)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/code", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDetect(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := post(t, srv, "/v1/detect", DetectRequest{Dataset: surveyPayload(), Banners: []string{"Region"}})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out DetectResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Profile)
	assert.Equal(t, []string{"Gender", "Region", "Score"}, out.Profile.Headers)
	assert.Equal(t, []string{"Region"}, out.Config.BannerVariables)
	assert.Equal(t, []string{"Gender", "Score"}, out.Config.TableVariables)

	bad := post(t, srv, "/v1/detect", DetectRequest{Dataset: surveyPayload(), Banners: []string{"Nope"}})
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestCode(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	resp := post(t, srv, "/v1/code", CodeRequest{
		Column: "Why",
		Responses: []string{
			"The price is too expensive",
			"Great value for the money",
			"Delivery was slow",
			"",
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var coding openend.Coding
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&coding))
	assert.Equal(t, "Why", coding.QuestionColumn)
	require.Len(t, coding.Responses, 3)
	ids := map[string]bool{}
	for _, c := range coding.Categories {
		ids[c.ID] = true
	}
	for _, r := range coding.Responses {
		assert.True(t, ids[r.CategoryID], r.ID)
	}

	empty := post(t, srv, "/v1/code", CodeRequest{})
	defer empty.Body.Close()
	assert.Equal(t, http.StatusBadRequest, empty.StatusCode)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Options{}).ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
