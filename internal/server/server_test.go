package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"lifecurve/internal/auth"
	"lifecurve/internal/config"
	"lifecurve/internal/db"
	"lifecurve/internal/engine"
	"lifecurve/internal/migrate"
)

const testSecret = "test-secret-0123456789"

type testServer struct {
	URL    string
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	workspace := t.TempDir()
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	e := engine.New(conn, config.Default())
	handler, err := New(Config{
		Engine:   e,
		BasePath: "/v0",
		Auth:     auth.Config{JWTSecret: testSecret},
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	return testSrv, func() { testSrv.Close() }
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func registerAndLogin(t *testing.T, srv *testServer) (string, TokenResponse) {
	t.Helper()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/register", map[string]any{
		"email":    "jo@example.com",
		"password": "hunter2hunter2",
	}, nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d: %s", res.StatusCode, string(data))
	}
	var tok TokenResponse
	if err := json.Unmarshal(data, &tok); err != nil {
		t.Fatalf("unmarshal token: %v", err)
	}
	if tok.Token == "" {
		t.Fatal("register returned empty token")
	}
	return "Bearer " + tok.Token, tok
}

func TestHealthNeedsNoAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, string(data))
	}
}

func TestRegisterLoginAndListCurves(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	bearer, tok := registerAndLogin(t, srv)

	// Login with the same credentials mints a fresh token.
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"email":    tok.Email,
		"password": "hunter2hunter2",
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status %d: %s", res.StatusCode, string(data))
	}

	// Wrong password is a uniform 401.
	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/auth/login", map[string]any{
		"email":    tok.Email,
		"password": "wrong-password",
	}, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status %d, want 401", res.StatusCode)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/curves", nil, map[string]string{"Authorization": bearer})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list curves status %d: %s", res.StatusCode, string(data))
	}
	var items []SavedCurveResponse
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("unmarshal curves: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no curves, got %d", len(items))
	}
}

func TestCurvesRequireAuth(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/curves", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list status %d, want 401", res.StatusCode)
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/curves", nil, map[string]string{"Authorization": "Bearer not-a-token"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token list status %d, want 401", res.StatusCode)
	}
}

func TestValidateAndGenerate(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/validate", map[string]any{
		"shape": -1.0, "scale": 10.0,
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("validate status %d: %s", res.StatusCode, string(data))
	}
	var v ValidateResponse
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Valid || !strings.Contains(v.Message, "shape") {
		t.Fatalf("validate = %+v, want invalid shape message", v)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/curves/generate", map[string]any{
		"shape": 2.0, "scale": 10.0, "curve_type": "cdf", "num_points": 25,
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("generate status %d: %s", res.StatusCode, string(data))
	}
	var c CurveResponse
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Type != "cdf" || len(c.X) != 25 || len(c.Y) != 25 {
		t.Fatalf("generate = type %s, %d/%d points", c.Type, len(c.X), len(c.Y))
	}
	if c.X[0] != 0 || c.Y[0] == nil || *c.Y[0] != 0 {
		t.Fatalf("cdf does not start at origin: (%g, %v)", c.X[0], c.Y[0])
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/curves/generate", map[string]any{
		"shape": 0.0, "scale": 10.0,
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad generate status %d, want 400", res.StatusCode)
	}
}

func TestGenerateInfantMortalityCurves(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	// shape < 1 makes the pdf and hazard unbounded at x=0. The response
	// must still be a well-formed 200 with the origin sample null, not a
	// dropped connection.
	for _, kind := range []string{"pdf", "hazard"} {
		res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/curves/generate", map[string]any{
			"shape": 0.5, "scale": 10.0, "curve_type": kind, "num_points": 20,
		}, nil)
		if res.StatusCode != http.StatusOK {
			t.Fatalf("%s generate status %d: %s", kind, res.StatusCode, string(data))
		}
		var c CurveResponse
		if err := json.Unmarshal(data, &c); err != nil {
			t.Fatalf("%s unmarshal: %v", kind, err)
		}
		if len(c.Y) != 20 {
			t.Fatalf("%s returned %d points, want 20", kind, len(c.Y))
		}
		if c.Y[0] != nil {
			t.Fatalf("%s y[0] = %v, want null at the unbounded origin", kind, *c.Y[0])
		}
		for i := 1; i < len(c.Y); i++ {
			if c.Y[i] == nil {
				t.Fatalf("%s y[%d] is null, want a finite sample", kind, i)
			}
		}
	}

	// The cdf stays in [0,1] everywhere, so no sample is null.
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/curves/generate", map[string]any{
		"shape": 0.5, "scale": 10.0, "curve_type": "cdf", "num_points": 20,
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("cdf generate status %d: %s", res.StatusCode, string(data))
	}
	var c CurveResponse
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("cdf unmarshal: %v", err)
	}
	for i, y := range c.Y {
		if y == nil {
			t.Fatalf("cdf y[%d] is null", i)
		}
	}
}

func TestFitEndpoints(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/fit/points", map[string]any{
		"ages": []float64{5.0, 8.0, 11.0},
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("fit points status %d: %s", res.StatusCode, string(data))
	}
	var fit FitResponse
	if err := json.Unmarshal(data, &fit); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fit.Shape <= 0 || fit.Scale <= 0 || fit.Method != "Point Fit" {
		t.Fatalf("fit points = %+v", fit)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/fit/points", map[string]any{
		"ages": []float64{11.0, 8.0, 5.0},
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("descending ages status %d, want 400", res.StatusCode)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/fit/mle", map[string]any{
		"lifetimes": []float64{4.1, 5.2, 6.3, 7.5, 8.1, 9.4, 10.2, 11.8, 12.0, 13.5},
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("fit mle status %d: %s", res.StatusCode, string(data))
	}
	var mle FitMLEResponse
	if err := json.Unmarshal(data, &mle); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mle.Shape <= 0 || mle.Scale <= 0 || mle.Sample.Count != 10 {
		t.Fatalf("fit mle = %+v", mle)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/fit/mle", map[string]any{
		"lifetimes": []float64{4.1},
	}, nil)
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("single lifetime status %d, want 422", res.StatusCode)
	}
}

func TestFitMLEFromCSV(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	csvBody := "asset_identifier,in_service_date,retirement_date\n" +
		"A1,2010-01-01,2018-06-01\n" +
		"A2,2011-03-15,2020-01-10\n" +
		"A3,2012-07-01,2019-02-20\n" +
		"A4,2009-05-05,2021-08-08\n" +
		"A5,2013-01-01,\n" // still in service, skipped
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v0/fit/mle/csv", strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("fit mle csv status %d: %s", res.StatusCode, string(data))
	}
	var mle FitMLEResponse
	if err := json.Unmarshal(data, &mle); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mle.Sample.Count != 4 {
		t.Fatalf("sample count = %d, want 4 (in-service row skipped)", mle.Sample.Count)
	}
	if mle.Shape <= 0 || mle.Scale <= 0 {
		t.Fatalf("fit = %+v", mle.FitResponse)
	}
}

func TestGuidedParameters(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/guided", map[string]any{
		"pattern": "wearout", "predictable": true, "average_life": 12.0,
	}, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("guided status %d: %s", res.StatusCode, string(data))
	}
	var fit FitResponse
	if err := json.Unmarshal(data, &fit); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fit.Shape != 4.0 || fit.Scale != 12.0 || fit.Method != "Guided Selection" {
		t.Fatalf("guided = %+v", fit)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/guided", map[string]any{
		"pattern": "mystery", "average_life": 12.0,
	}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown pattern status %d, want 400", res.StatusCode)
	}
}

func TestSaveDeleteAndExportCurve(t *testing.T) {
	srv, cleanup := newTestServer(t)
	defer cleanup()
	bearer, _ := registerAndLogin(t, srv)
	hdr := map[string]string{"Authorization": bearer}

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/curves", map[string]any{
		"name": "pumps", "shape": 2.0, "scale": 10.0, "method": "Point Fit",
	}, hdr)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("save curve status %d: %s", res.StatusCode, string(data))
	}
	var saved SavedCurveResponse
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if saved.ID == "" || saved.Name != "pumps" {
		t.Fatalf("saved = %+v", saved)
	}

	// Duplicate name conflicts.
	res, _ = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/curves", map[string]any{
		"name": "pumps", "shape": 3.0, "scale": 5.0,
	}, hdr)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate save status %d, want 409", res.StatusCode)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/curves/pumps/export?kind=both&format=csv", nil, hdr)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("export status %d: %s", res.StatusCode, string(data))
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("export content type %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); !strings.Contains(cd, "weibull_curve_") {
		t.Fatalf("export disposition %q", cd)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if !strings.Contains(header, "X_Value") || !strings.Contains(header, "Cumulative_Probability") {
		t.Fatalf("export header %q", header)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodDelete, srv.URL+"/v0/curves/pumps", nil, hdr)
	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", res.StatusCode)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/curves/pumps", nil, hdr)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted status %d, want 404", res.StatusCode)
	}
}
