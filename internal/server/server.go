package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"lifecurve/internal/auth"
	"lifecurve/internal/engine"
	"lifecurve/internal/export"
	"lifecurve/internal/lifetimes"
	"lifecurve/internal/repo"
	"lifecurve/internal/weibull"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     auth.Config
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"bad_request"`
	Message string         `json:"message" example:"shape parameter must be a positive number"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

type requestKey struct{}
type bodyBytesKey struct{}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Lifecurve API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	// Override Huma errors to use the envelope above.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema/request validation errors should be 400 bad_request
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			ctx := context.WithValue(r.Context(), requestKey{}, r)
			ctx = context.WithValue(ctx, bodyBytesKey{}, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Lifecurve API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerAuth(group, cfg.Engine, cfg.Auth)
	registerValidate(group)
	registerGenerate(group, cfg.Engine)
	registerFit(group)
	registerGuided(group)
	registerCurves(group, cfg.Engine)
	registerExport(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, weibull.ErrValidation):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, weibull.ErrInsufficientData):
		return newAPIError(http.StatusUnprocessableEntity, "insufficient_data", err.Error(), nil)
	case errors.Is(err, weibull.ErrNoConvergence):
		return newAPIError(http.StatusUnprocessableEntity, "no_convergence", err.Error(), nil)
	case errors.Is(err, lifetimes.ErrNoValidData):
		return newAPIError(http.StatusUnprocessableEntity, "insufficient_data", err.Error(), nil)
	case errors.Is(err, engine.ErrEmailTaken):
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, engine.ErrBadCredentials):
		return newAPIError(http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case errors.Is(err, repo.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "already exists"):
		return newAPIError(http.StatusConflict, "conflict", msg, nil)
	case strings.Contains(lowered, "not found"):
		return newAPIError(http.StatusNotFound, "not_found", msg, nil)
	case strings.Contains(lowered, "invalid") ||
		strings.Contains(lowered, "required") ||
		strings.Contains(lowered, "must") ||
		strings.Contains(lowered, "please"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			applyAuthSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{
		{"bearerAuth": {}},
	}
	oas.Security = security
	public := publicPaths(basePath)
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if public[route] {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Lifecurve API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate with Authorization: Bearer &lt;token&gt;.
    </p>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerAuth(api huma.API, e engine.Engine, authCfg auth.Config) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Create an account",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body RegisterRequest `json:"body"`
	}) (*struct {
		Body TokenResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		u, err := e.RegisterUser(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		token, err := authCfg.MintToken(u.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TokenResponse `json:"body"`
		}{Body: TokenResponse{Token: token, UserID: u.ID, Email: u.Email}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Exchange credentials for a token",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body TokenResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		u, err := e.Authenticate(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		token, err := authCfg.MintToken(u.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TokenResponse `json:"body"`
		}{Body: TokenResponse{Token: token, UserID: u.ID, Email: u.Email}}, nil
	})
}

func registerValidate(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "validate-parameters",
		Method:      http.MethodPost,
		Path:        "/validate",
		Summary:     "Validate shape and scale parameters",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ValidateRequest `json:"body"`
	}) (*struct {
		Body ValidateResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		ok, msg := weibull.ValidateParameters(input.Body.Shape, input.Body.Scale)
		return &struct {
			Body ValidateResponse `json:"body"`
		}{Body: ValidateResponse{Valid: ok, Message: msg}}, nil
	})
}

func registerGenerate(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "generate-curve",
		Method:      http.MethodPost,
		Path:        "/curves/generate",
		Summary:     "Sample a curve over its display domain",
		Errors: []int{
			http.StatusBadRequest,
		},
	}, func(ctx context.Context, input *struct {
		Body GenerateCurveRequest `json:"body"`
	}) (*struct {
		Body CurveResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		kind := input.Body.CurveType
		if kind == "" {
			kind = e.Config.Defaults.CurveType
		}
		ct, err := weibull.ParseCurveType(kind)
		if err != nil {
			return nil, handleError(err)
		}
		points := input.Body.NumPoints
		if points == 0 {
			points = e.Config.Defaults.PlotPoints
		}
		c, err := weibull.Generate(input.Body.Shape, input.Body.Scale, ct, points)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CurveResponse `json:"body"`
		}{Body: curveResponse(c)}, nil
	})
}

func registerFit(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "fit-points",
		Method:      http.MethodPost,
		Path:        "/fit/points",
		Summary:     "Fit parameters to three failure ages",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		Body FitPointsRequest `json:"body"`
	}) (*struct {
		Body FitResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		if len(input.Body.Ages) != 3 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "exactly three ages are required", nil)
		}
		var ages [3]float64
		copy(ages[:], input.Body.Ages)
		params, err := weibull.FitPoints(ages)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FitResponse `json:"body"`
		}{Body: FitResponse{Shape: params.Shape, Scale: params.Scale, Method: "Point Fit"}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "fit-mle",
		Method:      http.MethodPost,
		Path:        "/fit/mle",
		Summary:     "Fit parameters to observed lifetimes",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		Body FitMLERequest `json:"body"`
	}) (*struct {
		Body FitMLEResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		params, err := weibull.FitMLE(input.Body.Lifetimes)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FitMLEResponse `json:"body"`
		}{Body: FitMLEResponse{
			FitResponse: FitResponse{Shape: params.Shape, Scale: params.Scale, Method: "Data Fit (MLE)"},
			Sample:      lifetimes.Summarize(input.Body.Lifetimes),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "fit-mle-csv",
		Method:      http.MethodPost,
		Path:        "/fit/mle/csv",
		Summary:     "Fit parameters to a CSV of asset service records",
		Description: "Accepts text/csv with asset_identifier, in_service_date and retirement_date columns. Rows still in service are skipped.",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		RawBody []byte `contentType:"text/csv"`
	}) (*struct {
		Body FitMLEResponse `json:"body"`
	}, error) {
		if len(input.RawBody) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		records, err := lifetimes.ReadCSV(bytes.NewReader(input.RawBody))
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		data, err := lifetimes.FromRecords(records)
		if err != nil {
			return nil, handleError(err)
		}
		params, err := weibull.FitMLE(data)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FitMLEResponse `json:"body"`
		}{Body: FitMLEResponse{
			FitResponse: FitResponse{Shape: params.Shape, Scale: params.Scale, Method: "Data Fit (MLE)"},
			Sample:      lifetimes.Summarize(data),
		}}, nil
	})
}

func registerGuided(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "guided-parameters",
		Method:      http.MethodPost,
		Path:        "/guided",
		Summary:     "Map questionnaire answers to starting parameters",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body GuidedRequest `json:"body"`
	}) (*struct {
		Body FitResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		params, err := weibull.GuidedParameters(weibull.GuidedAnswers{
			Pattern:     weibull.FailurePattern(strings.ToLower(strings.TrimSpace(input.Body.Pattern))),
			Predictable: input.Body.Predictable,
			Defects:     input.Body.Defects,
			LateLife:    input.Body.LateLife,
			AverageLife: input.Body.AverageLife,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FitResponse `json:"body"`
		}{Body: FitResponse{Shape: params.Shape, Scale: params.Scale, Method: "Guided Selection"}}, nil
	})
}

func registerCurves(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "save-curve",
		Method:        http.MethodPost,
		Path:          "/curves",
		Summary:       "Save a named curve",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusConflict,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, input *struct {
		Body SaveCurveRequest `json:"body"`
	}) (*struct {
		Body SavedCurveResponse `json:"body"`
	}, error) {
		if len(bodyBytes(ctx)) == 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "body required", nil)
		}
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := e.SaveCurve(ctx, engine.SaveCurveOptions{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Shape:       input.Body.Shape,
			Scale:       input.Body.Scale,
			Method:      input.Body.Method,
			UserID:      userID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SavedCurveResponse `json:"body"`
		}{Body: savedCurveResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-curves",
		Method:      http.MethodGet,
		Path:        "/curves",
		Summary:     "List saved curves, newest first",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []SavedCurveResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		items, err := e.ListCurves(ctx, userID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []SavedCurveResponse `json:"body"`
		}{Body: mapSavedCurves(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-curve",
		Method:      http.MethodGet,
		Path:        "/curves/{name}",
		Summary:     "Get a saved curve",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name"`
	}) (*struct {
		Body SavedCurveResponse `json:"body"`
	}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := e.GetCurve(ctx, userID, input.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SavedCurveResponse `json:"body"`
		}{Body: savedCurveResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-curve",
		Method:      http.MethodDelete,
		Path:        "/curves/{name}",
		Summary:     "Delete a saved curve",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name"`
	}) (*struct{}, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.DeleteCurve(ctx, userID, input.Name); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerExport(api huma.API, e engine.Engine) {
	type exportOutput struct {
		ContentType        string `header:"Content-Type"`
		ContentDisposition string `header:"Content-Disposition"`
		Body               []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "export-curve",
		Method:      http.MethodGet,
		Path:        "/curves/{name}/export",
		Summary:     "Download a saved curve as CSV or Excel",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		Name   string `path:"name"`
		Kind   string `query:"kind" default:"both" enum:"pdf,cdf,both"`
		Format string `query:"format" default:"csv" enum:"csv,xlsx"`
		Points int    `query:"points"`
	}) (*exportOutput, error) {
		userID, authErr := userIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := e.GetCurve(ctx, userID, input.Name)
		if err != nil {
			return nil, handleError(err)
		}
		points := input.Points
		if points == 0 {
			points = e.Config.Defaults.ExportPoints
		}
		tbl, err := export.CurveData(c.Shape, c.Scale, export.Kind(input.Kind), points)
		if err != nil {
			return nil, handleError(err)
		}
		out := &exportOutput{}
		switch input.Format {
		case "xlsx":
			data, err := export.Excel(tbl)
			if err != nil {
				return nil, handleError(err)
			}
			out.Body = data
			out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
			out.ContentDisposition = fmt.Sprintf("attachment; filename=%q", export.Filename("weibull_curve", "xlsx", e.Now()))
		default:
			data, err := export.CSV(tbl)
			if err != nil {
				return nil, handleError(err)
			}
			out.Body = data
			out.ContentType = "text/csv"
			out.ContentDisposition = fmt.Sprintf("attachment; filename=%q", export.Filename("weibull_curve", "csv", e.Now()))
		}
		return out, nil
	})
}

func bodyBytes(ctx context.Context) []byte {
	if buf, ok := ctx.Value(bodyBytesKey{}).([]byte); ok {
		return buf
	}
	req, ok := ctx.Value(requestKey{}).(*http.Request)
	if !ok || req == nil {
		return nil
	}
	data, _ := io.ReadAll(req.Body)
	return data
}
