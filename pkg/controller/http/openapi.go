package http

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/datamart/pkg/domain/model"
)

//go:embed openapi.yaml
var openapiSpec []byte

// loadOpenAPI parses and validates the embedded API document
func loadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load OpenAPI document")
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, goerr.Wrap(err, "invalid OpenAPI document")
	}
	return doc, nil
}

// newRequestValidator returns a middleware validating query parameters of
// documented routes. Requests for undocumented paths pass through.
func newRequestValidator(ctx context.Context) (func(http.Handler) http.Handler, error) {
	doc, err := loadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build OpenAPI router")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					MultiError:         false,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				writeError(w, r, goerr.Wrap(err, "request does not match API document",
					goerr.T(model.ErrTagInvalidInput)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// handleOpenAPI serves the embedded API document
func handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapiSpec)
}
