package http

import (
	"io"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

func TestClientFiberErrorsKeepStatusAsValidation(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Post("/too-large", func(*fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })
	app.Get("/not-allowed", func(*fiber.Ctx) error { return fiber.ErrMethodNotAllowed })
	app.Get("/unavailable", func(*fiber.Ctx) error { return fiber.ErrServiceUnavailable })

	cases := []struct {
		method string
		path   string
		status int
		code   string
	}{
		{fiber.MethodPost, "/too-large", fiber.StatusRequestEntityTooLarge, apperrors.CodeValidation},
		{fiber.MethodGet, "/not-allowed", fiber.StatusMethodNotAllowed, apperrors.CodeValidation},
		{fiber.MethodGet, "/unavailable", fiber.StatusInternalServerError, apperrors.CodeUnclassified},
	}

	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil), -1)
		if err != nil {
			t.Fatalf("app.Test %s: %v", tc.path, err)
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		var body errorBody
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("%s: decode %s: %v", tc.path, data, err)
		}
		if resp.StatusCode != tc.status || body.Error.Status != tc.status || body.Error.Code != tc.code {
			t.Fatalf("%s: expected %d/%s, got %d %+v", tc.path, tc.status, tc.code, resp.StatusCode, body.Error)
		}
	}
}
