package trainHandler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dhruvin6677/ai-buddy/internal/api/train"
	trainService "github.com/Dhruvin6677/ai-buddy/internal/api/train/service"
	"github.com/Dhruvin6677/ai-buddy/internal/middleware"
	"github.com/Dhruvin6677/ai-buddy/pkg/log"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	logger := log.NewDiscardLogger()
	mw := middleware.New(logger, middleware.Config{})

	app := fiber.New(fiber.Config{
		StrictRouting: true,
		JSONEncoder:   jsoniter.Marshal,
		JSONDecoder:   jsoniter.Unmarshal,
	})
	app.Use(mw.NewRequestIDMiddleware())

	svc := trainService.NewTrainService(logger, trainService.Config{}, nil)
	New(logger, mw, svc).Start(app.Group("/api/v1"))
	return app
}

func TestGetPNRStatus(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name       string
		pnr        string
		wantStatus int
		wantLayer  string
		wantTrain  string
	}{
		{
			name:       "demo pnr answered by shortcut",
			pnr:        trainService.DefaultDemoPNR,
			wantStatus: fiber.StatusOK,
			wantLayer:  "Shortcut",
			wantTrain:  "12951 - Rajdhani Express",
		},
		{
			name:       "dashed demo pnr",
			pnr:        "820-456-7890",
			wantStatus: fiber.StatusOK,
			wantLayer:  "Shortcut",
			wantTrain:  "12951 - Rajdhani Express",
		},
		{
			name:       "unknown pnr simulated",
			pnr:        "1234567890",
			wantStatus: fiber.StatusOK,
			wantLayer:  "Simulated",
			wantTrain:  "Superfast Express (Simulation)",
		},
		{
			name:       "too short",
			pnr:        "12345",
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/train/pnr/"+tt.pnr, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus != fiber.StatusOK {
				return
			}

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			var got train.PNRStatusResponse
			require.NoError(t, jsoniter.Unmarshal(body, &got))
			assert.True(t, got.Success)
			assert.Equal(t, tt.wantLayer, got.SourceLayer)
			assert.Equal(t, tt.wantTrain, got.Data.TrainName)
			assert.Contains(t, got.Message, tt.wantTrain)
		})
	}
}
