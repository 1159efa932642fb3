package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/correlator/internal/catalog"
	"github.com/soltixdb/correlator/internal/codec"
	"github.com/soltixdb/correlator/internal/correlation"
	"github.com/soltixdb/correlator/internal/logging"
	"github.com/soltixdb/correlator/internal/matrix"
	"github.com/soltixdb/correlator/internal/models"
	"github.com/soltixdb/correlator/internal/preprocess"
	"github.com/soltixdb/correlator/internal/sentinel"
	"github.com/soltixdb/correlator/internal/services"
)

// short/long pairs of a 4-series day in linear index order
var dayPairs = [][2]float32{
	{0.95, 0.45},
	{-0.85, 0.10},
	{0.20, -0.60},
	{0.50, 0.39},
	{-0.99, -0.41},
	{0.81, 0.90},
}

func setupDayApp(t *testing.T) *fiber.App {
	t.Helper()
	dir := t.TempDir()
	cat := catalog.NewMemoryCatalog()

	m := matrix.New(4)
	for {
		e, ok := m.Next()
		if !ok {
			break
		}
		m.Visit(e, func(_ matrix.Cell, p *correlation.Pair) {
			p.Short = sentinel.NewReal(dayPairs[e.Index][0])
			p.Long = sentinel.NewReal(dayPairs[e.Index][1])
		})
	}

	man := &catalog.Manifest{
		Day:         7,
		Date:        "2011-Mar-25",
		Series:      4,
		Cells:       len(dayPairs),
		Short:       10,
		Long:        50,
		Path:        filepath.Join(dir, "matrix"),
		SymbolsPath: filepath.Join(dir, "symbols"),
		Format:      "binary",
		Compression: "none",
		RunID:       "run-1",
		ComputedAt:  time.Now().UTC(),
	}
	require.NoError(t, m.Save(man.Path, codec.Options{Mode: codec.Binary}))
	require.NoError(t, preprocess.WriteSymbols(man.SymbolsPath, []string{"AAA", "BBB", "CCC", "DDD"}))
	require.NoError(t, cat.Put(context.Background(), man))

	logger := logging.NewNop()
	h := New(logger, services.NewDayService(logger, cat))

	app := fiber.New()
	app.Get("/v1/days", h.ListDays)
	app.Get("/v1/days/:day", h.GetDay)
	app.Get("/v1/days/:day/cells/:row/:col", h.GetCell)
	app.Get("/v1/days/:day/significant", h.Significant)
	app.Get("/v1/days/:day/transitive/:a/:b/:c", h.Transitive)
	return app
}

func doGet(t *testing.T, app *fiber.App, path string, out interface{}) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out), string(body))
	return resp.StatusCode
}

func TestHandler_ListDays(t *testing.T) {
	app := setupDayApp(t)

	var resp models.DayListResponse
	status := doGet(t, app, "/v1/days", &resp)
	assert.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 7, resp.Days[0].Day)
	assert.Equal(t, "2011-Mar-25", resp.Days[0].Date)
}

func TestHandler_GetDay(t *testing.T) {
	app := setupDayApp(t)

	var day models.DayResponse
	assert.Equal(t, fiber.StatusOK, doGet(t, app, "/v1/days/7", &day))
	assert.Equal(t, 4, day.Series)
	assert.Equal(t, 6, day.Cells)

	var errResp models.ErrorResponse
	assert.Equal(t, fiber.StatusNotFound, doGet(t, app, "/v1/days/8", &errResp))
	assert.Equal(t, services.CodeDayNotFound, errResp.Error.Code)

	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/v1/days/abc", &errResp))
	assert.Equal(t, "INVALID_DAY", errResp.Error.Code)
}

func TestHandler_GetCell(t *testing.T) {
	app := setupDayApp(t)

	var cell models.CellResponse
	require.Equal(t, fiber.StatusOK, doGet(t, app, "/v1/days/7/cells/1/3", &cell))
	assert.Equal(t, 3, cell.Row)
	assert.Equal(t, 1, cell.Col)
	assert.Equal(t, "DDD", cell.RowName)
	assert.Equal(t, "BBB", cell.ColName)
	require.NotNil(t, cell.Short.Value)
	assert.InDelta(t, -0.99, *cell.Short.Value, 1e-6)
	assert.True(t, cell.Short.Significant)
	assert.True(t, cell.Long.Significant)

	var errResp models.ErrorResponse
	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/v1/days/7/cells/2/2", &errResp))
	assert.Equal(t, services.CodeInvalidCell, errResp.Error.Code)

	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/v1/days/7/cells/0/9", &errResp))
	assert.Equal(t, services.CodeInvalidCell, errResp.Error.Code)

	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/v1/days/7/cells/x/1", &errResp))
	assert.Equal(t, services.CodeInvalidCell, errResp.Error.Code)
}

func TestHandler_Significant(t *testing.T) {
	app := setupDayApp(t)

	var resp models.SignificantResponse
	require.Equal(t, fiber.StatusOK, doGet(t, app, "/v1/days/7/significant", &resp))
	assert.Equal(t, services.WindowLong, resp.Window)
	assert.Equal(t, 4, resp.Total)
	require.Len(t, resp.Cells, 4)
	assert.Equal(t, 3, resp.Cells[0].Row)
	assert.Equal(t, 2, resp.Cells[0].Col)

	require.Equal(t, fiber.StatusOK, doGet(t, app, "/v1/days/7/significant?window=short&limit=2", &resp))
	assert.Equal(t, services.WindowShort, resp.Window)
	assert.Equal(t, 4, resp.Total)
	require.Len(t, resp.Cells, 2)
	assert.Equal(t, 3, resp.Cells[0].Row)
	assert.Equal(t, 1, resp.Cells[0].Col)

	var errResp models.ErrorResponse
	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/v1/days/7/significant?window=medium", &errResp))
	assert.Equal(t, services.CodeInvalidWindow, errResp.Error.Code)

	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/v1/days/7/significant?limit=-1", &errResp))
	assert.Equal(t, "INVALID_LIMIT", errResp.Error.Code)
}

func TestHandler_Transitive(t *testing.T) {
	app := setupDayApp(t)

	var resp models.TransitiveResponse
	require.Equal(t, fiber.StatusOK, doGet(t, app, "/v1/days/7/transitive/0/1/3", &resp))
	assert.Equal(t, 0, resp.A)
	assert.Equal(t, 3, resp.C)
	// 0.95^2 + 0.99^2 > 1
	assert.True(t, resp.ShortTransitive)
	// 0.45^2 + 0.41^2 < 1
	assert.False(t, resp.LongTransitive)

	var errResp models.ErrorResponse
	assert.Equal(t, fiber.StatusBadRequest, doGet(t, app, "/v1/days/7/transitive/0/0/2", &errResp))
	assert.Equal(t, services.CodeInvalidCell, errResp.Error.Code)
}
