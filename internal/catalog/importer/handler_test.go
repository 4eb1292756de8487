package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"Stairs/internal/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeRepo struct {
	saved []catalog.Entry
	err   error
}

func (f *fakeRepo) ReplaceEntries(_ context.Context, entries []catalog.Entry) error {
	if f.err != nil {
		return f.err
	}
	f.saved = entries
	return nil
}

type fakeScraper struct {
	price decimal.Decimal
}

func (f fakeScraper) Update(_ context.Context, entries []catalog.Entry) ([]catalog.Entry, int) {
	out := make([]catalog.Entry, len(entries))
	copy(out, entries)
	out[0].Price = f.price
	return out, 1
}

func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Прайс"))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, catalog.HeaderRows+1+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "data.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/catalog/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImport(t *testing.T) {
	store := catalog.NewStore(catalog.FallbackEntries())
	repo := &fakeRepo{}
	h := &Handler{Store: store, Repo: repo}
	data := workbook(t,
		[]interface{}{"83850952.0", "Ступень 900х300", "деревянная", "900x300", "шт.", 1600},
		[]interface{}{"", "без артикула", "деревянная", "", "", 100},
		[]interface{}{"15762294", "Опора", "модульная", "", "", "3 700,50"},
	)
	rec := httptest.NewRecorder()

	h.Import(rec, uploadRequest(t, "file", data))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Count)
	assert.True(t, res.Stored)
	assert.Len(t, repo.saved, 2)

	assert.Equal(t, 2, store.Len())
	e, ok := store.Lookup("83850952")
	require.True(t, ok)
	assert.Equal(t, catalog.CategoryWood, e.Category)
	m, ok := store.Lookup("15762294")
	require.True(t, ok)
	assert.True(t, m.Price.Equal(decimal.RequireFromString("3700.5")))
	assert.Equal(t, "шт.", m.Unit)
}

func TestImport_Rejects(t *testing.T) {
	store := catalog.NewStore(catalog.FallbackEntries())
	h := &Handler{Store: store}

	rec := httptest.NewRecorder()
	h.Import(rec, uploadRequest(t, "other", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Import(rec, uploadRequest(t, "file", []byte("not a workbook")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Import(rec, uploadRequest(t, "file", workbook(t)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, len(catalog.FallbackEntries()), store.Len(), "catalog untouched")
}

func TestImport_StoreErrorKeepsSnapshot(t *testing.T) {
	store := catalog.NewStore(catalog.FallbackEntries())
	h := &Handler{Store: store, Repo: &fakeRepo{err: errors.New("down")}}
	data := workbook(t, []interface{}{"1", "a", "wood", "", "", 10})
	rec := httptest.NewRecorder()

	h.Import(rec, uploadRequest(t, "file", data))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, len(catalog.FallbackEntries()), store.Len())
}

func TestScrape(t *testing.T) {
	store := catalog.NewStore(catalog.FallbackEntries())
	first := store.All()[0]
	h := &Handler{Store: store, Scraper: fakeScraper{price: decimal.NewFromInt(99999)}}
	rec := httptest.NewRecorder()

	h.Scrape(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Updated)
	assert.False(t, res.Stored)
	e, ok := store.Lookup(first.Article)
	require.True(t, ok)
	assert.True(t, e.Price.Equal(decimal.NewFromInt(99999)))
}

func TestScrape_NotConfigured(t *testing.T) {
	h := &Handler{Store: catalog.NewStore(nil)}
	rec := httptest.NewRecorder()
	h.Scrape(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
