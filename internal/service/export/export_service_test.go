package export

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
)

type fakeSheets struct {
	cleared  []string
	written  map[string][][]interface{}
	writeErr error
}

func (f *fakeSheets) WriteRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.written == nil {
		f.written = map[string][][]interface{}{}
	}
	f.written[sheetRange] = rows
	return nil
}

func (f *fakeSheets) ClearRange(_ context.Context, sheetRange string) error {
	f.cleared = append(f.cleared, sheetRange)
	return nil
}

func (f *fakeSheets) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	return f.written[sheetRange], nil
}

type fakeCollection[T any] struct {
	items   []T
	loadErr error
}

func (f *fakeCollection[T]) Load(context.Context) error { return f.loadErr }
func (f *fakeCollection[T]) Owned() []T                 { return f.items }

func TestExport(t *testing.T) {
	sheets := &fakeSheets{}
	sales := &fakeCollection[models.SaleRecord]{items: []models.SaleRecord{
		{ID: 101, ProductType: "Milk", QuantitySold: 10, Amount: 500, SaleDate: "2024-01-01", Animal: &models.AnimalRef{Name: "Bessie"}},
	}}
	productions := &fakeCollection[models.ProductionRecord]{items: []models.ProductionRecord{
		{ID: 1, ProductType: "Milk", Quantity: 12.5, ProductionDate: "2024-01-01"},
		{ID: 2, ProductType: "Eggs", Quantity: 30, ProductionDate: "2024-01-02"},
	}}

	result, err := NewService(sheets, sales, productions, nil).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sales: 1, Productions: 2}, result)

	assert.Equal(t, []string{"Sales!A:Z", "Production!A:Z"}, sheets.cleared)
	require.Len(t, sheets.written["Sales!A1"], 2)
	assert.Equal(t, []interface{}{101, "Bessie", "Milk", 10, 500.0, "2024-01-01"}, sheets.written["Sales!A1"][1])
	assert.Len(t, sheets.written["Production!A1"], 3)
	assert.Equal(t, "", sheets.written["Production!A1"][1][1])
}

func TestExportStopsOnFailure(t *testing.T) {
	sales := &fakeCollection[models.SaleRecord]{loadErr: errors.New("offline")}
	_, err := NewService(&fakeSheets{}, sales, &fakeCollection[models.ProductionRecord]{}, nil).Export(context.Background())
	require.Error(t, err)

	sheets := &fakeSheets{writeErr: errors.New("quota exceeded")}
	_, err = NewService(sheets, &fakeCollection[models.SaleRecord]{}, &fakeCollection[models.ProductionRecord]{}, nil).Export(context.Background())
	assert.ErrorContains(t, err, "write Sales sheet")
}
