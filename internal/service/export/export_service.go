package export

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	repo "github.com/mamadbah2/barnmonitor/internal/repository/sheets"
)

const (
	salesSheet       = "Sales"
	productionsSheet = "Production"
)

// Collection is an owner-scoped record list that can refresh itself.
type Collection[T any] interface {
	Load(ctx context.Context) error
	Owned() []T
}

// Result reports how many rows were written per sheet.
type Result struct {
	Sales       int `json:"sales"`
	Productions int `json:"productions"`
}

// Service copies the farmer's sales and production records into a spreadsheet.
type Service struct {
	repo        repo.Repository
	sales       Collection[models.SaleRecord]
	productions Collection[models.ProductionRecord]
	logger      *zap.Logger
}

// NewService wires a new export service instance.
func NewService(repository repo.Repository, sales Collection[models.SaleRecord], productions Collection[models.ProductionRecord], logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, sales: sales, productions: productions, logger: logger}
}

// Export refreshes both collections and rewrites the Sales and Production sheets.
func (s *Service) Export(ctx context.Context) (Result, error) {
	if err := s.sales.Load(ctx); err != nil {
		return Result{}, fmt.Errorf("load sales: %w", err)
	}
	if err := s.productions.Load(ctx); err != nil {
		return Result{}, fmt.Errorf("load productions: %w", err)
	}

	salesRows := [][]interface{}{{"ID", "Animal", "Product", "Quantity sold", "Amount", "Sale date"}}
	for _, r := range s.sales.Owned() {
		salesRows = append(salesRows, []interface{}{r.ID, animalName(r.Animal), r.ProductType, r.QuantitySold, r.Amount, r.SaleDate})
	}

	productionRows := [][]interface{}{{"ID", "Animal", "Product", "Quantity", "Production date"}}
	for _, r := range s.productions.Owned() {
		productionRows = append(productionRows, []interface{}{r.ID, animalName(r.Animal), r.ProductType, r.Quantity, r.ProductionDate})
	}

	if err := s.replace(ctx, salesSheet, salesRows); err != nil {
		return Result{}, err
	}
	if err := s.replace(ctx, productionsSheet, productionRows); err != nil {
		return Result{}, err
	}

	result := Result{Sales: len(salesRows) - 1, Productions: len(productionRows) - 1}
	s.logger.Info("records exported", zap.Int("sales", result.Sales), zap.Int("productions", result.Productions))
	return result, nil
}

func (s *Service) replace(ctx context.Context, sheet string, rows [][]interface{}) error {
	if err := s.repo.ClearRange(ctx, sheet+"!A:Z"); err != nil {
		return fmt.Errorf("clear %s sheet: %w", sheet, err)
	}
	if err := s.repo.WriteRows(ctx, sheet+"!A1", rows); err != nil {
		return fmt.Errorf("write %s sheet: %w", sheet, err)
	}
	return nil
}

func animalName(ref *models.AnimalRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}
