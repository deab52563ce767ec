package expense

import (
	"bytes"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/interchange"
)

// RepositoryAPI defines the data access methods for expense records.
type RepositoryAPI interface {
	Create(exp *expenseDatamodel.Expense) error
	CreateBatch(exps []*expenseDatamodel.Expense) error
	GetByIDAndUser(id, userID string) (*expenseDatamodel.Expense, error)
	GetByUser(userID string) ([]*expenseDatamodel.Expense, error)
	GetAll() ([]*expenseDatamodel.Expense, error)
	Update(exp *expenseDatamodel.Expense) error
	Delete(id, userID string) error
}

// Service handles expense business logic: CRUD, summaries and file
// interchange.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns every record owned by userID, most recent date first. The
// result set is unbounded; pagination was never part of this surface.
func (s *Service) List(userID string) ([]*Expense, error) {
	records, err := s.repo.GetByUser(userID)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to fetch expenses", err)
	}
	return FromDataModelSlice(records), nil
}

// Create validates the payload, assigns the creation date when absent and
// persists a new record for userID.
func (s *Service) Create(userID string, dto ExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	date := time.Now()
	if dto.Date != nil && !dto.Date.IsZero() {
		date = *dto.Date
	}

	record := &expenseDatamodel.Expense{
		UserID:      userID,
		Description: dto.Description,
		Amount:      dto.Amount,
		Category:    dto.Category,
		Date:        date,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to create expense", err)
	}

	s.logger.Info("expense created",
		"expense_id", record.ID,
		"user_id", userID,
		"amount", record.Amount.String(),
		"category", record.Category)

	return FromDataModel(record), nil
}

// Update replaces description, amount and category of the record matching
// both id and owner. Owner and date are immutable on this path.
func (s *Service) Update(id, userID string, dto ExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "expense_id", id, "user_id", userID)
		return nil, err
	}

	record, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to load expense for update", "error", err, "expense_id", id)
		return nil, internal.NewInternalError("failed to update expense", err)
	}

	record.Description = dto.Description
	record.Amount = dto.Amount
	record.Category = dto.Category
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(record); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, internal.NewInternalError("failed to update expense", err)
	}

	s.logger.Info("expense updated", "expense_id", id, "user_id", userID)
	return FromDataModel(record), nil
}

// Delete removes the record matching both id and owner.
func (s *Service) Delete(id, userID string) error {
	if err := s.repo.Delete(id, userID); err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return internal.NewInternalError("failed to delete expense", err)
	}

	s.logger.Info("expense deleted", "expense_id", id, "user_id", userID)
	return nil
}

// Summarize computes the total and per-category sums over the owner's full
// record set. Always recomputed from the current records.
func (s *Service) Summarize(userID string) (*Summary, error) {
	records, err := s.repo.GetByUser(userID)
	if err != nil {
		s.logger.Error("failed to load expenses for summary", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to fetch expense summary", err)
	}

	summary := &Summary{
		Total:      decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
	}
	for _, record := range records {
		summary.Total = summary.Total.Add(record.Amount)
		summary.ByCategory[record.Category] = summary.ByCategory[record.Category].Add(record.Amount)
	}

	return summary, nil
}

// ExportResult is a rendered export ready to be served as a download.
type ExportResult struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Export renders every stored record in the requested format. Note that the
// record set is NOT filtered by owner: the export covers all records
// system-wide, matching the long-standing behavior of this endpoint.
func (s *Service) Export(format interchange.Format) (*ExportResult, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to load expenses for export", "error", err)
		return nil, internal.NewInternalError("export failed", err)
	}

	rows := make([]interchange.Record, len(records))
	for i, record := range records {
		rows[i] = interchange.Record{
			Description: record.Description,
			Amount:      record.Amount,
			Category:    record.Category,
			Date:        record.Date,
		}
	}

	var buf bytes.Buffer
	if err := interchange.Write(&buf, format, rows); err != nil {
		s.logger.Error("failed to render export", "error", err, "format", format)
		return nil, err
	}

	s.logger.Info("expenses exported", "format", format, "count", len(rows))

	return &ExportResult{
		ContentType: interchange.ContentType(format),
		Filename:    interchange.Filename(format),
		Data:        buf.Bytes(),
	}, nil
}

// Import parses the uploaded file at path and inserts every row for userID
// as a single batch. The batch succeeds or fails as a whole; rows are not
// retried individually.
func (s *Service) Import(userID, path string) ([]*Expense, error) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Error("failed to open uploaded file", "error", err, "path", path)
		return nil, internal.NewInterchangeError("failed to read uploaded file", internal.ErrCodeInterchangeFailure, err)
	}
	defer f.Close()

	rows, err := interchange.Read(f, interchange.DetectFormat(path))
	if err != nil {
		s.logger.Warn("failed to parse uploaded file", "error", err, "path", path)
		return nil, err
	}

	records := make([]*expenseDatamodel.Expense, len(rows))
	now := time.Now()
	for i, row := range rows {
		records[i] = &expenseDatamodel.Expense{
			UserID:      userID,
			Description: row.Description,
			Amount:      row.Amount,
			Category:    row.Category,
			Date:        row.Date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	if err := s.repo.CreateBatch(records); err != nil {
		s.logger.Error("failed to insert imported expenses", "error", err, "count", len(records))
		return nil, internal.NewInternalError("import failed", err)
	}

	s.logger.Info("expenses imported", "user_id", userID, "count", len(records))
	return FromDataModelSlice(records), nil
}
