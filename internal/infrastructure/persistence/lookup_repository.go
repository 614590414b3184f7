package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/domain/shared"
	"github.com/erp/sfa/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCodeRepository implements sfa.CodeRepository using GORM
type GormCodeRepository struct {
	db *gorm.DB
}

// NewGormCodeRepository creates a new GormCodeRepository
func NewGormCodeRepository(db *gorm.DB) *GormCodeRepository {
	return &GormCodeRepository{db: db}
}

// FindByCategory returns the codes of a category ordered by sort
func (r *GormCodeRepository) FindByCategory(ctx context.Context, category string) ([]sfa.Code, error) {
	var rows []models.CodeModel
	if err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("sort ASC, code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	codes := make([]sfa.Code, len(rows))
	for i := range rows {
		codes[i] = rows[i].ToDomain()
	}
	return codes, nil
}

// GormTeamRepository implements sfa.TeamRepository using GORM
type GormTeamRepository struct {
	db *gorm.DB
}

// NewGormTeamRepository creates a new GormTeamRepository
func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

// FindAll returns every team ordered by name
func (r *GormTeamRepository) FindAll(ctx context.Context) ([]sfa.Team, error) {
	var rows []models.TeamModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	teams := make([]sfa.Team, len(rows))
	for i, row := range rows {
		teams[i] = sfa.Team{ID: row.ID, Name: row.Name}
	}
	return teams, nil
}

// GormCustomerRepository implements sfa.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Search finds customers whose name contains filter.Search, case-insensitively
func (r *GormCustomerRepository) Search(ctx context.Context, filter shared.Filter) ([]sfa.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	sortField := ValidateSortField(filter.OrderBy, CustomerSortFields, "name")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.CustomerModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	customers := make([]sfa.Customer, len(rows))
	for i, row := range rows {
		customers[i] = sfa.Customer{ID: row.ID, Name: row.Name}
	}
	return customers, nil
}
