package repositories

import (
	"gorm.io/gorm"

	"tabletap/models"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

// FindAll returns the menu. With onlyAvailable set, items an admin has
// switched off are filtered out (the diner-facing view).
func (r *MenuRepository) FindAll(onlyAvailable bool) ([]models.MenuItem, error) {
	var items []models.MenuItem
	query := r.db.Order("name ASC")
	if onlyAvailable {
		query = query.Where("available = ?", true)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	return items, nil
}

func (r *MenuRepository) FindByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDs fetches all menu rows for the given ids in one query.
func (r *MenuRepository) FindByIDs(ids []uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateFields applies a partial update built from non-nil request fields.
func (r *MenuRepository) UpdateFields(item *models.MenuItem, updates map[string]interface{}) error {
	return r.db.Model(item).Updates(updates).Error
}

func (r *MenuRepository) Delete(item *models.MenuItem) error {
	return r.db.Delete(item).Error
}
