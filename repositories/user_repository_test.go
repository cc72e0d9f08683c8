package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tabletap/models"
)

func TestUserCreateNormalizesEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &models.User{Name: "Budi", Email: " Budi@Example.COM ", Password: "x", Role: models.UserRoleUser}
	require.NoError(t, repo.Create(user))
	assert.Equal(t, "budi@example.com", user.Email)

	found, err := repo.FindByEmail("BUDI@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserFindByEmailNotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.FindByEmail("ghost@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMenuFindAllAvailabilityFilter(t *testing.T) {
	repo := NewMenuRepository(newTestDB(t))

	require.NoError(t, repo.Create(&models.MenuItem{Name: "Bakso", PriceInCents: 18000, Available: true}))
	require.NoError(t, repo.Create(&models.MenuItem{Name: "Arsik", PriceInCents: 45000, Available: false}))

	visible, err := repo.FindAll(true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Bakso", visible[0].Name)

	everything, err := repo.FindAll(false)
	require.NoError(t, err)
	require.Len(t, everything, 2)
	assert.Equal(t, "Arsik", everything[0].Name, "menu is sorted by name")
}

func TestMenuFindByIDs(t *testing.T) {
	repo := NewMenuRepository(newTestDB(t))

	first := &models.MenuItem{Name: "Bakso", PriceInCents: 18000, Available: true}
	second := &models.MenuItem{Name: "Sate", PriceInCents: 25000, Available: true}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))

	items, err := repo.FindByIDs([]uint{first.ID, second.ID, 999})
	require.NoError(t, err)
	assert.Len(t, items, 2, "unknown ids are simply absent from the result")
}
