package database

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogs-service/errs"
	"github.com/rpupo63/blogs-service/models"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// FindAll returns all blogs, in no particular order
func (r *BlogRepo) FindAll() ([]*models.Blog, error) {
	blogs := make([]*models.Blog, 0)
	err := r.db.Find(&blogs).Error
	return blogs, err
}

// FindByID returns a blog by its ID
func (r *BlogRepo) FindByID(id int64) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.First(&blog, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewBlogNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// Add inserts a new blog and fills in its ID
func (r *BlogRepo) Add(blog *models.Blog) error {
	return r.db.Create(blog).Error
}

// Update applies only the supplied fields. An empty change set is a no-op
// once the blog is known to exist.
func (r *BlogRepo) Update(id int64, changes models.BlogChanges) error {
	if err := r.mustExist(id); err != nil {
		return err
	}
	if changes.Empty() {
		return nil
	}
	return r.db.Model(&models.Blog{}).Where("id = ?", id).Updates(changes.Columns()).Error
}

// Delete removes a blog by id
func (r *BlogRepo) Delete(id int64) error {
	if err := r.mustExist(id); err != nil {
		return err
	}
	return r.db.Delete(&models.Blog{}, id).Error
}

// mustExist runs on the primary so a lagging replica cannot hide a fresh row.
func (r *BlogRepo) mustExist(id int64) error {
	var count int64
	err := r.db.Clauses(dbresolver.Write).Model(&models.Blog{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return errs.NewBlogNotFound(id)
	}
	return nil
}
