package services

import (
	"context"
	"strings"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/Mayank561/ECOMMERCE-API/repository"
)

type CategoryInput struct {
	Name  string `json:"name" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

const categoryNotFound = "The category with the given ID was not found."

type CategoryService struct {
	repo repository.CategoryRepo
}

func NewCategoryService(repo repository.CategoryRepo) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, categoryNotFound)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	oid, err := parseID(id, "Category")
	if err != nil {
		return nil, err
	}
	category, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, storeErr(err, categoryNotFound)
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("category name is required", nil)
	}
	category := &models.Category{Name: name, Icon: in.Icon, Color: in.Color}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, apperrors.Creation("the category cannot be created", err)
	}
	return category, nil
}

// Update replaces name and color. The icon is only replaced when a new one
// is given.
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("category name is required", nil)
	}

	category.Name = name
	category.Color = in.Color
	if in.Icon != "" {
		category.Icon = in.Icon
	}
	if err := s.repo.Replace(ctx, category); err != nil {
		return nil, storeErr(err, categoryNotFound)
	}
	return category, nil
}

// Delete refuses to remove a category that products still reference.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "Category")
	if err != nil {
		return err
	}
	inUse, err := s.repo.HasProducts(ctx, oid)
	if err != nil {
		return storeErr(err, categoryNotFound)
	}
	if inUse {
		return apperrors.Validation("the category is still used by products", nil)
	}
	return storeErr(s.repo.Delete(ctx, oid), "category not found!")
}
