package repository

import (
	"github.com/panelmgmt/pms-core/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByEmail(email string) ([]model.User, error)
	FindByUIN(uin int) (*model.User, error)
	FindAll() ([]model.User, error)
	FindStudentIDs() ([]string, error)
	FindStudents() ([]model.User, error)
	Update(user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("email = ?", email).Find(&users).Error
	return users, err
}

func (r *userRepository) FindByUIN(uin int) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, "uin = ?", uin).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Order("created_at desc").Find(&users).Error
	return users, err
}

func (r *userRepository) FindStudentIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&model.User{}).Where("role = ?", model.RoleStudent).Order("created_at asc").Pluck("id", &ids).Error
	return ids, err
}

func (r *userRepository) FindStudents() ([]model.User, error) {
	var users []model.User
	err := r.db.Where("role = ?", model.RoleStudent).Order("created_at asc").Find(&users).Error
	return users, err
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}
