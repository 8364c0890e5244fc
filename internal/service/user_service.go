package service

import (
	"errors"
	"strings"

	"github.com/wordly/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUsernameInvalid    = errors.New("username must be 3-50 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserService 处理注册与凭证校验，是内容层之外唯一接触密码的地方。
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Signup 创建新用户，密码以 bcrypt 哈希存储。
func (s *UserService) Signup(username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if n := len([]rune(username)); n < 3 || n > 50 {
		return nil, ErrUsernameInvalid
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}

	var existing db.User
	if err := s.db.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: username, Password: string(hashed)}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate 校验用户名密码。用户不存在与密码错误返回同一个错误，
// 避免泄露账号是否存在。
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
