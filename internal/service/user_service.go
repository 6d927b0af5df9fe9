package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/bookmarket/internal/model"
	"github.com/d60-Lab/bookmarket/internal/repository"
	"github.com/d60-Lab/bookmarket/pkg/password"
)

var (
	ErrPhoneTaken = errors.New("手机号已被注册")
	ErrNameTaken  = errors.New("用户名已被使用")
	// ErrInvalidCredentials 手机号不存在与密码错误统一返回，避免撞库探测
	ErrInvalidCredentials = errors.New("手机号或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

// RegisterParams 注册参数
type RegisterParams struct {
	Phone    string
	Username string
	Password string
	Identity string // buyer / seller，可选
	Major    string
	Grade    string
}

// ProfileUpdateParams 资料更新参数；nil 表示不修改
type ProfileUpdateParams struct {
	Username *string
	Major    *string
	Grade    *string
}

// UserService 用户服务：注册、登录、资料读写
type UserService interface {
	// Register 注册新用户；先查手机号再查用户名
	Register(ctx context.Context, params RegisterParams) (*model.User, error)

	// Authenticate 手机号+密码登录
	Authenticate(ctx context.Context, phone, plainPassword string) (*model.User, error)

	// Get 查询用户
	Get(ctx context.Context, userID int64) (*model.User, error)

	// UpdateProfile 更新资料；改用户名时重查唯一性
	UpdateProfile(ctx context.Context, userID int64, params ProfileUpdateParams) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	hasher   password.Hasher
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository, hasher password.Hasher) UserService {
	return &userService{userRepo: userRepo, hasher: hasher}
}

func (s *userService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	taken, err := s.userRepo.ExistsByPhone(ctx, params.Phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPhoneTaken
	}
	taken, err = s.userRepo.ExistsByUsername(ctx, params.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	hashed, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	identity := params.Identity
	if identity == "" {
		identity = "buyer"
	}
	user := &model.User{
		Phone:        params.Phone,
		Username:     params.Username,
		PasswordHash: hashed,
		Identity:     identity,
		Major:        params.Major,
		Grade:        params.Grade,
		Credit:       model.DefaultCredit,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, phone, plainPassword string) (*model.User, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(user.PasswordHash, plainPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, params ProfileUpdateParams) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if params.Username != nil && *params.Username != user.Username {
		taken, err := s.userRepo.ExistsByUsername(ctx, *params.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrNameTaken
		}
		user.Username = *params.Username
	}
	if params.Major != nil {
		user.Major = *params.Major
	}
	if params.Grade != nil {
		user.Grade = *params.Grade
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
