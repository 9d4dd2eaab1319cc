package services

import (
	"context"
	"errors"
	"testing"

	"github.com/coachkit/roster-system/models"
	"github.com/coachkit/roster-system/repositories"
	"github.com/golang-jwt/jwt/v4"
)

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo, "test-secret")

	user, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Anna",
		LastName:  "Koval",
		Email:     " Anna@Example.COM ",
		Password:  "long-enough-password",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "anna@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.Role != models.RoleCoach {
		t.Errorf("role = %q, want coach by default", user.Role)
	}

	token, logged, err := service.Login(context.Background(), models.Credentials{
		Email:    "anna@example.com",
		Password: "long-enough-password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in as %d, want %d", logged.ID, user.ID)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if int(claims["user_id"].(float64)) != user.ID {
		t.Errorf("user_id claim = %v, want %d", claims["user_id"], user.ID)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	service := NewAuthService(newFakeUserRepo(), "test-secret")

	_, err := service.Register(context.Background(), RegisterInput{
		Email:    "a@b.c",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo, "test-secret")

	if _, err := service.Register(context.Background(), RegisterInput{
		Email:    "a@b.c",
		Password: "long-enough-password",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := service.Login(context.Background(), models.Credentials{
		Email:    "a@b.c",
		Password: "wrong-password",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	if _, _, err := service.Login(context.Background(), models.Credentials{
		Email:    "nobody@b.c",
		Password: "long-enough-password",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestHasCapability_AnalystReadOnly(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users[1] = &models.User{ID: 1, Role: models.RoleAnalyst}
	service := NewAuthService(repo, "test-secret")

	ok, err := service.HasCapability(context.Background(), 1, playerViewCaps)
	if err != nil || !ok {
		t.Fatalf("view = (%v, %v), want allowed", ok, err)
	}

	ok, err = service.HasCapability(context.Background(), 1, playerEditCaps)
	if err != nil || ok {
		t.Fatalf("edit = (%v, %v), want denied", ok, err)
	}

	// Несуществующий пользователь: отказ без ошибки.
	ok, err = service.HasCapability(context.Background(), 42, playerViewCaps)
	if err != nil || ok {
		t.Fatalf("unknown user = (%v, %v), want denied without error", ok, err)
	}
}
