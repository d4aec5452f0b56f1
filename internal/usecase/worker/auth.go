package worker

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/gigwork-backend/internal/domain/entity"
	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
	"github.com/ignatzorin/gigwork-backend/internal/domain/valueobject"
	"github.com/ignatzorin/gigwork-backend/internal/pkg/apperror"
)

// TokenIssuer выпускает access-токен для субъекта с ролью.
type TokenIssuer interface {
	IssueAccess(subject uuid.UUID, role valueobject.Role) (string, time.Time, error)
}

type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Role        valueobject.Role
	Worker      *entity.Worker
}

type LoginWorkerUseCase struct {
	workerRepo repository.WorkerRepository
	tokens     TokenIssuer
}

func NewLoginWorkerUseCase(workerRepo repository.WorkerRepository, tokens TokenIssuer) *LoginWorkerUseCase {
	return &LoginWorkerUseCase{workerRepo: workerRepo, tokens: tokens}
}

func (uc *LoginWorkerUseCase) Execute(ctx context.Context, username, password string) (*AuthResult, error) {
	worker, err := uc.workerRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrWorkerNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(worker.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, exp, err := uc.tokens.IssueAccess(worker.ID, valueobject.RoleWorker)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}

	return &AuthResult{AccessToken: token, ExpiresAt: exp, Role: valueobject.RoleWorker, Worker: worker}, nil
}

// AdminLoginUseCase проверяет учётные данные администратора из конфигурации.
type AdminLoginUseCase struct {
	username string
	password string
	tokens   TokenIssuer
}

func NewAdminLoginUseCase(username, password string, tokens TokenIssuer) *AdminLoginUseCase {
	return &AdminLoginUseCase{username: username, password: password, tokens: tokens}
}

// AdminID: постоянный идентификатор администратора в токенах.
func AdminID(username string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("admin:"+username))
}

func (uc *AdminLoginUseCase) Execute(ctx context.Context, username, password string) (*AuthResult, error) {
	if uc.password == "" {
		return nil, apperror.ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(uc.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(uc.password)) == 1
	if !userOK || !passOK {
		return nil, apperror.ErrInvalidCredentials
	}

	token, exp, err := uc.tokens.IssueAccess(AdminID(uc.username), valueobject.RoleAdmin)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}

	return &AuthResult{AccessToken: token, ExpiresAt: exp, Role: valueobject.RoleAdmin}, nil
}
