package app

import (
	"database/sql"

	authHTTP "github.com/diffrun/opsdesk/internal/auth/http"
	authRepository "github.com/diffrun/opsdesk/internal/auth/repository"
	authService "github.com/diffrun/opsdesk/internal/auth/service"
	authUseCase "github.com/diffrun/opsdesk/internal/auth/usecase"
)

// TokenService returns the bearer token service.
func (c *Container) TokenService() authService.TokenService {
	return c.tokenService
}

// OperatorRepository returns the operator repository.
func (c *Container) OperatorRepository() (authUseCase.OperatorRepository, error) {
	return c.operatorRepo.get(func() (authUseCase.OperatorRepository, error) {
		return driverSwitch(c, "operator repository",
			func(db *sql.DB) authUseCase.OperatorRepository {
				return authRepository.NewPostgreSQLOperatorRepository(db)
			},
			func(db *sql.DB) authUseCase.OperatorRepository {
				return authRepository.NewMySQLOperatorRepository(db)
			},
		)
	})
}

// TokenRepository returns the token repository.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	return c.tokenRepo.get(func() (authUseCase.TokenRepository, error) {
		return driverSwitch(c, "token repository",
			func(db *sql.DB) authUseCase.TokenRepository {
				return authRepository.NewPostgreSQLTokenRepository(db)
			},
			func(db *sql.DB) authUseCase.TokenRepository {
				return authRepository.NewMySQLTokenRepository(db)
			},
		)
	})
}

// OperatorUseCase returns the operator use case.
func (c *Container) OperatorUseCase() (authUseCase.OperatorUseCase, error) {
	return c.operatorUseCase.get(func() (authUseCase.OperatorUseCase, error) {
		operatorRepo, err := c.OperatorRepository()
		if err != nil {
			return nil, err
		}
		return authUseCase.NewOperatorUseCase(operatorRepo, c.secretService, c.Logger()), nil
	})
}

// TokenUseCase returns the token use case, decorated with metrics.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	return c.tokenUseCase.get(func() (authUseCase.TokenUseCase, error) {
		operatorRepo, err := c.OperatorRepository()
		if err != nil {
			return nil, err
		}
		tokenRepo, err := c.TokenRepository()
		if err != nil {
			return nil, err
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		useCase := authUseCase.NewTokenUseCase(
			c.config.AuthTokenExpiration,
			operatorRepo,
			tokenRepo,
			c.secretService,
			c.tokenService,
		)
		return authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// TokenHandler returns the token HTTP handler.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	return c.tokenHandler.get(func() (*authHTTP.TokenHandler, error) {
		tokenUseCase, err := c.TokenUseCase()
		if err != nil {
			return nil, err
		}
		return authHTTP.NewTokenHandler(tokenUseCase, c.tokenService, c.Logger()), nil
	})
}
