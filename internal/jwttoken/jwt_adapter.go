package jwttoken

import (
	"quiverbook/internal/platform/middleware"
)

// JWTServiceAdapter bridges the token service onto the middleware's
// validator interface so the middleware package stays free of JWT details.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		ArcherID: claims.ArcherID,
		Role:     claims.Role,
	}, nil
}
