package util

import (
	"hrm_backend/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the token issued by the auth service.
type Claims struct {
	UserID     uint           `json:"user_id"`
	EmployeeID uint           `json:"employee_id"`
	Role       model.UserRole `json:"role"`
	Email      string         `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() model.Actor {
	return model.Actor{UserID: c.UserID, EmployeeID: c.EmployeeID, Role: c.Role}
}

func GenerateJWT(claims Claims, secret string, expiration time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// ActorFromContext returns the caller set by the auth middleware.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	claims := GetUserFromContext(c)
	if claims == nil {
		return model.Actor{}, false
	}
	return claims.Actor(), true
}
