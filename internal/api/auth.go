package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const (
	cartHeader = "X-Cart-ID"

	ctxUserID  = "userID"
	ctxCartKey = "cartKey"
)

// Claims are the token claims the API understands. Subject is the user ID.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.StandardClaims
}

// IssueToken signs an HS256 token for a user
func IssueToken(secret string, ttl time.Duration, userID, email, name string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		Name:  name,
		StandardClaims: jwt.StandardClaims{
			Subject:  userID,
			IssuedAt: now.Unix(),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// identify resolves the caller. A bearer token (header, or the token
// query parameter for websockets) signs the user in; without one the
// caller is anonymous and identified by its cart ID only.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString != "" {
			if s.auth.JWTSecret == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication is not configured"})
				c.Abort()
				return
			}
			claims, err := parseToken(s.auth.JWTSecret, tokenString)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				c.Abort()
				return
			}
			if s.svc.Users != nil {
				if _, err := s.svc.Users.Ensure(c.Request.Context(), claims.Subject, claims.Email, claims.Name); err != nil {
					log.Printf("api: failed to load profile for %s: %v", claims.Subject, err)
					c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
					c.Abort()
					return
				}
			}
			c.Set(ctxUserID, claims.Subject)
			c.Set(ctxCartKey, claims.Subject)
			c.Next()
			return
		}

		cartID := strings.TrimSpace(c.GetHeader(cartHeader))
		if cartID == "" {
			cartID = c.Query("cart_id")
		}
		if cartID != "" {
			c.Set(ctxCartKey, "anon:"+cartID)
		}
		c.Next()
	}
}

// requireUser rejects anonymous callers
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// requireAdmin rejects users without the admin role
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := s.svc.Users.IsAdmin(c.Request.Context(), userID(c))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// cartKey returns the caller's cart, writing a 400 when there is none
func cartKey(c *gin.Context) (string, bool) {
	key := c.GetString(ctxCartKey)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sign in or send an " + cartHeader + " header"})
		return "", false
	}
	return key, true
}
