package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/glog"
)

const jwtSecretEnv = "PIXFLOOD_JWT_SECRET"

const jwtSubject = "pixflood-control"

func jwtSecret() ([]byte, error) {
	secret := os.Getenv(jwtSecretEnv)
	if secret == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrConfig, jwtSecretEnv)
	}
	return []byte(secret), nil
}

func createToken(secretKey []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": jwtSubject,
		"exp": time.Now().Add(ttl).Unix(),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func verifyToken(secretKey []byte, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(jwtSubject))

	if err != nil {
		return err
	}

	if !token.Valid {
		return fmt.Errorf("invalid token")
	}

	return nil
}

func AuthorizedHandler(w http.ResponseWriter, r *http.Request, manager *Manager, handler func(http.ResponseWriter, *http.Request, *Manager)) {
	w.Header().Set("Content-Type", "text/plain")

	secretKey, err := jwtSecret()
	if err != nil {
		glog.Warningf("refusing control request: %v\n", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "Control API disabled")
		return
	}

	tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tokenString == "" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "Missing authorization header")
		return
	}

	if err := verifyToken(secretKey, tokenString); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "Invalid token")
		return
	}

	handler(w, r, manager)
}

func RunHandler(w http.ResponseWriter, r *http.Request, m *Manager) {
	if err := m.StartRun(); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			w.WriteHeader(http.StatusConflict)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
		fmt.Fprint(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprint(w, "Run started")
}
