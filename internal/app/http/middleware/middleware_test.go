package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"streamdraw/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.JWT_SECRET))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func protected() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware("user"), RequireUser(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id")})
	})
	r.GET("/admin", AuthMiddleware("admin"), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	config.JWT_SECRET = "test-secret"
	r := protected()

	valid := sign(t, jwt.MapClaims{"user_id": 7, "role": "user", "exp": time.Now().Add(time.Hour).Unix()})
	expired := sign(t, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(-time.Hour).Unix()})
	admin := sign(t, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).SignedString([]byte("other"))

	cases := []struct {
		name   string
		path   string
		cookie *http.Cookie
		header string
		want   int
	}{
		{"cookie", "/me", &http.Cookie{Name: "user", Value: valid}, "", http.StatusOK},
		{"bearer", "/me", nil, "Bearer " + valid, http.StatusOK},
		{"no token", "/me", nil, "", http.StatusUnauthorized},
		{"malformed header", "/me", nil, valid, http.StatusUnauthorized},
		{"expired", "/me", &http.Cookie{Name: "user", Value: expired}, "", http.StatusUnauthorized},
		{"admin token has no user", "/me", nil, "Bearer " + admin, http.StatusUnauthorized},
		{"admin cookie", "/admin", &http.Cookie{Name: "admin", Value: admin}, "", http.StatusNoContent},
		{"user cookie is not admin", "/admin", &http.Cookie{Name: "admin", Value: valid}, "", http.StatusForbidden},
		{"wrong cookie name", "/admin", &http.Cookie{Name: "user", Value: admin}, "", http.StatusUnauthorized},
		{"forged", "/admin", &http.Cookie{Name: "admin", Value: forged}, "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tc.want, w.Body)
			}
		})
	}
}

func TestSanitizeAndCleanInputMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware("password"))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty"})
			return
		}
		c.JSON(http.StatusOK, body)
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(`{"title":"<script>alert(1)</script>Friday <b>Live</b>","price":500}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); strings.Contains(got, "<") || !strings.Contains(got, "Friday Live") || !strings.Contains(got, "500") {
		t.Errorf("body = %s", got)
	}

	w = send(`{"password":" p<a>ss&1 ","profile":{"bio":" <i>hi</i> ","tags":["<b>x</b>"]}}`)
	var echoed struct {
		Password string `json:"password"`
		Profile  struct {
			Bio  string   `json:"bio"`
			Tags []string `json:"tags"`
		} `json:"profile"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &echoed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if echoed.Password != " p<a>ss&1 " {
		t.Errorf("password altered: %q", echoed.Password)
	}
	if echoed.Profile.Bio != "hi" || len(echoed.Profile.Tags) != 1 || echoed.Profile.Tags[0] != "x" {
		t.Errorf("nested values not cleaned: %+v", echoed.Profile)
	}

	if w := send(`{not json`); w.Code != http.StatusBadRequest {
		t.Errorf("malformed: status = %d", w.Code)
	}
	// empty bodies reach the handler untouched
	if w := send(``); w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "empty") {
		t.Errorf("empty: status = %d body = %s", w.Code, w.Body)
	}
}
