package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	db := initDB()
	cfg := Config{
		JWTSecret:            "integration-test-secret",
		OAuthErrorRedirect:   "/login/error",
		OAuthSuccessRedirect: "/",
	}
	s := newServer(db, cfg)
	r := gin.Default()
	s.setupRoutes(r)
	return r
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register user
	regBody, _ := json.Marshal(map[string]string{"name": "user1", "email": "user1@example.com", "password": "pass123"})
	resp := performRequest(r, http.MethodPost, "/auth/register", bytes.NewBuffer(regBody), "")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Login
	loginBody, _ := json.Marshal(map[string]string{"email": "user1@example.com", "password": "pass123"})
	resp = performRequest(r, http.MethodPost, "/auth/login", bytes.NewBuffer(loginBody), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	refresh, _ := loginResp["refreshToken"].(string)
	if token == "" || refresh == "" {
		t.Fatalf("empty tokens in login response: %+v", loginResp)
	}
	if findCookie(resp, "token") == nil || findCookie(resp, "refreshToken") == nil {
		t.Fatal("expected session cookies on login")
	}

	// 3. Create subject
	subjBody, _ := json.Marshal(map[string]string{"name": "Mathematics", "description": "numbers and proofs"})
	resp = performRequest(r, http.MethodPost, "/subjects", bytes.NewBuffer(subjBody), token)
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("create subject failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. List subjects and pick one
	resp = performRequest(r, http.MethodGet, "/subjects", nil, token)
	if resp.Code != 200 {
		t.Fatalf("list subjects failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var subjects []map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &subjects)
	if len(subjects) == 0 {
		t.Fatal("expected at least one subject")
	}
	subjectID := fmt.Sprintf("%v", subjects[0]["ID"])

	// 5. Get and update the subject
	resp = performRequest(r, http.MethodGet, "/subjects/"+subjectID, nil, token)
	if resp.Code != 200 {
		t.Fatalf("get subject failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	updBody, _ := json.Marshal(map[string]string{"description": "updated description"})
	resp = performRequest(r, http.MethodPut, "/subjects/"+subjectID, bytes.NewBuffer(updBody), token)
	if resp.Code != 200 {
		t.Fatalf("update subject failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Enroll, duplicate enroll conflicts, list students
	resp = performRequest(r, http.MethodPost, "/subjects/"+subjectID+"/enroll", nil, token)
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("enroll failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/subjects/"+subjectID+"/enroll", nil, token)
	if resp.Code != 409 {
		t.Fatalf("expected 409 for duplicate enrollment, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodGet, "/subjects/"+subjectID+"/students", nil, token)
	if resp.Code != 200 {
		t.Fatalf("list students failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Refresh the access token
	resp = performRequest(r, http.MethodPost, "/auth/refresh", nil, "", &http.Cookie{Name: "refreshToken", Value: refresh})
	if resp.Code != 200 {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 8. Protected endpoint works with the token, rejects without
	resp = performRequest(r, http.MethodGet, "/auth/protected", nil, token)
	if resp.Code != 200 {
		t.Fatalf("protected endpoint failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	unauth := performRequest(r, http.MethodGet, "/subjects", nil, "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list subjects got %d", unauth.Code)
	}

	// 9. Withdraw and delete
	resp = performRequest(r, http.MethodDelete, "/subjects/"+subjectID+"/enroll", nil, token)
	if resp.Code != 200 {
		t.Fatalf("withdraw failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodDelete, "/subjects/"+subjectID, nil, token)
	if resp.Code != 200 {
		t.Fatalf("delete subject failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
