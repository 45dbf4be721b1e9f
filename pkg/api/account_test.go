package api

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestRegisterAndToken(t *testing.T) {
	g := newTestGateway(t)

	token := g.registerAndLogin(t, "luke", "usetheforce")
	if token == "" {
		t.Fatal("expected a token")
	}
}

func TestRegister_Duplicate(t *testing.T) {
	g := newTestGateway(t)
	g.registerAndLogin(t, "luke", "usetheforce")

	var body map[string]string
	resp := g.do(t, http.MethodPost, "/register", "",
		map[string]string{"username": "luke", "password": "other"}, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if body["detail"] != "User already exists" {
		t.Errorf("detail = %q, want User already exists", body["detail"])
	}
}

func TestRegister_MissingFields(t *testing.T) {
	g := newTestGateway(t)

	resp := g.do(t, http.MethodPost, "/register", "", map[string]string{"username": "luke"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestToken_WrongPassword(t *testing.T) {
	g := newTestGateway(t)
	g.registerAndLogin(t, "luke", "usetheforce")

	var body map[string]string
	resp := g.do(t, http.MethodPost, "/token", "",
		map[string]string{"username": "luke", "password": "wrong"}, &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if body["detail"] != "Incorrect username or password" {
		t.Errorf("detail = %q", body["detail"])
	}
}

func TestToken_UnknownUser(t *testing.T) {
	g := newTestGateway(t)

	resp := g.do(t, http.MethodPost, "/token", "",
		map[string]string{"username": "nobody", "password": "x"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestToken_FormEncoded(t *testing.T) {
	g := newTestGateway(t)
	g.registerAndLogin(t, "luke", "usetheforce")

	form := url.Values{"username": {"luke"}, "password": {"usetheforce"}}
	resp, err := http.Post(g.server.URL+"/token",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("form token request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("form-encoded token status = %d, want 200", resp.StatusCode)
	}
}

func TestDeleteUser(t *testing.T) {
	g := newTestGateway(t)
	token := g.registerAndLogin(t, "luke", "usetheforce")

	var body map[string]string
	resp := g.do(t, http.MethodDelete, "/user", token, nil, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["message"] != "User deleted successfully" {
		t.Errorf("message = %q", body["message"])
	}

	// Login no longer works.
	resp = g.do(t, http.MethodPost, "/token", "",
		map[string]string{"username": "luke", "password": "usetheforce"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("deleted user login status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteUser_RequiresAuth(t *testing.T) {
	g := newTestGateway(t)

	resp := g.do(t, http.MethodDelete, "/user", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}
