package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

type AuthController struct {
	gate *auth.Gate
}

func NewAuthController(gate *auth.Gate) *AuthController {
	return &AuthController{gate: gate}
}

// Authorize handles GET /authorizer and reports whether the Basic
// credentials sent would be let through.
func (c *AuthController) Authorize(w http.ResponseWriter, r *http.Request) {
	_, err := c.gate.Check(r.Header.Get("Authorization"))
	status, msg := auth.Reply(err)
	response.Message(w, status, msg)
}
