package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/response"
)

func Health(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"status": "ok"})
}
