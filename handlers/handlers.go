package handlers

import (
	"context"
	"doghouse/models"
	"doghouse/service"
	"doghouse/version"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthProbeTimeout = time.Second

type dogResponse struct {
	Status string  `json:"status"`
	Image  *string `json:"image"`
	Name   *string `json:"name"`
	Source string  `json:"source"`
}

// GetDog serves one record from the fallback chain.
func GetDog(c *gin.Context) {
	res, err := service.GlobalServices.Dog.ResolveDog(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmpty):
			respondStatus(c, http.StatusNotFound, StatusEmpty, "No dogs stored yet. Submit one with POST /save.")
		case errors.Is(err, service.ErrUpstream):
			respondError(c, http.StatusBadGateway, "Dog API unavailable")
		default:
			respondError(c, http.StatusServiceUnavailable, "Storage unavailable")
		}
		return
	}

	c.JSON(http.StatusOK, dogResponse{
		Status: StatusSuccess,
		Image:  res.Dog.Image,
		Name:   res.Dog.Name,
		Source: res.Source,
	})
}

// SaveDog stores a submitted record.
func SaveDog(c *gin.Context) {
	var req models.DogCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	dog, err := service.GlobalServices.Dog.SaveDog(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDog):
			respondError(c, http.StatusBadRequest, "Provide a name or an image")
		case errors.Is(err, service.ErrStorageUnavailable):
			respondError(c, http.StatusServiceUnavailable, "Storage unavailable")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to save dog")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": StatusSaved, "id": dog.ID})
}

// GetData lists stored records, or the local catalog when storage is down.
func GetData(c *gin.Context) {
	c.JSON(http.StatusOK, service.GlobalServices.Dog.ListDogs(c.Request.Context()))
}

// Healthz always answers 200; storage state is informational.
func Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	storage := service.GlobalServices.Repo.Status(ctx)
	if storage == "down" {
		log.Debug().Msg("Health probe: storage down")
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  StatusOK,
		"storage": storage,
		"tiers":   service.GlobalServices.Dog.TierNames(),
		"version": version.GetFullVersion(),
	})
}
