package service

import (
	"doghouse/catalog"
	"doghouse/database"
	"doghouse/dogapi"
)

// Services is the global service container
type Services struct {
	Dog  *DogService
	Repo *database.Repository
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(repo *database.Repository, cat *catalog.Catalog, api *dogapi.Client, opts DogOptions) error {
	dogSvc, err := NewDogService(repo, cat, api, opts)
	if err != nil {
		return err
	}

	GlobalServices = &Services{
		Dog:  dogSvc,
		Repo: repo,
	}
	return nil
}
