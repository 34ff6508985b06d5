package service

import "cropdoc/entities"

// KBService is the read-only lookup surface over the disease catalog.
type KBService interface {
	Crops() []entities.CropInfo
	Crop(cropID string) (*entities.CropInfo, bool)
	FindDiseaseByID(diseaseID string) (*entities.DiseaseInfo, bool)
	FindDiseaseByCropAndName(cropID, name string) (*entities.DiseaseInfo, bool)
	CropDiseases(cropID string) []entities.DiseaseInfo
	AllDiseases() []entities.DiseaseInfo
	Search(query string) []entities.DiseaseInfo
	// DiseaseNames lists the crop's catalog names, nil for unknown crops.
	DiseaseNames(cropID string) []string
	// ReferenceText renders the whole catalog as plain prompt context.
	ReferenceText() string
}
