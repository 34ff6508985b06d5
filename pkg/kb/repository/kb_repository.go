package repository

import "cropdoc/entities"

// KBRepository exposes the immutable crop/disease catalog.
type KBRepository interface {
	Crops() []entities.CropInfo
}
