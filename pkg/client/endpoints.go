package client

const (
	apiPrefix = "/api"

	endpointCrops         = apiPrefix + "/crops"
	endpointCropDiseases  = apiPrefix + "/crops/%s/diseases"
	endpointDiseaseSearch = apiPrefix + "/diseases/search"
	endpointAnalyze       = apiPrefix + "/analyze-crop"
	endpointChat          = apiPrefix + "/chat"
	endpointHistory       = apiPrefix + "/history"
)
