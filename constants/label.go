package constants

// DocumentLabel is the case-role label assigned by the classifier.
// The empty value means the document could not be classified.
type DocumentLabel string

const (
	// LabelPetition marks the worker's initial petition (petição inicial).
	LabelPetition DocumentLabel = "petition"
	// LabelDefense marks the employer's defense (contestação).
	LabelDefense DocumentLabel = "defense"
)
