package model

// Problem codes returned in place of upstream payloads when required business
// data is absent. These are expected for users who have not finished
// onboarding and are not errors.
const (
	ProblemMissingAreaHash = "missing_area_hash"
	ProblemMissingIDs      = "missing_ids"
	ProblemInvalidDate     = "invalid_date"
)

// Problem is the structured {error, message} payload.
type Problem struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (p Problem) Error() string {
	return p.Code + ": " + p.Message
}
