package domain

// Department is administrator-owned reference data; the engine never mutates it.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Contact     string `json:"contact"`
	Head        string `json:"head"`
	ActiveStaff int    `json:"activeStaff"`
}
