package domain

// Ward is an administrative subdivision used as a routing key and for display.
type Ward struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Zone       string `json:"zone"`
	Population int    `json:"population"`
	Area       string `json:"area"`
	Councillor string `json:"councillor"`
}
