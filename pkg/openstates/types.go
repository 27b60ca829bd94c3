package openstates

// Bill is a read-only snapshot of an OpenStates bill record. Derived
// category/impact live on internal/scorer.Issue; Bill itself is never
// mutated after decode.
type Bill struct {
	ID                      string         `json:"id"`
	Identifier              string         `json:"identifier"`
	Title                   string         `json:"title"`
	Classification          []string       `json:"classification"`
	Subject                 []string       `json:"subject"`
	LatestActionDescription string         `json:"latest_action_description,omitempty"`
	LatestActionDate        string         `json:"latest_action_date,omitempty"`
	LatestPassageDate       string         `json:"latest_passage_date,omitempty"`
	FirstActionDate         string         `json:"first_action_date,omitempty"`
	UpdatedAt               string         `json:"updated_at,omitempty"`
	FromOrganization        *Organization  `json:"from_organization,omitempty"`
	Abstracts               []BillAbstract `json:"abstracts,omitempty"`
	OpenstatesURL           string         `json:"openstates_url,omitempty"`
	Sources                 []Link         `json:"sources,omitempty"`
}

// Organization identifies the chamber a bill originated from.
type Organization struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
}

// BillAbstract is a summary attached to a bill.
type BillAbstract struct {
	Abstract string `json:"abstract"`
	Note     string `json:"note,omitempty"`
}

// Link is a URL with an optional note.
type Link struct {
	URL  string `json:"url"`
	Note string `json:"note,omitempty"`
}

// Pagination describes a paged upstream response. It is only ever attached
// to the page it describes, never cached independently.
type Pagination struct {
	Page       int `json:"page"`
	MaxPage    int `json:"max_page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// BillsResponse is the payload of GET /bills.
type BillsResponse struct {
	Results    []Bill     `json:"results"`
	Pagination Pagination `json:"pagination"`
}

// Person is a read-only snapshot of an OpenStates person record.
type Person struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	CurrentRole *Role    `json:"current_role,omitempty"`
	Party       []Party  `json:"party,omitempty"`
	Email       string   `json:"email,omitempty"`
	Links       []Link   `json:"links,omitempty"`
	Offices     []Office `json:"offices,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// Role is a person's current legislative role.
type Role struct {
	Title             string `json:"title"`
	OrgClassification string `json:"org_classification,omitempty"`
	District          string `json:"district,omitempty"`
	DivisionID        string `json:"division_id,omitempty"`
}

// Party is a party affiliation entry.
type Party struct {
	Name string `json:"name"`
}

// Office is a contact office for a person.
type Office struct {
	Name    string `json:"name"`
	Voice   string `json:"voice,omitempty"`
	Fax     string `json:"fax,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// PeopleResponse is the payload of GET /people and GET /people.geo.
// Pagination is absent on the geo endpoint.
type PeopleResponse struct {
	Results    []Person    `json:"results"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
