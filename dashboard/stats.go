package dashboard

type Stats struct {
	Companies *CompanyStats `json:"companies,omitempty"`
	Users     CountStats    `json:"users"`
	Orders    OrderStats    `json:"orders"`
	Patients  CountStats    `json:"patients"`
	Revenue   RevenueStats  `json:"revenue"`
	Intakes   IntakeStats   `json:"intakes"`
}

type CompanyStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Suspended    int `json:"suspended"`
	NewThisMonth int `json:"newThisMonth"`
}

type CountStats struct {
	Total        int `json:"total"`
	NewThisMonth int `json:"newThisMonth"`
}

type OrderStats struct {
	Total      int            `json:"total"`
	ThisMonth  int            `json:"thisMonth"`
	ByStatus   map[string]int `json:"byStatus,omitempty"`
	Pending    int            `json:"pending"`
	Processing int            `json:"processing"`
}

type RevenueStats struct {
	Total     float64 `json:"total"`
	ThisMonth float64 `json:"thisMonth"`
}

type IntakeStats struct {
	Total        int `json:"total"`
	NewThisMonth int `json:"newThisMonth"`
	Completed    int `json:"completed"`
	Abandoned    int `json:"abandoned"`
}
