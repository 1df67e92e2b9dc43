package catalog

import "time"

// Meta carries the fields the store owns on every catalog document.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) meta() *Meta { return m }

// Doctor is a practitioner listed on the site.
type Doctor struct {
	Meta
	Name           string   `json:"name" validate:"required,max=120"`
	Title          string   `json:"title,omitempty" validate:"max=120"`
	Specialty      string   `json:"specialty" validate:"required,max=80"`
	Hospital       string   `json:"hospital,omitempty" validate:"max=120"`
	Experience     int      `json:"experience,omitempty" validate:"gte=0,lte=70"`
	Languages      []string `json:"languages,omitempty" validate:"dive,min=2,max=35"`
	Qualifications []string `json:"qualifications,omitempty"`
	Bio            string   `json:"bio,omitempty" validate:"max=5000"`
	Image          string   `json:"image,omitempty" validate:"max=500"`
	Featured       bool     `json:"featured"`
}

// Treatment is a procedure package with an indicative price range.
type Treatment struct {
	Meta
	Name        string   `json:"name" validate:"required,max=120"`
	Category    string   `json:"category" validate:"required,max=80"`
	Description string   `json:"description,omitempty" validate:"max=10000"`
	PriceFrom   float64  `json:"priceFrom,omitempty" validate:"gte=0"`
	PriceTo     float64  `json:"priceTo,omitempty" validate:"omitempty,gtefield=PriceFrom"`
	Currency    string   `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	Duration    string   `json:"duration,omitempty" validate:"max=80"`
	Recovery    string   `json:"recovery,omitempty" validate:"max=80"`
	Image       string   `json:"image,omitempty" validate:"max=500"`
	Hospitals   []string `json:"hospitals,omitempty"`
	Featured    bool     `json:"featured"`
}

// Hospital is a partner facility.
type Hospital struct {
	Meta
	Name              string   `json:"name" validate:"required,max=160"`
	City              string   `json:"city" validate:"required,max=80"`
	Country           string   `json:"country" validate:"required,max=80"`
	Description       string   `json:"description,omitempty" validate:"max=10000"`
	Accreditations    []string `json:"accreditations,omitempty"`
	Specialties       []string `json:"specialties,omitempty"`
	Image             string   `json:"image,omitempty" validate:"max=500"`
	Website           string   `json:"website,omitempty" validate:"omitempty,url"`
	Featured          bool     `json:"featured"`
	InternationalDesk bool     `json:"internationalDesk"`
}

// FAQ is a question shown on the help pages.
type FAQ struct {
	Meta
	Question string `json:"question" validate:"required,max=500"`
	Answer   string `json:"answer" validate:"required,max=5000"`
	Category string `json:"category,omitempty" validate:"max=80"`
	Order    int    `json:"order"`
	Featured bool   `json:"featured"`
}

// InquiryStatus tracks an inquiry through the sales follow-up.
type InquiryStatus string

const (
	StatusNew       InquiryStatus = "new"
	StatusContacted InquiryStatus = "contacted"
	StatusClosed    InquiryStatus = "closed"
)

// Valid reports whether s is a known status.
func (s InquiryStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusClosed:
		return true
	}
	return false
}

// Inquiry is a lead submitted through the contact form.
type Inquiry struct {
	ID        string        `json:"id"`
	Name      string        `json:"name" validate:"required,max=120"`
	Email     string        `json:"email" validate:"required,email"`
	Phone     string        `json:"phone,omitempty" validate:"max=40"`
	Country   string        `json:"country,omitempty" validate:"max=80"`
	Treatment string        `json:"treatment,omitempty" validate:"max=120"`
	Message   string        `json:"message" validate:"required,max=5000"`
	Language  string        `json:"language,omitempty"`
	Status    InquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Subscriber is a newsletter address.
type Subscriber struct {
	Email     string    `json:"email"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filter narrows a catalog listing. Fields holds exact, case-insensitive
// matches on the collection's filterable fields.
type Filter struct {
	Query    string
	Fields   map[string]string
	Featured bool
}
