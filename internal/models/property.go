package models

import "time"

// PropertyType は物件種別
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "Apartment"
	PropertyTypeHouse      PropertyType = "House"
	PropertyTypeOffice     PropertyType = "Office"
	PropertyTypeCommercial PropertyType = "Commercial"
)

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeOffice, PropertyTypeCommercial:
		return true
	}
	return false
}

// PropertyStatus は物件の掲載ステータス
type PropertyStatus string

const (
	PropertyStatusForSale PropertyStatus = "For Sale"
	PropertyStatusForRent PropertyStatus = "For Rent"
	PropertyStatusSold    PropertyStatus = "Sold"
	PropertyStatusRented  PropertyStatus = "Rented"
)

// Valid reports whether s is one of the known listing statuses.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusForSale, PropertyStatusForRent, PropertyStatusSold, PropertyStatusRented:
		return true
	}
	return false
}

// Coordinates holds a listing's geographic position.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Location holds a listing's address fields.
type Location struct {
	Address     string      `json:"address" yaml:"address"`
	City        string      `json:"city" yaml:"city"`
	State       string      `json:"state" yaml:"state"`
	ZipCode     string      `json:"zip_code" yaml:"zip_code"`
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"`
}

// Details holds a listing's physical attributes. All counts are non-negative.
type Details struct {
	Bedrooms  int `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms int `json:"bathrooms" yaml:"bathrooms"`
	Area      int `json:"area" yaml:"area"`
	YearBuilt int `json:"year_built" yaml:"year_built"`
	Parking   int `json:"parking" yaml:"parking"`
}

// Contact identifies an agent or seller attached to a listing.
type Contact struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Phone  string `json:"phone" yaml:"phone"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Property is a single real-estate listing. It is owned exclusively by the
// catalog store; offers and viewings belong to their parent listing and are
// never referenced independently.
type Property struct {
	// 基本情報
	ID          string         `json:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Price       float64        `json:"price" yaml:"price"`
	Type        PropertyType   `json:"type" yaml:"type"`
	Status      PropertyStatus `json:"status" yaml:"status"`

	Location  Location `json:"location" yaml:"location"`
	Details   Details  `json:"details" yaml:"details"`
	Amenities []string `json:"amenities" yaml:"amenities"`
	Images    []string `json:"images" yaml:"images"`

	Agent  Contact `json:"agent" yaml:"agent"`
	Seller Contact `json:"seller" yaml:"seller"`

	// タイムスタンプ
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Engagement counters
	Views     int64 `json:"views"`
	Inquiries int64 `json:"inquiries"`

	// Append-only side ledgers
	Offers   []Offer   `json:"offers"`
	Viewings []Viewing `json:"viewings"`

	// Version increments on every mutation of this listing, including ledger
	// appends. Stale-version writes are rejected with a conflict.
	Version int64 `json:"version"`
}

// Clone returns a deep copy so callers can never reach back into store-owned
// slices.
func (p Property) Clone() Property {
	out := p
	if p.Amenities != nil {
		out.Amenities = append([]string(nil), p.Amenities...)
	}
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	if p.Offers != nil {
		out.Offers = make([]Offer, len(p.Offers))
		for i, o := range p.Offers {
			out.Offers[i] = o.Clone()
		}
	}
	if p.Viewings != nil {
		out.Viewings = make([]Viewing, len(p.Viewings))
		for i, v := range p.Viewings {
			out.Viewings[i] = v.Clone()
		}
	}
	return out
}

// PropertyUpdate carries the fields of a partial update. Nil fields keep the
// existing value.
type PropertyUpdate struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Type        *PropertyType   `json:"type,omitempty"`
	Status      *PropertyStatus `json:"status,omitempty"`
	Location    *Location       `json:"location,omitempty"`
	Details     *Details        `json:"details,omitempty"`
	Amenities   []string        `json:"amenities,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Agent       *Contact        `json:"agent,omitempty"`
	Seller      *Contact        `json:"seller,omitempty"`
}
