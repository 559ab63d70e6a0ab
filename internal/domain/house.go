// Package domain contains the core data types for the Staybook traveller
// front end. This package has zero external dependencies beyond identifiers
// and is imported by every other internal package (upstream, cart, filter,
// pricing, handler).
package domain

// House represents a rentable property as returned by the platform API.
// Monetary amounts arrive as decimal strings (e.g. "120.00") and are kept
// verbatim; parsing happens at the point of calculation.
type House struct {
	ID            int64        `json:"id"`
	OwnerID       int64        `json:"user_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Country       string       `json:"country"`
	City          string       `json:"city"`
	Address       string       `json:"address"`
	PropertyType  string       `json:"property_type"`
	PricePerNight string       `json:"price_per_night"`
	Guests        int          `json:"guests"`
	Bedrooms      int          `json:"bedrooms"`
	Beds          int          `json:"beds"`
	Bathrooms     int          `json:"bathrooms"`
	IsFavorite    bool         `json:"is_favorite"`
	Owner         *Owner       `json:"owner,omitempty"`
	Images        []HouseImage `json:"images"`
	Amenities     []Amenity    `json:"amenities,omitempty"`
}

// HouseImage is one image in a house's ordered gallery.
type HouseImage struct {
	ID      int64  `json:"id"`
	HouseID int64  `json:"house_id"`
	URL     string `json:"image_url"`
	Order   int    `json:"order"`
}

// Owner is the host profile nested in a house detail response.
type Owner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Amenity is a named feature of a house (wifi, parking, ...).
type Amenity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
