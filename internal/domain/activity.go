package domain

// Activity is an optional add-on experience offered by a host, bookable
// alongside a stay. Instances are immutable once fetched; identity is ID.
// A copy added to a cart is a snapshot — later edits to the source activity
// do not retroactively change cart contents.
type Activity struct {
	ID            int64           `json:"id"`
	HostID        int64           `json:"user_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	StartTime     string          `json:"start_time"` // wall-clock string, not timezone-aware
	EndTime       string          `json:"end_time"`
	Location      string          `json:"location"`
	PaymentAmount string          `json:"payment_amount"` // decimal string, "0.00" means free
	IsActive      bool            `json:"is_active"`
	Images        []ActivityImage `json:"images"`
}

// ActivityImage is one image in an activity's ordered gallery.
type ActivityImage struct {
	ID         int64  `json:"id"`
	ActivityID int64  `json:"activity_id"`
	URL        string `json:"image_url"`
}
