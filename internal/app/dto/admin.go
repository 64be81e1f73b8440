package dto

type UserList struct {
	Items []UserProfile `json:"items"`
	Total int           `json:"total"`
}

type MonthlyRevenue struct {
	Month         string   `json:"month"`
	Bookings      int      `json:"bookings"`
	Cancellations int      `json:"cancellations"`
	Gross         MoneyDTO `json:"gross"`
	Refunded      MoneyDTO `json:"refunded"`
	Net           MoneyDTO `json:"net"`
}

type Dashboard struct {
	UsersByRole       map[string]int   `json:"users_by_role"`
	TotalUsers        int              `json:"total_users"`
	ActiveMembers     int              `json:"active_members"`
	Listings          int              `json:"listings"`
	ConfirmedBookings int              `json:"confirmed_bookings"`
	CancelledBookings int              `json:"cancelled_bookings"`
	BookingRevenue    MoneyDTO         `json:"booking_revenue"`
	RetainedFees      MoneyDTO         `json:"retained_fees"`
	Monthly           []MonthlyRevenue `json:"monthly"`
	UnreadMessages    int              `json:"unread_messages"`
}
