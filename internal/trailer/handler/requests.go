package handler

// LinkRequest is the HTTP request body for POST /trailers/link.
type LinkRequest struct {
	TrailerRC string `json:"trailer_rc"`
	TractorRC string `json:"tractor_rc"`
}

// UnlinkRequest is the HTTP request body for POST /trailers/unlink.
type UnlinkRequest struct {
	TrailerRC string `json:"trailer_rc"`
}

// LinkResponse reports the resulting pairing state.
type LinkResponse struct {
	TrailerRC string `json:"trailer_rc"`
	TractorRC string `json:"tractor_rc,omitempty"`
	Linked    bool   `json:"linked"`
}

// CanBidResponse is the HTTP response for GET /trailers/{rc}/can-bid.
type CanBidResponse struct {
	RegistrationNumber string `json:"registration_number"`
	CanBid             bool   `json:"can_bid"`
}
