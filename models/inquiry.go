package models

// InquiryRequest is a contact-form submission.
type InquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type InquiryResponse struct {
	Submitted   bool   `json:"submitted"`
	RedirectURL string `json:"redirect_url"`
}
